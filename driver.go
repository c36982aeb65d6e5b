package vow

// Yield is the suspension primitive a [Procedure] is handed. Calling
// yield(v) means "suspend until v is known":
//
//   - if v is a *Task, the driver waits for it to settle;
//   - if v is a Procedure, the driver first turns it into a *Task with
//     [Drive] (on the same scheduler) and waits for that;
//   - any other value is handed back immediately, with no suspension at
//     all — there is nothing to wait for.
//
// If the awaited task settles with an error, yield panics with that
// error rather than returning — the procedure is expected to recover it
// the way it would a thrown exception, exactly as spec §4.6 describes
// ("inject an error at the yield point").
type Yield func(v any) any

// A Procedure is a resumable, generator-style piece of code driven by
// [Drive]. It runs on its own goroutine (see Drive's doc comment for why),
// calling yield at every point it needs to wait on something, and its
// ordinary return value becomes the final result — itself possibly a
// *Task or a Procedure, in which case it is flattened exactly like any
// other task outcome.
//
// A panic that escapes proc uncaught becomes the driven task's error.
type Procedure func(yield Yield) any

type driverMsgKind uint8

const (
	msgYield driverMsgKind = iota
	msgDone
	msgPanic
)

type driverMsg struct {
	kind     driverMsgKind
	task     *Task
	value    any
	panicVal any
}

type resumeMsg struct {
	value any
	err   any
}

// Drive turns proc into a *Task: it runs proc to completion (or to its
// first suspension point) immediately, driven by a background goroutine
// that hands control back and forth with the calling side on every yield,
// one at a time, so that only one side is ever actually running Go code
// (spec §4.6).
//
// This rendezvous is the Go-idiomatic rendering of a resumable procedure:
// the standard library's own iter.Pull does the same — spin up a
// goroutine, synchronize with unbuffered channels, and accept that the
// goroutine leaks if nobody ever finishes driving it. Canceling the
// returned task (via [Task.Deinit]) asks proc to unwind: the currently
// awaited task is deinited, which resumes proc's yield call with a
// [DeinitError], and proc is expected to let that propagate (or run its
// own cleanup and re-panic) exactly like an unwound Go stack normally
// does. A nil s uses [DefaultScheduler].
func Drive(s *Scheduler, proc Procedure) *Task {
	if s == nil {
		s = DefaultScheduler
	}

	out := s.newTask()
	d := &driver{scheduler: s, out: out, outCh: make(chan driverMsg), inCh: make(chan resumeMsg)}

	yield := func(v any) any {
		var t *Task
		switch x := v.(type) {
		case *Task:
			t = x
		case Procedure:
			t = Drive(s, x)
		default:
			return v
		}

		d.outCh <- driverMsg{kind: msgYield, task: t}
		rm := <-d.inCh
		if rm.err != nil {
			panic(rm.err)
		}
		return rm.value
	}

	go func() {
		var result any
		perr := tryCatch(func() { result = proc(yield) })
		if perr != nil {
			d.outCh <- driverMsg{kind: msgPanic, panicVal: perr}
			return
		}
		d.outCh <- driverMsg{kind: msgDone, value: result}
	}()

	d.handle(<-d.outCh)
	return out
}

type driver struct {
	scheduler *Scheduler
	out       *Task
	outCh     chan driverMsg
	inCh      chan resumeMsg
	current   *Task
}

func (d *driver) handle(msg driverMsg) {
	switch msg.kind {
	case msgDone:
		d.current = nil
		if proc, ok := msg.value.(Procedure); ok {
			d.out.settle(nil, Drive(d.scheduler, proc))
			return
		}
		d.out.settle(nil, msg.value)

	case msgPanic:
		d.current = nil
		d.out.settle(msg.panicVal, nil)

	case msgYield:
		d.current = msg.task
		d.out.finalizer = d.cancel

		watchOnce(msg.task, func(err, res any) {
			d.inCh <- resumeMsg{value: res, err: err}
			d.handle(<-d.outCh)
		})
	}
}

// cancel runs when the driven task is deinited while the procedure is
// suspended on d.current. It deinits d.current, which resumes proc's
// yield with a DeinitError through the ordinary watchOnce callback above
// — proc's reaction (unwind, or recover and return something else) drives
// itself to completion exactly like any other settle. Because out is
// already force-settled with its own DeinitError by the time this runs
// (spec §4.3 cancelation step 1 precedes step 2), whatever proc ultimately
// produces no longer changes out's outcome: the out.settle call that
// handle makes for it is ignored.
func (d *driver) cancel(_, _ any) {
	cur := d.current
	if cur == nil {
		return
	}
	cur.Deinit()
}
