package vow

// TaskState is the settlement state of a [Task]. A task starts Pending and
// moves to exactly one of Error or Success exactly once (spec §3, §4.1).
type TaskState uint8

const (
	Pending TaskState = iota
	Error
	Success
)

func (s TaskState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Error:
		return "error"
	case Success:
		return "success"
	default:
		return "invalid"
	}
}

const (
	// flagPendingRejection marks a task that settled with an error no one
	// has observed yet. Cleared the moment a successor, a finalizer, or
	// Deinit takes responsibility for the error; forwarding the error to a
	// weak branch does not clear it (spec §4.1, §4.3).
	flagPendingRejection = 1 << iota
	// flagConsumed marks a task that already has a successor (set by Map
	// and its convenience wrappers, and by the internal attach helpers
	// flattening and the combinators use). A second Map call on a consumed
	// task raises ConsumedError (spec §4.3 invariant 3).
	flagConsumed
	// flagMapping is set for the duration of a mapper invocation so that a
	// mapper which (directly or through a task it touches) tries to settle
	// its own task re-entrantly is silently ignored (spec §4.3 rule 1).
	flagMapping
)

// A Task is a one-shot, cancelable asynchronous computation: a cell that
// starts Pending and settles exactly once, with an error or a result, after
// which every further settlement attempt is a silent no-op (spec §3, §4.1).
//
// A Task is not safe for concurrent use. The whole design assumes a single
// cooperative thread of control driven by a [Scheduler]; see that type's
// doc comment and spec §5's non-goals.
type Task struct {
	scheduler *Scheduler
	debugID   string

	state TaskState
	flag  uint8

	err, res any

	// predecessor is the upstream task this one exclusively owns, if any.
	// Deinit cascades through it (spec §4.3 invariant 3, §4.3 cancelation).
	predecessor *Task
	// successor is the weak (non-owning) back-link to the one task that
	// consumed this one via Map or the internal flattening/combinator
	// attach helpers.
	successor *Task
	// weakBranches holds every task attached via Weak (or an internal
	// equivalent) that observes this task's outcome without consuming it.
	weakBranches queue[*Task]

	mapper    *mapper
	finalizer func(err, res any)
}

// New returns a fresh Pending task driven by s. A nil s uses
// [DefaultScheduler]. The caller settles it later by calling [Task.Settle].
func New(s *Scheduler) *Task {
	if s == nil {
		s = DefaultScheduler
	}
	return s.newTask()
}

// From returns a task already settled with err and res, per the same
// exactly-one-meaningful rule [Task.Settle] enforces. A nil s uses
// [DefaultScheduler].
func From(s *Scheduler, err error, res any) *Task {
	t := New(s)
	t.Settle(err, res)
	return t
}

// FromError returns a task already settled with err.
func FromError(s *Scheduler, err error) *Task {
	return From(s, err, nil)
}

// FromResult returns a task already settled with res.
func FromResult(s *Scheduler, res any) *Task {
	return From(s, nil, res)
}

// Settle attempts to settle t with err and res. Exactly one of err/res is
// meaningful; if err is non-nil, res is forced to nil regardless of what
// was passed (spec §4.1, §4.3). Settle is a no-op if t is no longer
// Pending, or if it is currently running its own mapper (rule 1).
//
// Settling with t itself as the result raises
// [CyclicChainError] synchronously at the call site (rule 2).
func (t *Task) Settle(err error, res any) {
	if err != nil {
		t.settle(any(err), nil)
		return
	}
	t.settle(nil, res)
}

// settle is the internal entry point used both by Settle and by every
// recursive re-entry (mapper results, flattening, forwarded notifications).
// err and res are any rather than error/any because a flattened slot can
// hold an arbitrary value, including a *Task, before it is fully resolved.
//
// The six steps mirror spec §4.3 exactly, in order.
func (t *Task) settle(err, res any) {
	// 1. Already settled, or mid-mapper: ignore.
	if t.state != Pending || t.flag&flagMapping != 0 {
		return
	}

	// 2. Cyclic self-reference.
	if err == any(t) || res == any(t) {
		panic(&CyclicChainError{Task: t})
	}

	// 3. Flattening: error slot holds a task.
	if et, ok := err.(*Task); ok {
		t.flatten(true, et)
		return
	}

	// 4. Flattening: result slot holds a task.
	if rt, ok := res.(*Task); ok {
		t.flatten(false, rt)
		return
	}

	// 5. Mapper present.
	if m := t.mapper; m != nil {
		if m.kind == mapperFinally {
			t.runFinally(m, err, res)
			return
		}

		t.flag |= flagMapping
		newErr, newRes := m.call(err, res)
		t.mapper = nil
		t.flag &^= flagMapping

		t.settle(newErr, newRes)
		return
	}

	// 6. Terminal.
	t.err, t.res = err, res
	if err != nil {
		t.state = Error
		t.flag |= flagPendingRejection
	} else {
		t.state = Success
	}
	t.scheduler.push(t)
}

// flatten implements settle's rules 3 and 4: err/res held a *Task (v), and
// t must now depend on whatever v eventually settles with. errSlot is true
// for rule 3 (v came from the error slot, so whichever of v's own outcome
// is truthy is rethrown into t's error slot) and false for rule 4 (v's
// outcome is forwarded unchanged).
func (t *Task) flatten(errSlot bool, v *Task) {
	var transform *mapper
	if errSlot {
		transform = &mapper{kind: mapperRethrow}
	}
	t.attachDependency(v, transform)
}

// attachDependency links v (or, if v is already owned by someone else, a
// disposable weak branch off v) as t's predecessor, so that once v
// settles, t receives v's outcome — rewritten by transform first, if
// transform is non-nil.
//
// This is the single mechanism behind settle's flattening rules and
// Finally's "wait for the returned task" step: both are just "depend on
// this other task, maybe reshaping what it hands back."
func (t *Task) attachDependency(v *Task, transform *mapper) {
	switch {
	case v.state != Pending:
		// Already settled: no need to wait, resolve right now.
		e, r := v.err, v.res
		v.flag |= flagConsumed
		v.flag &^= flagPendingRejection
		t.predecessor = v
		if transform != nil {
			e, r = transform.call(e, r)
		}
		t.settle(e, r)

	case v.flag&flagConsumed == 0:
		// v is ours to own outright.
		v.successor = t
		v.mapper = transform
		v.flag |= flagConsumed
		t.predecessor = v

	default:
		// v already belongs to someone else; ride along as a weak branch.
		w := v.newWeakBranch()
		w.successor = t
		w.mapper = transform
		w.flag |= flagConsumed
		t.predecessor = w
	}
}

// runFinally executes a Finally mapper, which unlike every other mapper
// kind can suspend: if fn returns a task, t must wait for it before
// yielding the original (err, res) unchanged (spec §4.3's description of
// the finally convenience, and rule 5's "this may re-enter flattening").
func (t *Task) runFinally(m *mapper, err, res any) {
	t.flag |= flagMapping
	var ret any
	perr := tryCatch(func() { ret = m.finallyFn(err, res) })
	t.mapper = nil
	t.flag &^= flagMapping

	if perr != nil {
		t.settle(perr, nil)
		return
	}
	if wait, ok := ret.(*Task); ok {
		t.attachDependency(wait, &mapper{kind: mapperFinallyWait, origErr: err, origRes: res})
		return
	}
	t.settle(err, res)
}

// finishPending runs once a task leaves Pending and reaches the front of
// the scheduler's queue. It forwards the outcome to the successor (if any)
// and to every currently-queued weak branch, runs the finalizer, and
// reports an unhandled rejection if nothing ever claimed the error (spec
// §4.3's "notification flush").
func (t *Task) finishPending() {
	if succ := t.successor; succ != nil {
		t.successor = nil
		t.flag &^= flagPendingRejection
		succ.settle(t.err, t.res)
	}

	for {
		w, ok := t.weakBranches.shift()
		if !ok {
			break
		}
		w.settle(t.err, t.res)
	}

	if fz := t.finalizer; fz != nil {
		t.finalizer = nil
		t.flag &^= flagPendingRejection
		fz(t.err, t.res)
	}

	if t.flag&flagPendingRejection != 0 {
		t.flag &^= flagPendingRejection
		t.scheduler.reportUnhandledRejection(t)
	}
}

// Map requires fn, a raw (error, result) → (error, result) transform, and
// creates a new Pending task whose mapper is fn. t is marked Consumed; a
// second call to Map (or MapError/MapResult/Finally) on t raises
// [ConsumedError] (spec §4.3).
func (t *Task) Map(fn func(err, res any) (any, any)) *Task {
	return t.mapWith(&mapper{kind: mapperRaw, rawFn: fn})
}

// MapError is a convenience over Map: (e, r) ↦ (nil, e ≠ nil ? fn(e) : r).
// A panic from fn becomes the new task's error, exactly like a failing
// recovery handler.
func (t *Task) MapError(fn func(err any) any) *Task {
	return t.mapWith(&mapper{kind: mapperError, errFn: fn})
}

// MapResult is a convenience over Map: (e, r) ↦ (e ≠ nil ? e : nil, e ≠ nil
// ? nil : fn(r)). An error is rethrown untouched; a panic from fn replaces
// it.
func (t *Task) MapResult(fn func(res any) any) *Task {
	return t.mapWith(&mapper{kind: mapperResult, resFn: fn})
}

// Finally runs fn with whichever of (err, res) is set, purely for its
// side effect, and then yields the original pair unchanged — unless fn
// itself panics, which replaces the outcome, or fn returns a *Task, which
// is waited on first (spec §4.3's finally convenience).
func (t *Task) Finally(fn func(err, res any) any) *Task {
	return t.mapWith(&mapper{kind: mapperFinally, finallyFn: fn})
}

func (t *Task) mapWith(m *mapper) *Task {
	if t.flag&flagConsumed != 0 {
		panic(&ConsumedError{Task: t})
	}

	next := t.scheduler.newTask()
	next.predecessor = t
	next.mapper = m

	t.successor = next
	t.flag |= flagConsumed
	t.flag &^= flagPendingRejection
	if t.state != Pending {
		t.scheduler.push(t)
	}

	return next
}

// Weak returns a new task that observes t's eventual outcome without
// consuming it: t may still be Mapped separately, and Weak may be called
// any number of times. If t is already settled, t is rescheduled so the
// new weak branch still receives the outcome (spec §4.3).
func (t *Task) Weak() *Task {
	return t.newWeakBranch()
}

func (t *Task) newWeakBranch() *Task {
	w := t.scheduler.newTask()
	t.weakBranches.push(w)
	if t.state != Pending {
		t.scheduler.push(t)
	}
	return w
}

// Deinit cancels t. If t is still Pending, it settles immediately with a
// synthetic [DeinitError], discarding any mapper it was waiting to run
// (cancelation aborts pending mappers; it does not let them finish). It
// then runs the finalizer, if any, and recurses into the predecessor t
// owned, if any — all three steps isolated from one another so a panic in
// one does not prevent the rest from running (spec §4.3 cancelation).
//
// Deinit is idempotent: calling it again on a task already past this point
// is a no-op. Calling it while t's own mapper is actively running is also
// a no-op — the mapper always finishes first.
func (t *Task) Deinit() {
	if t.flag&flagMapping != 0 {
		return
	}
	t.flag &^= flagPendingRejection

	pred := t.predecessor
	t.predecessor = nil

	safeRun(func() {
		if t.state == Pending {
			t.mapper = nil
			t.err, t.res = newDeinitError(t), nil
			t.state = Error
			t.scheduler.push(t)
		}
	})

	safeRun(func() {
		if fz := t.finalizer; fz != nil {
			t.finalizer = nil
			fz(t.err, t.res)
		}
	})

	safeRun(func() {
		if pred != nil {
			pred.Deinit()
		}
	})
}

func safeRun(f func()) {
	defer func() { recover() }()
	f()
}

// Deref reports t's current state as plain Go values: (nil, nil) while
// Pending, (nil, err) once settled with an error, or (res, nil) once
// settled with a result. err is always a real error, even if the task
// settled with a non-error value in its error slot (see asError).
func (t *Task) Deref() (any, error) {
	switch t.state {
	case Success:
		return t.res, nil
	case Error:
		return nil, asError(t.err)
	default:
		return nil, nil
	}
}

// State reports t's current settlement state.
func (t *Task) State() TaskState {
	return t.state
}
