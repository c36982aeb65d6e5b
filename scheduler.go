package vow

// A Scheduler owns a FIFO of tasks that have just left Pending and are
// waiting for their notification flush (spec §4.2). It is the single-
// threaded cooperative run loop the whole package assumes: nothing here
// is safe for concurrent use, exactly as the teacher's own Executor
// documents for itself ("If one Task blocks, no other Tasks can run. The
// best practice is not to block.").
//
// Grounded on the teacher's Executor (executor.go): Push/resumeTask
// becomes push, Run becomes Tick, Autorun is kept verbatim in spirit. The
// teacher's priority queue sorted by path is replaced by the plain FIFO
// [queue] — this package has no notion of task ordering by name, only by
// arrival, so a sorted structure would be solving a problem nobody has.
type Scheduler struct {
	pending   queue[*Task]
	scheduled bool
	autorun   func()

	unhandled func(*Task)
	logger    Logger
}

// DefaultScheduler is the process-wide scheduler used whenever a nil
// *Scheduler is passed to [New], [From], [All], [Race], or [Drive].
var DefaultScheduler = NewScheduler()

// NewScheduler returns a Scheduler with no autorun hook installed: the
// caller is responsible for calling [Scheduler.Tick] whenever it suspects
// work is pending, or for wiring one up with [Scheduler.Autorun].
func NewScheduler() *Scheduler {
	return &Scheduler{unhandled: defaultUnhandledRejectionHook}
}

// Autorun installs f as the function called whenever the scheduler
// transitions from empty to non-empty. f is expected to itself call Tick,
// exactly as the teacher's Executor.Autorun documents. The scheduler never
// calls f again while it is already waiting for a prior call to trigger a
// Tick.
func (s *Scheduler) Autorun(f func()) {
	s.autorun = f
}

// OnUnhandledRejection installs the hook run when a task's error reaches
// its notification flush with nothing ever having taken responsibility
// for it — no successor, no finalizer (such as [All], [Race], [Drive] and
// [Task.ToPromiseLike] install), no Deinit; a weak branch receiving the
// error does not count (spec §4.3). The default hook
// panics with an [UnhandledRejectionError], rethrowing the error
// synchronously out of [Scheduler.Tick], matching a host's reasonable
// expectation that a silently dropped rejection is a bug.
func (s *Scheduler) OnUnhandledRejection(f func(*Task)) {
	s.unhandled = f
}

// SetLogger installs the ambient [Logger] used for scheduler diagnostics
// (currently, tick-panic recovery notices). The zero value is a silent
// noopLogger.
func (s *Scheduler) SetLogger(l Logger) {
	s.logger = l
}

func (s *Scheduler) log() Logger {
	if s.logger == nil {
		return noopLogger{}
	}
	return s.logger
}

func (s *Scheduler) reportUnhandledRejection(t *Task) {
	hook := s.unhandled
	if hook == nil {
		hook = defaultUnhandledRejectionHook
	}
	hook(t)
}

func defaultUnhandledRejectionHook(t *Task) {
	panic(&UnhandledRejectionError{Task: t, Err: asError(t.err)})
}

// push enqueues t for its notification flush, arming the autorun hook if
// the scheduler was previously empty.
func (s *Scheduler) push(t *Task) {
	s.pending.push(t)
	s.arm()
}

func (s *Scheduler) arm() {
	if s.scheduled {
		return
	}
	s.scheduled = true
	if s.autorun != nil {
		s.autorun()
	}
}

// Tick synchronously drains the pending FIFO, calling each task's
// finishPending in arrival order, until it is empty.
//
// If finishPending panics (most commonly because the default unhandled-
// rejection hook rethrows), the FIFO is not left scheduled-but-silent: if
// items remain, the autorun hook is re-armed so a future Tick still
// happens, and then the panic is allowed to propagate (spec §4.2).
func (s *Scheduler) Tick() {
	s.scheduled = false

	for {
		t, ok := s.pending.shift()
		if !ok {
			return
		}
		s.runOne(t)
	}
}

func (s *Scheduler) runOne(t *Task) {
	defer func() {
		if v := recover(); v != nil {
			s.log().Errorw("vow: panic during Tick", "task", t.String(), "panic", v)
			if !s.pending.empty() {
				s.scheduled = true
				if s.autorun != nil {
					s.autorun()
				}
			}
			panic(v)
		}
	}()
	t.finishPending()
}

// Deinit empties the pending FIFO without delivering any notification —
// every queued task is simply dropped, mid-flush, mid-flight (spec §4.2).
// This is a blunt instrument meant for shutting a scheduler down, not for
// canceling individual tasks; use [Task.Deinit] for that.
func (s *Scheduler) Deinit() {
	s.pending = queue[*Task]{}
	s.scheduled = false
}

// newTask allocates a fresh Task bound to s.
//
// The teacher pools its internal *Task/*Coroutine values behind a
// recyclable/recycled flag pair, opt-in per call site for tasks that never
// escape to user code (teacher task.go's recyclable(), invoked only for
// Spawn's internal inner tasks). Every task this package hands out escapes
// to the caller — New, Map and its wrappers, Weak, All, Race, Drive, and
// FromHostPromise are all public constructors whose return value the
// caller keeps a live reference to and later calls Deref/State on — so
// there is no call site here that could safely opt in without reaching
// back into a *Task the caller still owns. Pooling is dropped rather than
// guarded: nothing in spec §3/§12 requires literal memory reuse, only
// eventual GC-eligibility once every reference is dropped, which plain
// garbage collection already provides.
func (s *Scheduler) newTask() *Task {
	return &Task{scheduler: s}
}
