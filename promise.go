package vow

// PromiseLike is the minimal shape FromHostPromise needs from a host
// promise implementation: a way to register completion callbacks, mirroring
// a JS thenable's .then. This package does not ship a concrete host promise
// type of its own — there is no single canonical one in Go — so adapting a
// real host promise (e.g. a browser binding, or another library's future
// type) means writing a small wrapper that satisfies this interface.
type PromiseLike interface {
	Then(onFulfilled func(value any), onRejected func(err error))
}

// FromHostPromise adapts p into a *Task: p's eventual fulfillment or
// rejection settles the returned task exactly once. A nil s uses
// [DefaultScheduler].
//
// Host promises have no concept of cancelation, so deiniting the returned
// task only ever affects the task itself — there is no underlying work to
// stop (spec §9's open question on the promise adapter; see also
// SPEC_FULL.md §13).
func FromHostPromise(s *Scheduler, p PromiseLike) *Task {
	if s == nil {
		s = DefaultScheduler
	}
	t := s.newTask()
	p.Then(
		func(value any) { t.Settle(nil, value) },
		func(err error) { t.Settle(err, nil) },
	)
	return t
}

// hostPromise is the PromiseLike returned by [Task.ToPromiseLike]: a thin
// shim translating the task's single notification flush into the
// fulfilled/rejected callback pair a host expects.
type hostPromise struct {
	t *Task
}

func (h hostPromise) Then(onFulfilled func(value any), onRejected func(err error)) {
	h.t.finalizer = func(err, res any) {
		if err != nil {
			if onRejected != nil {
				onRejected(asError(err))
			}
			return
		}
		if onFulfilled != nil {
			onFulfilled(res)
		}
	}
	if h.t.state != Pending {
		h.t.scheduler.push(h.t)
	}
}

// ToPromiseLike consumes t, exactly like [Task.Map], and returns a
// PromiseLike a host can register callbacks on via Then. It raises
// [ConsumedError] if t is already Consumed (spec §6, §7 kind 3).
func (t *Task) ToPromiseLike() PromiseLike {
	if t.flag&flagConsumed != 0 {
		panic(&ConsumedError{Task: t})
	}
	t.flag |= flagConsumed
	t.flag &^= flagPendingRejection
	return hostPromise{t: t}
}
