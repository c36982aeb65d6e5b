package vow

// watchOnce arranges for cb to run exactly once, with whatever v
// eventually settles with, without otherwise disturbing v: v may already
// have a successor, may already have a finalizer, or may already be
// terminal. Shared by [All], [Race], and [Drive], all of which need to
// observe a task they do not necessarily own.
//
// The finalizer slot is the cheapest hook (no extra task allocated); it is
// used whenever free. Otherwise, an unconsumed task is Mapped purely for
// the side effect; failing that (v already consumed and its finalizer
// slot taken), a fresh weak branch — guaranteed to have both slots free —
// carries cb instead.
func watchOnce(v *Task, cb func(err, res any)) {
	switch {
	case v.finalizer == nil:
		v.finalizer = cb
		if v.state != Pending {
			v.scheduler.push(v)
		}

	case v.flag&flagConsumed == 0:
		v.Map(func(err, res any) (any, any) {
			cb(err, res)
			return err, res
		})

	default:
		w := v.newWeakBranch()
		w.finalizer = cb
	}
}
