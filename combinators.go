package vow

// All waits for every task in items to succeed, in which case the output
// task succeeds with a []any of their results in the same order. Plain,
// non-task values in items are treated as already-succeeded and pass
// through unchanged. The first error observed — whether an item is
// already settled with one at the time All is called, or one of them
// settles with an error later — immediately settles the output with that
// error and deinits every other task in items (spec §4.4).
//
// If the output task is deinited before every input has settled, every
// task in items is deinited in turn.
func All(s *Scheduler, items []any) *Task {
	if s == nil {
		s = DefaultScheduler
	}
	out := s.newTask()

	vals := append([]any(nil), items...)
	finished := false

	finish := func(err any, okVals []any) {
		if finished {
			return
		}
		finished = true
		if err != nil {
			out.settle(err, nil)
			return
		}
		out.settle(nil, okVals)
	}

	deinitAllBut := func(skip int) {
		for i, v := range items {
			if i == skip {
				continue
			}
			if vt, ok := v.(*Task); ok {
				vt.Deinit()
			}
		}
	}

	pending := 0
	for i, v := range items {
		vt, ok := v.(*Task)
		if !ok {
			continue
		}

		switch {
		case vt.State() == Error:
			vt.flag &^= flagPendingRejection
			deinitAllBut(i)
			finish(vt.err, nil)
			return out

		case vt.State() == Success && vt.flag&flagConsumed == 0:
			vt.flag |= flagConsumed
			vals[i] = vt.res

		default:
			idx := i
			pending++
			watchOnce(vt, func(err, res any) {
				if err != nil {
					deinitAllBut(idx)
					finish(err, nil)
					return
				}
				vals[idx] = res
				pending--
				if pending == 0 {
					finish(nil, vals)
				}
			})
		}
	}

	if finished {
		return out
	}
	if pending == 0 {
		finish(nil, vals)
		return out
	}

	out.finalizer = func(_, _ any) {
		for _, v := range items {
			if vt, ok := v.(*Task); ok {
				vt.Deinit()
			}
		}
	}
	return out
}

// Race settles the output task with the first outcome observed among
// items, in input order for inputs already settled when Race is called, a
// non-task item winning immediately. Every other task in items is then
// deinited. An empty items settles the output with the null sentinel
// (success, nil result) (spec §4.5).
//
// If the output task is deinited before anything in items has settled,
// every task in items is deinited in turn.
func Race(s *Scheduler, items []any) *Task {
	if s == nil {
		s = DefaultScheduler
	}
	out := s.newTask()

	if len(items) == 0 {
		out.settle(nil, nil)
		return out
	}

	finished := false
	finish := func(winner int, err, res any) {
		if finished {
			return
		}
		finished = true
		for i, v := range items {
			if i == winner {
				continue
			}
			if vt, ok := v.(*Task); ok {
				vt.Deinit()
			}
		}
		out.settle(err, res)
	}

	for i, v := range items {
		if vt, ok := v.(*Task); ok {
			if vt.State() != Pending {
				vt.flag &^= flagPendingRejection
				finish(i, vt.err, vt.res)
				return out
			}
			continue
		}
		finish(i, nil, v)
		return out
	}

	for i, v := range items {
		idx := i
		watchOnce(v.(*Task), func(err, res any) {
			finish(idx, err, res)
		})
	}

	out.finalizer = func(_, _ any) {
		for _, v := range items {
			if vt, ok := v.(*Task); ok {
				vt.Deinit()
			}
		}
	}
	return out
}
