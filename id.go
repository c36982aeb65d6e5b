package vow

import "github.com/google/uuid"

// id returns t's debug identifier, minting one with [uuid.NewString] on
// first use.
//
// The id is never consulted for equality or control flow — tasks are
// compared by pointer identity everywhere that matters, exactly like the
// teacher's *Task/*Coroutine — it only makes panic messages, log fields and
// [Task.String] output distinguishable when many tasks are in flight at
// once.
func (t *Task) id() string {
	if t.debugID == "" {
		t.debugID = uuid.NewString()
	}
	return t.debugID
}

// String implements [fmt.Stringer].
func (t *Task) String() string {
	return "task:" + t.id() + ":" + t.state.String()
}
