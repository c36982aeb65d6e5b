package vow

import (
	"fmt"
	"runtime/debug"
)

// DeinitError is the error a still-[Pending] [Task] settles with when it is
// [Task.Deinit]ed (spec §4.3, §7 kind 4). It carries a stack trace of where
// Deinit was called, which is occasionally more useful than the generic
// message when a deinit arrives from an unexpected place.
//
// A descendant can always distinguish a deinit error from an ordinary user
// error with [errors.As]:
//
//	var derr *vow.DeinitError
//	if errors.As(err, &derr) {
//		// canceled, not a real failure
//	}
type DeinitError struct {
	Task  *Task
	stack []byte
}

func (e *DeinitError) Error() string {
	return fmt.Sprintf("vow: task %s was deinited", e.Task)
}

func newDeinitError(t *Task) *DeinitError {
	return &DeinitError{Task: t, stack: debug.Stack()}
}

// Stack returns the stack trace captured at the point [Task.Deinit] was
// called.
func (e *DeinitError) Stack() []byte { return e.stack }

// CyclicChainError is raised synchronously, at the call site, when a call to
// [Task.Settle] would make a task depend on itself (spec §4.3 rule 2, §7
// kind 2).
type CyclicChainError struct {
	Task *Task
}

func (e *CyclicChainError) Error() string {
	return fmt.Sprintf("vow: task %s settled with itself", e.Task)
}

// ConsumedError is raised synchronously, at the call site, by [Task.Map] (and
// its convenience wrappers) when called on a task that already has a
// successor (spec §4.3 invariant 3, §7 kind 3).
type ConsumedError struct {
	Task *Task
}

func (e *ConsumedError) Error() string {
	return fmt.Sprintf("vow: task %s has already been consumed", e.Task)
}

// panicError wraps a recovered mapper panic so it can travel through the
// error slot like any other user error. Grounded on the teacher's
// panicstack.go, trimmed to the single recover a mapper invocation needs —
// this library never re-enters a panicking mapper the way the teacher's
// coroutine driver must re-enter a panicking task, so there is no stack of
// repanics to track, only the one value and the one trace.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("vow: mapper panicked: %v\n\n%s", e.value, e.stack)
}

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// tryCatch runs f, converting any panic into a non-nil returned error built
// from a *panicError. runtime.Goexit is let through as-is, matching the
// teacher's own refusal to paper over it.
func tryCatch(f func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &panicError{value: v, stack: debug.Stack()}
		}
	}()
	f()
	return nil
}

// valueError adapts a non-error value settled into a task's error slot —
// the data model allows any value there — so [Task.Deref] can always
// return a real error.
type valueError struct{ v any }

func (e valueError) Error() string {
	return fmt.Sprintf("%v", e.v)
}

// asError returns v as an error: v itself if it already is one, or a
// valueError wrapping it otherwise.
func asError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return valueError{v}
}

// UnhandledRejectionError is what the default unhandled-rejection hook
// panics with (spec §4.2, §4.3's "pending rejection" notes). A host that
// installs its own hook via [Scheduler.OnUnhandledRejection] need not ever
// see this type.
type UnhandledRejectionError struct {
	Task *Task
	Err  error
}

func (e *UnhandledRejectionError) Error() string {
	return fmt.Sprintf("vow: unhandled rejection on task %s: %v", e.Task, e.Err)
}

func (e *UnhandledRejectionError) Unwrap() error {
	return e.Err
}
