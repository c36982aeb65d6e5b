// Package vow implements a cancelable, one-shot asynchronous task
// primitive: a cell that starts Pending and settles exactly once, with
// either an error or a result, and lets callers chain, flatten, race, and
// cancel such cells without ever touching a goroutine or a channel
// directly.
//
// Since Go already has goroutines and channels for real concurrency, this
// library only implements a single-threaded, cooperative notification
// model — the kind some call a microtask queue. One can create as many
// [Scheduler]s as needed, though most programs only want the process-wide
// [DefaultScheduler].
//
// # Settling and Chaining
//
// A fresh [Task], from [New], is Pending. Something settles it, later,
// with [Task.Settle]. Everything downstream of that task is built with
// [Task.Map] and its convenience wrappers [Task.MapError],
// [Task.MapResult], and [Task.Finally], each of which consumes its
// receiver and returns a brand-new Pending task to keep chaining from.
//
// If a mapper returns another *Task — or a task settles with one directly,
// via [Task.Settle] or [From] — that nested task is flattened into the
// chain automatically: the outer task simply waits for the inner one.
//
// # Cancelation
//
// [Task.Deinit] cancels a task. If it is still Pending, it settles
// immediately with a [DeinitError] a descendant can catch with any mapper,
// exactly like a real error. Whether the task is Pending or already
// settled, the cancelation also cascades upstream, into whatever task it
// exclusively owns. A task may
// have exactly one owning successor (via Map); anyone else who wants to
// merely observe the outcome, without being able to cancel it, attaches a
// [Task.Weak] branch instead.
//
// # Combinators and the Coroutine Driver
//
// [All] and [Race] combine a slice of tasks (and plain values) into one;
// both cancel every loser once the combined outcome is known. [Drive] goes
// the other direction: it turns a [Procedure] — an ordinary Go function
// that suspends at [Yield] calls — into a single *Task, so code that reads
// like synchronous, sequential logic can still be built entirely out of
// the async primitives above.
//
// # External Interop
//
// [FromHostPromise] and [Task.ToPromiseLike] adapt to and from any
// thenable-shaped type implementing [PromiseLike]. Host promises have no
// cancelation of their own, so a task adapted from one can only ever
// cancel itself, never the work behind the promise.
//
// # What This Package Does Not Do
//
// There is no thread-safety here: a [Scheduler] and every [Task] it owns
// are meant to be driven from a single goroutine at a time (spawn the
// occasional goroutine to produce a result, then hand it back through
// [Task.Settle] or a channel-backed [PromiseLike], rather than touching a
// task from two goroutines directly). There is also no timer, no retry
// policy, and no distributed cancelation — those live in the code that
// calls into this package, not in it.
package vow
