package vow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dariusk/vow"
)

// TestScenarioBasicChain mirrors a plain chain of mapResult/mapError steps,
// the second mapResult throwing into the mapError step's error slot.
func TestScenarioBasicChain(t *testing.T) {
	s := vow.NewScheduler()
	root := vow.FromResult(s, "one")

	step2 := root.MapResult(func(res any) any {
		return res.(string) + " two"
	})
	step3 := step2.MapResult(func(res any) any {
		panic(res.(string) + " three")
	})
	final := step3.MapError(func(err any) any {
		return err.(error).Error() + " four"
	})
	s.Tick()

	res, err := final.Deref()
	require.NoError(t, err)
	require.Contains(t, res.(string), "one two three")
	require.Contains(t, res.(string), "four")
}

// TestScenarioUpstreamDeinitCancelsResource mirrors canceling a descendant
// before an upstream resource-release callback has run: deinit must reach
// the upstream root, and the resource must be released exactly once.
func TestScenarioUpstreamDeinitCancelsResource(t *testing.T) {
	s := vow.NewScheduler()
	s.OnUnhandledRejection(func(*vow.Task) {})
	root := vow.New(s)

	released := 0
	watcher := root.Weak().Finally(func(err, res any) any {
		released++
		return nil
	})

	step1 := root.Map(func(err, res any) (any, any) { return err, res })
	step2 := step1.Map(func(err, res any) (any, any) { return err, res })

	step2.Deinit()
	s.Tick()

	require.Equal(t, 1, released)

	var watcherDerr *vow.DeinitError
	_, watcherErr := watcher.Deref()
	require.ErrorAs(t, watcherErr, &watcherDerr)

	var derr *vow.DeinitError
	_, err := step2.Deref()
	require.ErrorAs(t, err, &derr)
}

// TestScenarioAllShortCircuitsOnError mirrors all([fromResult("a"),
// fromError("e"), pending]): the output settles with "e" and the still-
// pending sibling is deinited without ever running its own mappers.
func TestScenarioAllShortCircuitsOnError(t *testing.T) {
	s := vow.NewScheduler()
	s.OnUnhandledRejection(func(*vow.Task) {})
	boom := errors.New("e")
	pending := vow.New(s)

	mapperRan := false
	pending.Map(func(err, res any) (any, any) {
		mapperRan = true
		return err, res
	})

	out := vow.All(s, []any{
		vow.FromResult(s, "a"),
		vow.FromError(s, boom),
		pending,
	})
	s.Tick()

	_, err := out.Deref()
	require.ErrorIs(t, err, boom)
	require.False(t, mapperRan)
}

// TestScenarioRaceCancelsLosers mirrors race([pendingA, fromResult("win"),
// pendingB]): the winner's value comes through and both pending siblings
// are deinited.
func TestScenarioRaceCancelsLosers(t *testing.T) {
	s := vow.NewScheduler()
	pendingA := vow.New(s)
	pendingB := vow.New(s)

	out := vow.Race(s, []any{pendingA, vow.FromResult(s, "win"), pendingB})
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Equal(t, "win", res)

	var derr *vow.DeinitError
	_, errA := pendingA.Deref()
	require.ErrorAs(t, errA, &derr)
	_, errB := pendingB.Deref()
	require.ErrorAs(t, errB, &derr)
}

// TestScenarioWeakBranchesObserveIndependently mirrors a parent with two
// weak branches: both resolve with the parent's outcome, and deiniting one
// does not affect the parent or the sibling.
func TestScenarioWeakBranchesObserveIndependently(t *testing.T) {
	s := vow.NewScheduler()
	parent := vow.New(s)

	b1 := parent.Weak()
	b2 := parent.Weak()

	parent.Settle(nil, 42)
	s.Tick()

	res1, err1 := b1.Deref()
	require.NoError(t, err1)
	require.Equal(t, 42, res1)

	res2, err2 := b2.Deref()
	require.NoError(t, err2)
	require.Equal(t, 42, res2)

	b1.Deinit()

	resParent, errParent := parent.Deref()
	require.NoError(t, errParent)
	require.Equal(t, 42, resParent)

	res2Again, err2Again := b2.Deref()
	require.NoError(t, err2Again)
	require.Equal(t, 42, res2Again)
}

// TestScenarioCoroutineCatchesYieldedError mirrors driving a procedure that
// yields a failing task inside a recover, then yields a recovery task
// producing the final success value.
func TestScenarioCoroutineCatchesYieldedError(t *testing.T) {
	s := vow.NewScheduler()
	boom := vow.FromError(s, errors.New("boom"))
	recovery := vow.FromResult(s, "ok")

	out := vow.Drive(s, func(yield vow.Yield) (result any) {
		func() {
			defer func() { recover() }()
			yield(boom)
		}()
		return yield(recovery)
	})
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Equal(t, "ok", res)
}

// TestInvariantMapTwiceRaisesAndDoesNotCreateSecondSuccessor confirms the
// second Map call on an already-consumed task panics and leaves the first
// successor the only one ever driven.
func TestInvariantMapTwiceRaisesAndDoesNotCreateSecondSuccessor(t *testing.T) {
	s := vow.NewScheduler()
	root := vow.New(s)
	first := root.Map(func(err, res any) (any, any) { return err, res })

	var consumed *vow.ConsumedError
	func() {
		defer func() {
			v := recover()
			require.NotNil(t, v)
			err, ok := v.(error)
			require.True(t, ok)
			require.ErrorAs(t, err, &consumed)
		}()
		root.Map(func(err, res any) (any, any) { return err, res })
	}()

	root.Settle(nil, "value")
	s.Tick()

	res, err := first.Deref()
	require.NoError(t, err)
	require.Equal(t, "value", res)
}

// TestInvariantDeinitIsIdempotentAcrossMultipleCalls confirms a second and
// third Deinit call change nothing further.
func TestInvariantDeinitIsIdempotentAcrossMultipleCalls(t *testing.T) {
	s := vow.NewScheduler()
	task := vow.New(s)

	task.Deinit()
	res1, err1 := task.Deref()

	task.Deinit()
	task.Deinit()
	res2, err2 := task.Deref()

	require.Equal(t, res1, res2)
	require.Equal(t, err1, err2)
}
