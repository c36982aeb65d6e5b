package vow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dariusk/vow"
)

func TestAllSucceedsInOrder(t *testing.T) {
	s := vow.NewScheduler()
	a := vow.New(s)
	b := vow.New(s)

	out := vow.All(s, []any{a, "plain", b})

	b.Settle(nil, "b")
	s.Tick()
	require.Equal(t, vow.Pending, out.State())

	a.Settle(nil, "a")
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Equal(t, []any{"a", "plain", "b"}, res)
}

func TestAllWithNoTasksResolvesImmediately(t *testing.T) {
	s := vow.NewScheduler()
	out := vow.All(s, []any{"x", "y"})
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Equal(t, []any{"x", "y"}, res)
}

func TestAllShortCircuitsOnErrorAndCancelsSiblings(t *testing.T) {
	s := vow.NewScheduler()
	var unhandled []*vow.Task
	s.OnUnhandledRejection(func(task *vow.Task) { unhandled = append(unhandled, task) })
	boom := errors.New("boom")
	failing := vow.FromError(s, boom)
	pending := vow.New(s)

	out := vow.All(s, []any{failing, pending})
	s.Tick()

	_, err := out.Deref()
	require.ErrorIs(t, err, boom)
	require.Equal(t, []*vow.Task{out}, unhandled)

	var derr *vow.DeinitError
	_, perr := pending.Deref()
	require.ErrorAs(t, perr, &derr)
}

func TestAllCancelsRemainingInputsWhenOutputIsDeinited(t *testing.T) {
	s := vow.NewScheduler()
	a := vow.New(s)
	b := vow.New(s)

	out := vow.All(s, []any{a, b})
	out.Deinit()

	var derr *vow.DeinitError
	_, errA := a.Deref()
	require.ErrorAs(t, errA, &derr)
	_, errB := b.Deref()
	require.ErrorAs(t, errB, &derr)
}

func TestRaceFirstSettledWins(t *testing.T) {
	s := vow.NewScheduler()
	a := vow.New(s)
	b := vow.New(s)

	out := vow.Race(s, []any{a, b})

	b.Settle(nil, "b wins")
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Equal(t, "b wins", res)

	var derr *vow.DeinitError
	_, aErr := a.Deref()
	require.ErrorAs(t, aErr, &derr)
}

func TestRaceAlreadySettledInputWinsInOrder(t *testing.T) {
	s := vow.NewScheduler()
	first := vow.FromResult(s, "first")
	second := vow.FromResult(s, "second")

	out := vow.Race(s, []any{first, second})
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Equal(t, "first", res)
}

func TestRaceNonTaskInputWinsImmediately(t *testing.T) {
	s := vow.NewScheduler()
	pending := vow.New(s)

	out := vow.Race(s, []any{pending, "fast"})
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Equal(t, "fast", res)

	var derr *vow.DeinitError
	_, pErr := pending.Deref()
	require.ErrorAs(t, pErr, &derr)
}

func TestRaceEmptyResolvesToNullSentinel(t *testing.T) {
	s := vow.NewScheduler()
	out := vow.Race(s, nil)
	s.Tick()

	res, err := out.Deref()
	require.NoError(t, err)
	require.Nil(t, res)
}
