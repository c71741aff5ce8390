package tneo

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightsp33d/tneo/internal/arch/sim"
)

// These tests use only standalone timers (CreateTimer), never task sleeps or
// waits, so TickIntProcessing never touches the ready structure and never
// attempts a context switch - safe to call directly from the test goroutine.
func newTimerKernel(t *testing.T, wheelSize int) *Kernel {
	t.Helper()
	return NewKernel(sim.New(), Config{Priorities: 2, MaxTasks: 2, WheelSize: wheelSize})
}

func TestTimerStartPlacesInWheelBelowWheelSize(t *testing.T) {
	k := newTimerKernel(t, 8)
	var fired bool
	tm := k.CreateTimer(func(*Timer, any) { fired = true }, nil)

	require.Equal(t, OK, tm.Start(7))
	require.True(t, tm.active)
	require.True(t, k.genericTimers.Empty())

	for i := 0; i < 7; i++ {
		require.False(t, fired)
		k.TickIntProcessing()
	}
	require.True(t, fired)
	require.False(t, tm.active)
}

func TestTimerStartAtWheelSizeGoesToGenericList(t *testing.T) {
	// Boundary property from spec.md §8: a timeout exactly equal to
	// WheelSize is placed in the generic overflow list, not the wheel.
	k := newTimerKernel(t, 8)
	tm := k.CreateTimer(func(*Timer, any) {}, nil)

	require.Equal(t, OK, tm.Start(8))
	require.False(t, k.genericTimers.Empty())
	for i := range k.wheel {
		require.True(t, k.wheel[i].Empty())
	}
}

func TestTimerMigratesFromGenericListIntoWheel(t *testing.T) {
	k := newTimerKernel(t, 4)
	var fired bool
	tm := k.CreateTimer(func(*Timer, any) { fired = true }, nil)

	require.Equal(t, OK, tm.Start(5))
	require.False(t, k.genericTimers.Empty())

	for i := 0; i < 4; i++ {
		k.TickIntProcessing()
	}
	require.True(t, k.genericTimers.Empty(), "one revolution must migrate the timer into the wheel")
	require.False(t, fired)

	k.TickIntProcessing()
	require.True(t, fired)
}

func TestTimerCancelUnarmsAndReportsPriorState(t *testing.T) {
	k := newTimerKernel(t, 8)
	tm := k.CreateTimer(func(*Timer, any) {}, nil)

	require.False(t, tm.Cancel())
	require.Equal(t, OK, tm.Start(3))
	require.True(t, tm.Cancel())
	require.False(t, tm.active)
	require.False(t, tm.Cancel())
}

func TestTimerTimeLeft(t *testing.T) {
	k := newTimerKernel(t, 8)
	tm := k.CreateTimer(func(*Timer, any) {}, nil)

	require.Equal(t, uint64(0), tm.TimeLeft(), "inactive timer reports zero")

	tm.Start(5)
	require.Equal(t, uint64(5), tm.TimeLeft())
	k.TickIntProcessing()
	require.Equal(t, uint64(4), tm.TimeLeft())
}

func TestTimerStartRejectsNonPositiveTimeout(t *testing.T) {
	k := newTimerKernel(t, 8)
	tm := k.CreateTimer(func(*Timer, any) {}, nil)
	require.Equal(t, WrongParameter, tm.Start(0))
	require.Equal(t, WrongParameter, tm.Start(-1))
}

func TestTimerRestartCancelsPreviousArming(t *testing.T) {
	k := newTimerKernel(t, 8)
	var fireCount int
	tm := k.CreateTimer(func(*Timer, any) { fireCount++ }, nil)

	tm.Start(3)
	tm.Start(5)
	for i := 0; i < 10; i++ {
		k.TickIntProcessing()
	}
	require.Equal(t, 1, fireCount, "restarting must cancel the earlier arming, not fire it too")
}
