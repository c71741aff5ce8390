package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightsp33d/tneo/internal/arch"
)

func TestStackInitRunsEntryOnceSwitchedTo(t *testing.T) {
	p := New()
	done := make(chan struct{})
	ctx := p.StackInit(func(arg any) {
		require.Equal(t, "hello", arg)
		close(done)
	}, "hello", 0)
	p.ContextSwitchNowNoSave(ctx)
	<-done
}

func TestContextSwitchRoundTrips(t *testing.T) {
	p := New()
	var order []string
	mainCtx := &taskContext{resume: make(chan struct{}, 1)}

	var workerCtx arch.TaskContext
	workerCtx = p.StackInit(func(any) {
		order = append(order, "worker")
		p.ContextSwitch(workerCtx, mainCtx)
	}, nil, 0)

	order = append(order, "main:before")
	p.ContextSwitch(mainCtx, workerCtx)
	order = append(order, "main:after")

	require.Equal(t, []string{"main:before", "worker", "main:after"}, order)
}

func TestInterruptsDisableEnableRoundTrips(t *testing.T) {
	p := New()
	mask := p.InterruptsDisable()
	require.True(t, p.disabled)
	p.InterruptsEnable(mask)
	require.False(t, p.disabled)
}

func TestMarkEnterExitISRTracksInsideISR(t *testing.T) {
	p := New()
	require.False(t, p.InsideISR())

	p.MarkEnterISR()
	require.True(t, p.InsideISR())

	p.MarkEnterISR() // nested
	require.True(t, p.InsideISR())

	p.MarkExitISR()
	require.True(t, p.InsideISR(), "still nested one level")

	p.MarkExitISR()
	require.False(t, p.InsideISR())
}
