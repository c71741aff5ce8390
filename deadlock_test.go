package tneo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightsp33d/tneo/internal/simharness"
)

func TestTwoTaskTwoMutexDeadlockDetectedOnce(t *testing.T) {
	// spec.md §8 boundary property: a deadlock between exactly two tasks
	// over two inheritance-protocol mutexes is detected and reported once.
	// T1 locks M1 and activates the more urgent T2, which preempts it, locks
	// M2 and blocks on M1 (held by T1); T1 then blocks on M2 (held by T2) -
	// the boost walk starting from T1, the task that blocks second,
	// revisits its own id and reports the cycle.
	var reports []DeadlockInfo
	cfg := Config{
		Priorities: 4,
		MaxTasks:   4,
		OnDeadlock: func(info DeadlockInfo) { reports = append(reports, info) },
	}
	trace := simharness.NewTrace(1)

	var m1, m2 *Mutex
	var t1, t2 *Task

	k, _ := simharness.RunDriver(cfg, func(k *Kernel) {
		m1, _ = k.CreateMutex(MutexProtocolInheritance, 0)
		m2, _ = k.CreateMutex(MutexProtocolInheritance, 0)

		t2, _ = k.CreateTask(0, func(any) {
			m2.Lock(TimeoutInfinite)
			m1.Lock(TimeoutInfinite) // blocks on t1; never returns in this scenario
		}, nil)

		t1, _ = k.CreateTask(1, func(any) {
			m1.Lock(TimeoutInfinite)
			t2.Activate()
			m2.Lock(TimeoutInfinite) // blocks on t2, completing the cycle
		}, nil)

		t1.Activate()
		trace.Record(fmt.Sprintf("reports=%d", len(reports)))
	})

	events := trace.Collect(1)
	require.Equal(t, []string{"reports=1"}, events)
	require.Len(t, reports, 1)
	require.True(t, reports[0].Active)
	require.Len(t, reports[0].Tasks, 2)
	require.True(t, k.deadlockActive)

	// Forcing one participant out of its wait breaks the cycle and clears
	// detector state, reporting the clear exactly once.
	require.Equal(t, OK, t1.Terminate())
	require.Len(t, reports, 2)
	require.False(t, reports[1].Active)
	require.False(t, k.deadlockActive)
	require.Equal(t, stateDormant, t1.state)
}
