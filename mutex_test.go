package tneo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightsp33d/tneo/internal/simharness"
)

// fakeCurrent installs a freshly created, never-activated task as both
// current and next, so Lock/Unlock paths that never contend (and so never
// call yieldIfNeeded with a real switch) can be exercised directly from the
// test goroutine. Any test using this must never drive the task into an
// actual wait, or yieldIfNeeded would try to switch through a goroutine that
// was never started.
func fakeCurrent(t *testing.T, k *Kernel, priority int) *Task {
	t.Helper()
	tsk, code := k.CreateTask(priority, func(any) { select {} }, nil)
	require.Equal(t, OK, code)
	k.current = tsk
	k.next = tsk
	return tsk
}

func TestMutexCreateRejectsBadParameters(t *testing.T) {
	k := newTestKernel(t, Config{MaxTasks: 2, Priorities: 4})

	_, code := k.CreateMutex(MutexProtocolCeiling, -1)
	require.Equal(t, WrongParameter, code)

	_, code = k.CreateMutex(MutexProtocolCeiling, 4)
	require.Equal(t, WrongParameter, code)

	kDisabled := newTestKernel(t, Config{MaxTasks: 2, Priorities: 4, DisableMutex: true})
	_, code = kDisabled.CreateMutex(MutexProtocolInheritance, 0)
	require.Equal(t, WrongParameter, code)
}

func TestMutexLockIsReentrantAndTracksOwnership(t *testing.T) {
	// Invariant 6 from spec.md §8: holder != none implies the mutex is
	// linked into the holder's owned-mutex list; holder == none implies an
	// empty wait queue (trivially true here - nothing ever waits).
	k := newTestKernel(t, Config{MaxTasks: 2, Priorities: 4})
	tsk := fakeCurrent(t, k, 1)
	m, code := k.CreateMutex(MutexProtocolInheritance, 0)
	require.Equal(t, OK, code)

	require.Equal(t, OK, m.Lock(TimeoutInfinite))
	require.Equal(t, tsk, m.Holder())
	require.Equal(t, m, tsk.ownedMutexes.Front().Value())

	require.Equal(t, OK, m.Lock(TimeoutInfinite))
	require.Equal(t, 2, m.count, "second lock by the holder is a recursive count bump")

	require.Equal(t, OK, m.Unlock())
	require.Equal(t, tsk, m.Holder(), "still held after one of two recursive unlocks")
	require.Equal(t, OK, m.Unlock())
	require.Nil(t, m.Holder())
	require.True(t, m.waiters.Empty())
}

func TestMutexNonRecursiveSecondLockIsIllegalUse(t *testing.T) {
	k := newTestKernel(t, Config{MaxTasks: 2, Priorities: 4, DisableRecursiveMutex: true})
	fakeCurrent(t, k, 1)
	m, _ := k.CreateMutex(MutexProtocolInheritance, 0)

	require.Equal(t, OK, m.Lock(TimeoutInfinite))
	require.Equal(t, IllegalUse, m.Lock(TimeoutInfinite))
}

func TestMutexUnlockByNonHolderIsNotOwned(t *testing.T) {
	k := newTestKernel(t, Config{MaxTasks: 2, Priorities: 4})
	fakeCurrent(t, k, 1)
	m, _ := k.CreateMutex(MutexProtocolInheritance, 0)
	require.Equal(t, NotOwned, m.Unlock())
}

func TestMutexCeilingBoostsOnAcquireAndRevertsOnRelease(t *testing.T) {
	k := newTestKernel(t, Config{MaxTasks: 2, Priorities: 4})
	tsk := fakeCurrent(t, k, 3)
	m, _ := k.CreateMutex(MutexProtocolCeiling, 0)

	require.Equal(t, OK, m.Lock(TimeoutInfinite))
	require.Equal(t, 0, tsk.EffectivePriority())

	require.Equal(t, OK, m.Unlock())
	require.Equal(t, 3, tsk.EffectivePriority())
}

func TestMutexPriorityInheritanceScenario(t *testing.T) {
	// spec.md §8 end-to-end scenario 3 (priority inheritance): a low
	// urgency task (base priority 2) holds M (inheritance protocol); a
	// high urgency task (base priority 1) blocks on M, boosting the
	// holder's effective priority to 1 until it releases M, at which point
	// the waiter becomes the new holder and the original holder's
	// effective priority reverts to its base.
	cfg := Config{Priorities: 4, MaxTasks: 4}
	trace := simharness.NewTrace(3)
	var m *Mutex
	var tl, th *Task

	simharness.RunDriver(cfg, func(k *Kernel) {
		m, _ = k.CreateMutex(MutexProtocolInheritance, 0)

		th, _ = k.CreateTask(1, func(any) {
			code := m.Lock(TimeoutInfinite)
			trace.Record(fmt.Sprintf("TH locked=%v eff=%d", code, th.EffectivePriority()))
			m.Unlock()
			th.Terminate()
		}, nil)

		tl, _ = k.CreateTask(2, func(any) {
			m.Lock(TimeoutInfinite) // uncontended
			th.Activate()
			trace.Record(fmt.Sprintf("TL boosted eff=%d", tl.EffectivePriority()))
			m.Unlock()
			trace.Record(fmt.Sprintf("TL reverted eff=%d", tl.EffectivePriority()))
			tl.Terminate()
		}, nil)

		tl.Activate()
	})

	events := trace.Collect(3)
	require.Equal(t, []string{
		"TL boosted eff=1",
		"TH locked=ok eff=1",
		"TL reverted eff=2",
	}, events)
	require.Equal(t, 2, tl.Priority(), "base priority is never mutated by inheritance")
}
