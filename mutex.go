package tneo

import "github.com/lightsp33d/tneo/internal/dlist"

const mutexMagic uint32 = 0x7a4b0003

// MutexProtocol selects how a Mutex reacts to priority inversion.
type MutexProtocol int

const (
	// MutexProtocolInheritance boosts the current holder's effective
	// priority to match the highest-priority (numerically lowest) waiter,
	// transitively across a chain of blocked holders.
	MutexProtocolInheritance MutexProtocol = iota
	// MutexProtocolCeiling boosts the holder's effective priority to a
	// fixed ceiling the instant it acquires the mutex, regardless of
	// whether anyone is waiting.
	MutexProtocolCeiling
)

// Mutex is an ownership-tracked lock with priority inheritance or
// priority ceiling, and an optional recursive lock count.
type Mutex struct {
	k         *Kernel
	waiters   dlist.List
	protocol  MutexProtocol
	ceiling   int
	holder    *Task
	count     int
	ownedNode dlist.Node // links into holder.ownedMutexes
	magic     uint32
}

// CreateMutex constructs a mutex using the given protocol. ceiling is only
// meaningful (and validated) for MutexProtocolCeiling. WrongParameter if
// the mutex subsystem is disabled, or ceiling is out of range.
func (k *Kernel) CreateMutex(protocol MutexProtocol, ceiling int) (*Mutex, Code) {
	if k.cfg.DisableMutex {
		return nil, WrongParameter
	}
	if protocol == MutexProtocolCeiling && (ceiling < 0 || ceiling >= k.cfg.Priorities) {
		return nil, WrongParameter
	}
	m := &Mutex{k: k, protocol: protocol, ceiling: ceiling, magic: mutexMagic}
	m.waiters.Init()
	m.ownedNode.Init(m)
	return m, OK
}

func (m *Mutex) valid() bool {
	return m != nil && (m.k.cfg.DisableObjectIdentityChecks || m.magic == mutexMagic)
}

// Holder returns the task currently holding m, or nil.
func (m *Mutex) Holder() *Task { return m.holder }

// mutexAssignHolder installs t as m's new holder (lock count reset to 1,
// m linked into t's owned-mutex list) and recomputes t's effective
// priority, which picks up m's ceiling (ceiling protocol) or m's
// remaining waiters (inheritance protocol) uniformly with every other
// mutex t already owns.
func (k *Kernel) mutexAssignHolder(m *Mutex, t *Task) {
	m.holder = t
	m.count = 1
	t.ownedMutexes.PushBack(&m.ownedNode)
	k.recomputeEffectivePriority(t)
}

// mutexCompletionHook returns the wait-queue wake hook from spec section
// 4.6: on OK the waiter becomes m's new holder; on any other code it is
// merely leaving m's wait queue, so the current holder's inherited boost
// (if any) must be recomputed since the set of waiters changed.
func (k *Kernel) mutexCompletionHook(m *Mutex) completionHook {
	return func(k *Kernel, t *Task, code Code) {
		if code == OK {
			k.mutexAssignHolder(m, t)
			return
		}
		if m.holder != nil {
			k.recomputeEffectivePriority(m.holder)
		}
	}
}

// recomputeEffectivePriority applies invariant 7: t's effective priority
// is the min (numerically, i.e. highest urgency) over its base priority
// and, for every mutex it owns, that mutex's ceiling (ceiling protocol) or
// the highest-priority current waiter on it (inheritance protocol).
func (k *Kernel) recomputeEffectivePriority(t *Task) {
	best := t.priority
	t.ownedMutexes.Each(func(n *dlist.Node) {
		m := n.Value().(*Mutex)
		switch m.protocol {
		case MutexProtocolCeiling:
			if m.ceiling < best {
				best = m.ceiling
			}
		case MutexProtocolInheritance:
			m.waiters.Each(func(wn *dlist.Node) {
				w := wn.Value().(*Task)
				if w.effPriority < best {
					best = w.effPriority
				}
			})
		}
	})
	k.changePriority(t, best)
}

// mutexBoostChain walks the chain of blocked holders starting at m,
// boosting each one to h's priority in turn, per spec section 4.5. The
// walk uses a generation-stamped scratch array instead of a set (no
// allocation, O(1) membership test) to detect a cycle, which is reported
// to the deadlock detector rather than unwound.
func (k *Kernel) mutexBoostChain(m *Mutex, h *Task) {
	k.walkGen++
	gen := k.walkGen
	k.walkMark[h.id] = gen

	cur := m.holder
	curMutex := m
	for cur != nil {
		if k.walkMark[cur.id] == gen {
			k.reportDeadlock(h, cur, curMutex)
			return
		}
		k.walkMark[cur.id] = gen

		if h.effPriority < cur.effPriority {
			k.changePriority(cur, h.effPriority)
		}

		if cur.state&stateWait == 0 || cur.waitReason != WaitReasonMutex || cur.blockedMutex == nil {
			return
		}
		curMutex = cur.blockedMutex
		cur = curMutex.holder
	}
}

// Lock acquires m, blocking with reason MUTEX if it is held by another
// task (0: poll, returns Timeout immediately; TimeoutInfinite: wait
// forever).
func (m *Mutex) Lock(timeout int64) Code {
	k := m.k
	if c := k.requireTaskContext(); c != OK {
		return c
	}
	mask := k.enterCritical()
	if !m.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	h := k.current

	if m.holder == nil {
		k.mutexAssignHolder(m, h)
		k.leaveCritical(mask)
		return OK
	}

	if m.holder == h {
		if k.cfg.DisableRecursiveMutex {
			k.leaveCritical(mask)
			return IllegalUse
		}
		m.count++
		k.leaveCritical(mask)
		return OK
	}

	if timeout == 0 {
		k.leaveCritical(mask)
		return Timeout
	}

	hook := k.mutexCompletionHook(m)
	k.block(h, &m.waiters, WaitReasonMutex, timeout, hook)
	h.blockedMutex = m
	if m.protocol == MutexProtocolInheritance {
		k.mutexBoostChain(m, h)
	}
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return h.waitResult
}

// Unlock releases one recursive level of m. Once the count reaches zero,
// m's holder is recomputed, the holder's effective priority drops back
// per recomputeEffectivePriority, and the head of m's wait queue (if any)
// is woken and installed as the new holder. NotOwned if the calling task
// is not m's current holder.
func (m *Mutex) Unlock() Code {
	k := m.k
	if c := k.requireTaskContext(); c != OK {
		return c
	}
	mask := k.enterCritical()
	if !m.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	h := k.current
	if m.holder != h {
		k.leaveCritical(mask)
		return NotOwned
	}
	m.count--
	if m.count > 0 {
		k.leaveCritical(mask)
		return OK
	}

	m.ownedNode.Remove()
	m.holder = nil
	k.recomputeEffectivePriority(h)
	k.waitQueueWakeFirst(&m.waiters, OK)

	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}

// unlockAllOwned releases every mutex t holds, as Unlock would, used when
// t terminates. Once none remain, t's effective priority has no more
// owned-mutex boosts to account for, so it reverts to base.
func (k *Kernel) unlockAllOwned(t *Task) {
	for {
		n := t.ownedMutexes.Front()
		if n == nil {
			break
		}
		m := n.Value().(*Mutex)
		m.ownedNode.Remove()
		m.count = 0
		m.holder = nil
		k.waitQueueWakeFirst(&m.waiters, OK)
	}
	t.effPriority = t.priority
}

// Delete wakes every waiter with Deleted, clears the holder's ownership of
// m, recomputes the holder's effective priority, and invalidates m.
func (m *Mutex) Delete() Code {
	k := m.k
	mask := k.enterCritical()
	if !m.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	m.magic = 0
	holder := m.holder
	if holder != nil {
		m.ownedNode.Remove()
		m.holder = nil
	}
	k.waitQueueNotifyDeleted(&m.waiters)
	if holder != nil {
		k.recomputeEffectivePriority(holder)
	}
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}
