package tneo

import "github.com/lightsp33d/tneo/internal/dlist"

const semMagic uint32 = 0x7a4b0002

// Sem is a counting semaphore layered on the wait-queue protocol.
type Sem struct {
	k        *Kernel
	waiters  dlist.List
	count    int
	maxCount int
	magic    uint32
}

// CreateSem constructs a semaphore with the given initial and maximum
// count. WrongParameter if maxCount <= 0 or initialCount is out of
// [0, maxCount].
func (k *Kernel) CreateSem(initialCount, maxCount int) (*Sem, Code) {
	if maxCount <= 0 || initialCount < 0 || initialCount > maxCount {
		return nil, WrongParameter
	}
	s := &Sem{k: k, count: initialCount, maxCount: maxCount, magic: semMagic}
	s.waiters.Init()
	return s, OK
}

func (s *Sem) valid() bool {
	return s != nil && (s.k.cfg.DisableObjectIdentityChecks || s.magic == semMagic)
}

// Count returns the current count.
func (s *Sem) Count() int { return s.count }

// Signal follows the open-question resolution in spec section 9: if a
// waiter exists, it is woken with OK and the count is left unchanged
// (equivalent to incrementing then immediately handing the token to the
// waiter); otherwise the count is incremented, or Overflow is returned if
// it is already at maxCount.
func (s *Sem) Signal() Code {
	k := s.k
	if c := k.requireTaskContext(); c != OK {
		return c
	}
	mask := k.enterCritical()
	if !s.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if _, woke := k.waitQueueWakeFirst(&s.waiters, OK); woke {
		k.leaveCritical(mask)
		k.yieldIfNeeded()
		return OK
	}
	if s.count >= s.maxCount {
		k.leaveCritical(mask)
		return Overflow
	}
	s.count++
	k.leaveCritical(mask)
	return OK
}

// ISignal is the ISR-context form of Signal: it performs the same state
// transition but never synchronously requests a context switch, relying
// on the outermost ExitISR to notice next != current.
func (s *Sem) ISignal() Code {
	k := s.k
	if c := k.requireISRContext(); c != OK {
		return c
	}
	mask := k.enterCritical()
	if !s.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if _, woke := k.waitQueueWakeFirst(&s.waiters, OK); woke {
		k.leaveCritical(mask)
		return OK
	}
	if s.count >= s.maxCount {
		k.leaveCritical(mask)
		return Overflow
	}
	s.count++
	k.leaveCritical(mask)
	return OK
}

// Acquire decrements the count if positive, otherwise blocks the calling
// task with reason SEM until timeout ticks elapse (0: poll, returns
// Timeout immediately; TimeoutInfinite: wait forever).
func (s *Sem) Acquire(timeout int64) Code {
	k := s.k
	if c := k.requireTaskContext(); c != OK {
		return c
	}
	mask := k.enterCritical()
	if !s.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if s.count > 0 {
		s.count--
		k.leaveCritical(mask)
		return OK
	}
	if timeout == 0 {
		k.leaveCritical(mask)
		return Timeout
	}
	t := k.current
	k.block(t, &s.waiters, WaitReasonSem, timeout, nil)
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return t.waitResult
}

// Delete wakes every waiter with Deleted and invalidates the handle.
func (s *Sem) Delete() Code {
	k := s.k
	mask := k.enterCritical()
	if !s.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	s.magic = 0
	k.waitQueueNotifyDeleted(&s.waiters)
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}
