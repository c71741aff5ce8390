package tneo

import "github.com/lightsp33d/tneo/internal/dlist"

// WaitReason tags which kind of primitive a WAITing task is blocked on.
type WaitReason int

const (
	// WaitReasonNone means the task is not currently waiting.
	WaitReasonNone WaitReason = iota
	// WaitReasonSleep means the task is blocked in Kernel.Sleep.
	WaitReasonSleep
	// WaitReasonSem means the task is blocked in Sem.Acquire.
	WaitReasonSem
	// WaitReasonMutex means the task is blocked in Mutex.Lock.
	WaitReasonMutex
)

// TimeoutInfinite, passed as a timeout argument, means "wait forever".
const TimeoutInfinite int64 = -1

// block is the wait-queue protocol's entry half (spec section 4.3): pull
// the current task off the ready structure, mark it WAIT, link it onto w
// (if non-nil; a sleep has no wait queue), arm its timeout if one was
// given, and remember hook to run when the wait later completes for any
// reason. The caller must still invoke yieldIfNeeded after releasing the
// critical section.
func (k *Kernel) block(t *Task, w *dlist.List, reason WaitReason, timeout int64, hook completionHook) {
	k.clearRunnable(t)
	t.state |= stateWait
	t.waitReason = reason
	t.waitQueue = w
	t.completionHook = hook
	if w != nil {
		w.PushBack(&t.listNode)
	}
	if timeout > 0 {
		k.timerStart(&t.timer, timeout)
	}
}

// complete is the wait-queue protocol's exit half: unlink t from its wait
// queue and timer slot (if any), run its completion hook (mutex waits
// only), store the result code, clear WAIT, and mark t runnable again
// unless it is also SUSPENDed. Must be called with the critical section
// held; does not itself yield.
func (k *Kernel) complete(t *Task, code Code) {
	t.listNode.Remove()
	if t.timer.active {
		k.timerCancel(&t.timer)
	}
	if t.completionHook != nil {
		hook := t.completionHook
		t.completionHook = nil
		hook(k, t, code)
	}
	reason := t.waitReason
	t.waitResult = code
	t.state &^= stateWait
	t.waitReason = WaitReasonNone
	t.waitQueue = nil
	t.blockedMutex = nil
	if t.state&stateSuspend == 0 {
		k.markRunnable(t)
	}
	if reason == WaitReasonMutex {
		k.checkDeadlockClear(t)
	}
}

// waitQueueWakeFirst pops the head of w, if any, and completes it with
// code. Returns the woken task and whether one was found.
func (k *Kernel) waitQueueWakeFirst(w *dlist.List, code Code) (*Task, bool) {
	n := w.Front()
	if n == nil {
		return nil, false
	}
	t := n.Value().(*Task)
	k.complete(t, code)
	return t, true
}

// waitQueueNotifyDeleted completes every waiter on w with Deleted. Callers
// must still invoke yieldIfNeeded once, after releasing the critical
// section, per the "yield issued once after the batch" rule in spec
// section 4.3.
func (k *Kernel) waitQueueNotifyDeleted(w *dlist.List) {
	w.Drain(func(n *dlist.Node) {
		t := n.Value().(*Task)
		k.complete(t, Deleted)
	})
}
