package tneo

import (
	"math/bits"

	"github.com/lightsp33d/tneo/internal/dlist"
)

// readyStruct is the ready structure from spec section 3: P FIFO lists
// indexed by priority, plus a bitmap with bit i set iff queue i is
// non-empty. TrailingZeros64 on the bitmap finds the highest-priority
// non-empty queue in O(1).
type readyStruct struct {
	bitmap uint64
	queues []dlist.List
}

func newReadyStruct(p int) readyStruct {
	rs := readyStruct{queues: make([]dlist.List, p)}
	for i := range rs.queues {
		rs.queues[i].Init()
	}
	return rs
}

func (rs *readyStruct) setBit(p int)   { rs.bitmap |= 1 << uint(p) }
func (rs *readyStruct) clearBit(p int) { rs.bitmap &^= 1 << uint(p) }

func (rs *readyStruct) lowestSetBit() (int, bool) {
	if rs.bitmap == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(rs.bitmap), true
}

// markRunnable adds the RUNNABLE bit to t's state and enqueues it at the
// tail of the ready queue for its effective priority. Precondition: t's
// state was zero (neither WAIT, SUSPEND nor DORMANT).
func (k *Kernel) markRunnable(t *Task) {
	t.state |= stateRunnable
	p := t.effPriority
	k.ready.queues[p].PushBack(&t.listNode)
	k.ready.setBit(p)
	if k.next == nil || p < k.next.effPriority {
		k.next = t
	}
}

// clearRunnable unlinks t from its ready queue and clears RUNNABLE.
func (k *Kernel) clearRunnable(t *Task) {
	p := t.effPriority
	t.listNode.Remove()
	if k.ready.queues[p].Empty() {
		k.ready.clearBit(p)
	}
	t.state &^= stateRunnable
	if k.next == t {
		k.recomputeNext()
	}
}

// recomputeNext sets next to the head of the ready queue at the lowest
// (highest-priority) set bit. The idle task's priority bit is always set
// once the kernel has started, so this always succeeds after boot.
func (k *Kernel) recomputeNext() {
	p, ok := k.ready.lowestSetBit()
	if !ok {
		k.next = nil
		return
	}
	head := k.ready.queues[p].Front()
	k.next = head.Value().(*Task)
}

// yieldIfNeeded requests a context switch if current and next differ.
// Within ISR context (isrNest > 0) the switch is deferred to the
// outermost ExitISR, per the ISR boundary rules in spec section 4.9.
func (k *Kernel) yieldIfNeeded() {
	if k.booting {
		return
	}
	if k.isrNestLoad() > 0 {
		return
	}
	if k.current == k.next {
		return
	}
	old := k.current
	k.current = k.next
	if old == nil {
		k.port.ContextSwitchNowNoSave(k.current.ctx)
		return
	}
	k.port.ContextSwitch(old.ctx, k.current.ctx)
}

// changePriority moves a runnable task to a new priority's ready queue
// (always at the tail), or simply relabels a non-runnable one. It only
// ever touches effPriority; callers that also want to change base
// priority (Task.ChangePriority) do so before calling this.
func (k *Kernel) changePriority(t *Task, p int) {
	if t.effPriority == p {
		return
	}
	if t.state == stateRunnable {
		old := t.effPriority
		t.listNode.Remove()
		if k.ready.queues[old].Empty() {
			k.ready.clearBit(old)
		}
		t.effPriority = p
		k.ready.queues[p].PushBack(&t.listNode)
		k.ready.setBit(p)
		k.recomputeNext()
	} else {
		t.effPriority = p
	}
}
