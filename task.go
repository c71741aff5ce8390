package tneo

import (
	"github.com/lightsp33d/tneo/internal/arch"
	"github.com/lightsp33d/tneo/internal/dlist"
)

// TaskID is a stable index into the Kernel's task arena, valid for the
// lifetime of the task it names (from Create to Delete).
type TaskID int

// taskState is a small bitset over {RUNNABLE, WAIT, SUSPEND, DORMANT}.
// SUSPEND is orthogonal and may coexist with WAIT; Suspend clears RUNNABLE,
// so it never coexists with that. A task is eligible to execute only when
// its state equals stateRunnable alone.
type taskState uint8

const (
	stateRunnable taskState = 1 << iota
	stateWait
	stateSuspend
	stateDormant
)

const taskMagic uint32 = 0x7a4b0001

// completionHook runs inside the critical section, before a waiter's
// completion is finalized, whenever that waiter's wait ends for any
// reason. Only the mutex primitive installs one (see mutex.go); semaphore
// and sleep waits have none.
type completionHook func(k *Kernel, t *Task, code Code)

// Task is the kernel's task control block. It is never heap-allocated
// individually: NewKernel pre-allocates the whole arena, and TaskID is a
// stable index into it, per the arena technique documented in DESIGN.md.
type Task struct {
	id  TaskID
	k   *Kernel
	ctx arch.TaskContext

	priority    int // base priority, as given to CreateTask / ChangePriority
	effPriority int // current, possibly boosted, priority
	state       taskState

	listNode dlist.Node // membership in a ready queue or a wait queue
	allNode  dlist.Node // membership in the kernel's created-task registry

	timer          Timer           // used for Sleep and for primitive timeouts
	waitReason     WaitReason      // which kind of primitive, if state&stateWait != 0
	waitQueue      *dlist.List     // the queue linked via listNode, if any
	waitResult     Code            // set by complete(), read after yield
	completionHook completionHook  // set at block time, mutex waits only
	blockedMutex   *Mutex          // set at block time, mutex waits only

	ownedMutexes dlist.List // mutexes this task currently holds

	magic uint32
}

// ID returns the task's stable arena index.
func (t *Task) ID() TaskID { return t.id }

// Priority returns the task's base (un-boosted) priority.
func (t *Task) Priority() int { return t.priority }

// EffectivePriority returns the task's current, possibly boosted, priority.
func (t *Task) EffectivePriority() int { return t.effPriority }

func (t *Task) valid() bool { return t != nil && t.magic == taskMagic }

// CreateTask allocates a task from the arena in the DORMANT state. The
// task does not run until Activate is called. entry is invoked on the
// task's own execution context (a goroutine, on the reference arch port)
// the first time the scheduler switches to it.
func (k *Kernel) CreateTask(priority int, entry func(arg any), arg any) (*Task, Code) {
	if priority < 0 || priority >= k.cfg.Priorities {
		return nil, WrongParameter
	}
	if entry == nil {
		return nil, WrongParameter
	}

	mask := k.enterCritical()

	if len(k.freeTaskIDs) == 0 {
		k.leaveCritical(mask)
		return nil, Overflow
	}
	id := k.freeTaskIDs[len(k.freeTaskIDs)-1]
	k.freeTaskIDs = k.freeTaskIDs[:len(k.freeTaskIDs)-1]

	t := &k.tasks[id]
	t.priority = priority
	t.effPriority = priority
	t.state = stateDormant
	t.waitReason = WaitReasonNone
	t.waitQueue = nil
	t.completionHook = nil
	t.blockedMutex = nil
	t.magic = taskMagic
	t.ctx = k.port.StackInit(entry, arg, 0)
	t.ownedMutexes.Init()
	k.allTasks.PushBack(&t.allNode)
	k.leaveCritical(mask)
	return t, OK
}

// Activate transitions a DORMANT task to RUNNABLE.
func (t *Task) Activate() Code {
	k := t.k
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if t.state != stateDormant {
		k.leaveCritical(mask)
		return IllegalUse
	}
	t.state = 0
	k.markRunnable(t)
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}

// abortWait forcibly ends t's current wait (if any) with code, running the
// same completion machinery a natural wake would. No-op if t is not
// waiting. Must be called with the critical section held.
func (k *Kernel) abortWait(t *Task, code Code) {
	if t.state&stateWait == 0 {
		return
	}
	k.complete(t, code)
}

// Terminate moves a task to DORMANT: it is pulled off the ready or wait
// queue it belongs to (its wait, if any, completes as Forced), every mutex
// it holds is unlocked as by Mutex.Unlock, and it stops being scheduled
// until a later Activate.
func (t *Task) Terminate() Code {
	k := t.k
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if t.state&stateDormant != 0 {
		k.leaveCritical(mask)
		return IllegalUse
	}
	wasCurrent := t == k.current
	if t.state&stateRunnable != 0 {
		k.clearRunnable(t)
	}
	k.abortWait(t, Forced)
	// abortWait may have just completed a wait and marked t runnable again
	// (complete() does this unless t is also SUSPENDed) - strip that back
	// off before stamping DORMANT, or t would be left linked in a ready
	// queue it no longer belongs to.
	if t.state&stateRunnable != 0 {
		k.clearRunnable(t)
	}
	t.state = stateDormant
	k.unlockAllOwned(t)
	k.leaveCritical(mask)
	if wasCurrent {
		k.yieldIfNeeded()
	}
	return OK
}

// Delete releases a DORMANT task's arena slot, invalidating its handle.
func (t *Task) Delete() Code {
	k := t.k
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if t.state != stateDormant {
		k.leaveCritical(mask)
		return IllegalUse
	}
	t.magic = 0
	t.allNode.Remove()
	k.freeTaskIDs = append(k.freeTaskIDs, t.id)
	k.leaveCritical(mask)
	return OK
}

// Suspend sets the orthogonal SUSPEND bit. A RUNNABLE task is pulled off
// its ready queue; a WAITing task stays on its wait queue (and its timer,
// if armed, keeps running) but will not be marked runnable again until
// Resume is also called.
func (t *Task) Suspend() Code {
	k := t.k
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if t.state&stateDormant != 0 {
		k.leaveCritical(mask)
		return IllegalUse
	}
	if t.state&stateSuspend != 0 {
		k.leaveCritical(mask)
		return IllegalUse
	}
	if t.state&stateRunnable != 0 {
		k.clearRunnable(t)
	}
	t.state |= stateSuspend
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}

// Resume clears the SUSPEND bit. If the task's wait had already completed
// while it was suspended (state left with no other bit set), it becomes
// runnable immediately; otherwise it resumes waiting undisturbed.
func (t *Task) Resume() Code {
	k := t.k
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if t.state&stateSuspend == 0 {
		k.leaveCritical(mask)
		return IllegalUse
	}
	t.state &^= stateSuspend
	becameRunnable := t.state == 0
	if becameRunnable {
		k.markRunnable(t)
	}
	k.leaveCritical(mask)
	if becameRunnable {
		k.yieldIfNeeded()
	}
	return OK
}

// Sleep blocks the calling task for the given number of ticks. It must be
// called from task context, on the currently running task.
func (k *Kernel) Sleep(ticks int64) Code {
	if c := k.requireTaskContext(); c != OK {
		return c
	}
	if ticks == 0 {
		return OK
	}
	t := k.current
	mask := k.enterCritical()
	k.block(t, nil, WaitReasonSleep, ticks, nil)
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return t.waitResult
}

// Wakeup ends t's sleep early, with result OK. IllegalUse if t is not
// currently sleeping.
func (t *Task) Wakeup() Code {
	k := t.k
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if t.state&stateWait == 0 || t.waitReason != WaitReasonSleep {
		k.leaveCritical(mask)
		return IllegalUse
	}
	k.complete(t, OK)
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}

// ReleaseWait forcibly ends any wait t is currently in, with result
// Forced. IllegalUse if t is not currently waiting.
func (t *Task) ReleaseWait() Code {
	k := t.k
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	if t.state&stateWait == 0 {
		k.leaveCritical(mask)
		return IllegalUse
	}
	k.complete(t, Forced)
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}

// ChangePriority sets t's base priority. A runnable task moves to the tail
// of its new priority's ready queue; a non-runnable task is only
// relabelled. The task's effective priority is then recomputed from its
// owned mutexes exactly as Mutex.Unlock would (invariant: effective
// priority is always the min over base priority and owned-mutex boosts).
func (t *Task) ChangePriority(p int) Code {
	k := t.k
	if p < 0 || p >= k.cfg.Priorities {
		return WrongParameter
	}
	mask := k.enterCritical()
	if !t.valid() {
		k.leaveCritical(mask)
		return InvalidObject
	}
	t.priority = p
	k.recomputeEffectivePriority(t)
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}
