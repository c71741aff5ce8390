package tneo

import "github.com/lightsp33d/tneo/internal/dlist"

// Timer fires a callback (or completes a task's wait with Timeout, for
// the timer embedded in every Task) at a given absolute tick. It lives in
// exactly one of two places: the tick wheel, if it fires within one
// revolution, or the generic list otherwise (spec section 4.8).
type Timer struct {
	node     dlist.Node
	k        *Kernel
	fireTime uint64
	active   bool

	// task is set only for a Task's own embedded timer (sleep/timeout);
	// firing such a timer completes the task's wait with Timeout rather
	// than invoking callback.
	task *Task

	callback func(*Timer, any)
	userData any
}

// CreateTimer constructs a standalone software timer whose callback runs
// in tick-ISR context (interrupts masked) when it fires; it must be short
// and must not block.
func (k *Kernel) CreateTimer(callback func(*Timer, any), userData any) *Timer {
	tm := &Timer{k: k, callback: callback, userData: userData}
	tm.node.Init(tm)
	return tm
}

// fire invokes the timer's effect: completing a task's wait, or calling
// the user callback. Must be called with the critical section held (tick
// processing always holds it).
func (tm *Timer) fire(k *Kernel) {
	if tm.task != nil {
		k.complete(tm.task, Timeout)
		return
	}
	if tm.callback != nil {
		tm.callback(tm, tm.userData)
	}
}

// timerStart arms tm to fire after timeout ticks, cancelling any previous
// arming first. Placed in the wheel if timeout < WheelSize, else in the
// generic list, per the boundary rule in spec section 4.8 (a timeout
// exactly equal to WheelSize goes to the generic list).
func (k *Kernel) timerStart(tm *Timer, timeout int64) {
	if tm.active {
		k.timerCancel(tm)
	}
	tm.fireTime = k.tick + uint64(timeout)
	if uint64(timeout) < uint64(k.cfg.WheelSize) {
		slot := tm.fireTime & uint64(k.cfg.WheelSize-1)
		k.wheel[slot].PushBack(&tm.node)
	} else {
		k.genericTimers.PushBack(&tm.node)
	}
	tm.active = true
}

// Start arms the timer, as timerStart, for application use.
func (tm *Timer) Start(timeout int64) Code {
	if timeout <= 0 {
		return WrongParameter
	}
	k := tm.k
	mask := k.enterCritical()
	k.timerStart(tm, timeout)
	k.leaveCritical(mask)
	return OK
}

// timerCancel unlinks tm and clears active, reporting whether it had been
// armed.
func (k *Kernel) timerCancel(tm *Timer) bool {
	was := tm.active
	tm.node.Remove()
	tm.active = false
	return was
}

// Cancel disarms the timer. Returns whether it had been armed.
func (tm *Timer) Cancel() bool {
	k := tm.k
	mask := k.enterCritical()
	was := k.timerCancel(tm)
	k.leaveCritical(mask)
	return was
}

// TimeLeft returns the ticks remaining until tm fires, clamped at zero.
// Only meaningful while the timer is active.
func (tm *Timer) TimeLeft() uint64 {
	k := tm.k
	mask := k.enterCritical()
	defer k.leaveCritical(mask)
	if !tm.active || tm.fireTime <= k.tick {
		return 0
	}
	return tm.fireTime - k.tick
}

// TickIntProcessing is the periodic tick ISR entry point: it advances the
// tick counter, fires every timer in the current wheel slot whose
// fireTime has arrived, and once per wheel revolution migrates any
// generic-list timer that has come within one revolution of firing into
// its wheel slot.
func (k *Kernel) TickIntProcessing() {
	k.EnterISR()
	mask := k.enterCritical()

	k.tick++
	wheelSize := uint64(k.cfg.WheelSize)
	slot := k.tick & (wheelSize - 1)

	var toFire []*Timer
	k.wheel[slot].Each(func(n *dlist.Node) {
		tm := n.Value().(*Timer)
		if tm.fireTime == k.tick {
			toFire = append(toFire, tm)
		}
	})
	for _, tm := range toFire {
		tm.node.Remove()
		tm.active = false
		tm.fire(k)
	}

	if k.tick&(wheelSize-1) == 0 {
		var toMove []*Timer
		k.genericTimers.Each(func(n *dlist.Node) {
			tm := n.Value().(*Timer)
			if tm.fireTime-k.tick < wheelSize {
				toMove = append(toMove, tm)
			}
		})
		for _, tm := range toMove {
			tm.node.Remove()
			if tm.fireTime == k.tick {
				// Its wheel slot was already walked this tick.
				tm.active = false
				tm.fire(k)
				continue
			}
			newSlot := tm.fireTime & (wheelSize - 1)
			k.wheel[newSlot].PushBack(&tm.node)
		}
	}

	k.leaveCritical(mask)
	k.ExitISR()
}
