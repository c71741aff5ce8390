// Package sim is a goroutine-based reference implementation of arch.Port,
// for host-side testing and examples where no real hardware context
// switch exists. Each task context parks its goroutine on a channel and
// is resumed by a handoff from whichever goroutine currently holds
// "the CPU" — the same block-on-a-channel/resume-on-a-signal technique
// the retrieval pack's toy scheduler uses for its blocking goroutines
// (toysched/step7/toysched7.go's G.blockChan), generalized here into a
// symmetric coroutine transfer so exactly one goroutine is ever logically
// "running" at a time, matching the single-CPU assumption in spec.md §1.
package sim

import (
	"sync"
	"sync/atomic"

	"github.com/lightsp33d/tneo/internal/arch"
)

type taskContext struct {
	resume chan struct{} // buffered 1: "you may run now"
}

// Port is a reference arch.Port. The zero value is not usable; use New.
type Port struct {
	isrNest   int32
	disableMu sync.Mutex // stands in for the real global interrupt mask
	disabled  bool
}

// New returns a ready-to-use reference Port.
func New() *Port {
	return &Port{}
}

// StackInit implements arch.Port. size is ignored (goroutines are
// self-sizing); entry runs on its own goroutine, parked until first
// switched to.
func (p *Port) StackInit(entry func(arg any), arg any, _ int) arch.TaskContext {
	ctx := &taskContext{resume: make(chan struct{}, 1)}
	go func() {
		<-ctx.resume
		entry(arg)
		// entry returning without the kernel having torn down the task
		// (e.g. Terminate) would leave this goroutine parked forever on
		// the next switch-away; that's fine, it's simply never resumed.
	}()
	return ctx
}

// ContextSwitch implements arch.Port: wakes to, then parks the caller
// (from) until it is itself woken by a later ContextSwitch/
// ContextSwitchNowNoSave naming it as the target.
func (p *Port) ContextSwitch(from, to arch.TaskContext) {
	toCtx := to.(*taskContext)
	fromCtx := from.(*taskContext)
	toCtx.resume <- struct{}{}
	<-fromCtx.resume
}

// ContextSwitchNowNoSave implements arch.Port: wakes to without recording
// any way to resume the caller.
func (p *Port) ContextSwitchNowNoSave(to arch.TaskContext) {
	toCtx := to.(*taskContext)
	toCtx.resume <- struct{}{}
}

// InterruptsDisable implements arch.Port using a plain mutex as a stand-in
// for the real global interrupt mask; the kernel core never enters its
// critical section reentrantly within one service call, so non-recursive
// locking is sufficient here.
func (p *Port) InterruptsDisable() uint32 {
	p.disableMu.Lock()
	p.disabled = true
	return 1
}

// InterruptsEnable implements arch.Port.
func (p *Port) InterruptsEnable(_ uint32) {
	p.disabled = false
	p.disableMu.Unlock()
}

// MarkEnterISR and MarkExitISR let the simulation harness bracket a
// simulated interrupt handler (e.g. the tick ISR), so InsideISR reports
// correctly; the kernel's own ISR nesting counter (spec.md §4.9) is
// otherwise independent of this.
func (p *Port) MarkEnterISR() { atomic.AddInt32(&p.isrNest, 1) }
func (p *Port) MarkExitISR()  { atomic.AddInt32(&p.isrNest, -1) }

// InsideISR implements arch.Port.
func (p *Port) InsideISR() bool {
	return atomic.LoadInt32(&p.isrNest) > 0
}
