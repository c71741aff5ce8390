package tneo

import "sync/atomic"

func (k *Kernel) isrNestLoad() int32 {
	return atomic.LoadInt32(&k.isrNest)
}

// EnterISR increments the ISR nesting counter. Every ISR-context kernel
// entry point (TickIntProcessing, and any application ISR that calls an
// ISR-variant service) must be bracketed by EnterISR/ExitISR.
func (k *Kernel) EnterISR() {
	atomic.AddInt32(&k.isrNest, 1)
}

// ExitISR decrements the ISR nesting counter. Once it reaches zero - the
// outermost ISR returning - it performs the deferred context switch any
// service invoked during the ISR (nested or not) may have requested by
// updating next, per the ISR boundary rules in spec section 4.9: no
// kernel service may invoke the architecture context switch directly
// while nest_count > 0.
func (k *Kernel) ExitISR() {
	if atomic.AddInt32(&k.isrNest, -1) == 0 {
		k.yieldIfNeeded()
	}
}
