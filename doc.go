// Package tneo is a preemptive, priority-based real-time kernel core: the
// scheduler, the wait-queue protocol shared by every blocking primitive, a
// mutex with priority inheritance or priority ceiling (plus an
// observational deadlock detector), a tick-driven timer wheel, and the
// ISR-nesting boundary that defers context switches to the outermost
// interrupt exit.
//
// A Kernel is an explicitly constructed value - there is no package-level
// global state, so a test or a simulation can run several independent
// kernels side by side. The real per-architecture context switch and
// interrupt mask are external collaborators, reached only through the
// internal/arch.Port interface; internal/arch/sim supplies a goroutine-based
// reference port for host-side tests and examples where no target hardware
// exists.
package tneo
