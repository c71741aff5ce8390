// Package arch defines the architecture port: the external-collaborator
// boundary named in spec.md §6 and explicitly out of scope for the core
// itself (the real thing is per-architecture assembly). The kernel core
// only ever calls through this interface; internal/arch/sim provides a
// goroutine-based reference implementation used by tests and examples.
package arch

// TaskContext is an opaque per-task execution context created by
// Port.StackInit. The kernel never inspects it; it only threads it back
// into Port.ContextSwitch / ContextSwitchNowNoSave. A real port would hold
// a stack pointer here; the reference port holds a goroutine handshake.
type TaskContext interface{}

// Port is the architecture port contract from spec.md §6:
// arch_context_switch, arch_context_switch_now_nosave, arch_stack_init,
// arch_interrupts_disable/_enable, arch_inside_isr. Unlike the C original,
// ContextSwitch takes its from/to contexts explicitly rather than reading
// kernel-global current/next pointers — an explicit-state Go idiom
// (see SPEC_FULL.md §9) that keeps this package free of any import back
// into the kernel package, avoiding a dependency cycle.
type Port interface {
	// StackInit creates a TaskContext that will invoke entry(arg) the
	// first time it is switched to. size is advisory (the reference port
	// ignores it; a real port would size a stack allocation with it).
	StackInit(entry func(arg any), arg any, size int) TaskContext

	// ContextSwitch saves the caller's context (identified by from) and
	// transfers control to to, returning only once from is scheduled to
	// run again. Must only be called from task context (never ISR).
	ContextSwitch(from, to TaskContext)

	// ContextSwitchNowNoSave transfers control to to without preserving
	// any notion of the caller's context. Used once, at sys_start, to
	// enter the first task; the caller never expects to resume.
	ContextSwitchNowNoSave(to TaskContext)

	// InterruptsDisable masks interrupts, returning a token that must be
	// passed to the matching InterruptsEnable. Calls nest: InterruptsEnable
	// restores the prior state, which may still be disabled.
	InterruptsDisable() uint32

	// InterruptsEnable restores the interrupt mask to the state captured
	// by the matching InterruptsDisable.
	InterruptsEnable(mask uint32)

	// InsideISR reports whether the caller is executing within the
	// dynamic extent of an ISR, as tracked by this port independently of
	// the kernel's own nest_count (spec.md §4.9). Part of the port
	// contract for a real implementation to answer against hardware
	// state; the portable core tracks its own nesting (see isr.go) and
	// never calls this method (documented in DESIGN.md).
	InsideISR() bool
}
