// Package simharness assembles a Kernel over the goroutine-based reference
// arch.Port (internal/arch/sim) for tests and examples, and gives task
// bodies a deterministic way to report what they did and in what order -
// goroutine scheduling itself is not deterministic, so tests that assert
// ordering must synchronize through the harness rather than through timing.
//
// A context switch parks whichever goroutine calls it, standing in for
// that goroutine's task - so only a task's own body may safely call a
// kernel operation that might switch away from it. RunDriver establishes
// this correctly: the one Activate call made directly by the test itself
// is always the kernel's very first switch (current is nil, so it is
// non-blocking), and everything after that - creating and activating the
// scenario's real tasks, simulating a periodic tick, simulating an ISR
// signal - runs inside the driver task's own body, never on the test
// goroutine directly.
package simharness

import (
	"github.com/lightsp33d/tneo"
	"github.com/lightsp33d/tneo/internal/arch/sim"
)

// New builds a Kernel wired to a fresh sim.Port, ready for the caller to
// call Start or RunDriver.
func New(cfg tneo.Config) (*tneo.Kernel, *sim.Port) {
	port := sim.New()
	k := tneo.NewKernel(port, cfg)
	return k, port
}

// RunDriver creates a single task at priority cfg.Priorities-1, the lowest
// priority the configured Kernel supports, and activates it (cfg.Priorities
// must be set explicitly: its zero-value default is not applied here, and
// CreateTask rejects priority -1) - the kernel's first-ever switch, which
// is always non-blocking (current is nil) - then returns immediately. body
// runs on that task's own goroutine, free to create, activate, and drive
// every other task the scenario needs, and to simulate ticks
// (k.TickIntProcessing) or ISR signals (k.EnterISR/.../k.ExitISR) inline,
// since all of those are then running on a goroutine the handoff protocol
// already recognizes as "current" when nothing higher-priority is runnable.
//
// body should end by recording a final checkpoint on trace so the test
// goroutine knows it is safe to inspect kernel state.
func RunDriver(cfg tneo.Config, body func(k *tneo.Kernel)) (*tneo.Kernel, *sim.Port) {
	k, port := New(cfg)
	driver, code := k.CreateTask(cfg.Priorities-1, func(any) { body(k) }, nil)
	if code != tneo.OK {
		panic(code)
	}
	driver.Activate()
	return k, port
}

// Trace records the order in which task bodies report events, from any
// number of concurrently running task goroutines. A task body calls
// Trace.Record(label) at each point a test wants to observe; the test
// goroutine calls Collect to wait for them, in order.
type Trace struct {
	ch chan string
}

// NewTrace starts a Trace with room for capacity buffered events before a
// recording task body would block; drain it with Collect.
func NewTrace(capacity int) *Trace {
	return &Trace{ch: make(chan string, capacity)}
}

// Record appends label to the trace. Safe to call from any task goroutine.
func (t *Trace) Record(label string) {
	t.ch <- label
}

// Collect drains exactly n recorded events, in the order Record was
// called, blocking until they arrive. Call this from the test goroutine,
// never from a task body.
func (t *Trace) Collect(n int) []string {
	events := make([]string, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, <-t.ch)
	}
	return events
}
