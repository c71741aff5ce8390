package tneo

import (
	"fmt"
	"time"

	"github.com/lightsp33d/tneo/internal/klog"
)

// Config configures a Kernel at construction. Numeric fields follow the
// "defaults to N, if 0" convention used throughout this codebase: the zero
// value means "let NewKernel pick a sensible default", not "zero of this
// resource". Boolean feature switches are named negatively (DisableX) so
// that the zero value of Config always means "every feature on", matching
// the same convention in the other direction.
type Config struct {
	// Priorities is the number of ready-queue priority levels P, including
	// the idle task's (always priority P-1). Must fit the ready bitmap's
	// machine word width (64 on the reference build). Defaults to 32, if 0.
	Priorities int

	// MaxTasks bounds the task arena; TaskID is a stable index into it for
	// the lifetime of the Kernel. Defaults to 32, if 0.
	MaxTasks int

	// WheelSize is the tick-wheel slot count N; must be a power of two.
	// Defaults to 64, if 0.
	WheelSize int

	// DisableMutex compiles the mutex subsystem out: CreateMutex always
	// returns WrongParameter. Defaults to false (mutexes on).
	DisableMutex bool

	// DisableDeadlockDetection turns off the cycle detector in the
	// priority-inheritance boost walk. Defaults to false (detection on).
	DisableDeadlockDetection bool

	// DisableRecursiveMutex makes a second Lock by the current holder
	// return IllegalUse instead of incrementing the recursion count.
	// Defaults to false (recursive locking on).
	DisableRecursiveMutex bool

	// DisableObjectIdentityChecks skips the identity-tag probe on every
	// semaphore/mutex handle (timers carry no identity tag). Defaults to
	// false (checks on).
	DisableObjectIdentityChecks bool

	// DisableISRContextChecks skips the check that rejects task-context
	// services called from ISR context, and ISR-only variants called from
	// task context. Defaults to false (checks on).
	DisableISRContextChecks bool

	// OnDeadlock is invoked by the deadlock detector: once when a cycle
	// becomes active, once when any participant exits the wait and the
	// cycle clears. Nil disables the notification without disabling
	// detection. Defaults to nil.
	OnDeadlock func(DeadlockInfo)

	// Logger receives structured diagnostic events (deadlock detection and
	// clearing). Nil discards everything.
	Logger *klog.Logger

	// DiagnosticRateLimits bounds how often repeated diagnostic events are
	// logged (see internal/diagrate). Nil disables throttling - every event
	// is logged.
	DiagnosticRateLimits map[time.Duration]int
}

func (c Config) withDefaults() Config {
	if c.Priorities == 0 {
		c.Priorities = 32
	}
	if c.MaxTasks == 0 {
		c.MaxTasks = 32
	}
	if c.WheelSize == 0 {
		c.WheelSize = 64
	}
	return c
}

func (c Config) validate() {
	if c.Priorities <= 0 || c.Priorities > 64 {
		panic(fmt.Sprintf("tneo: Config.Priorities must be 1..64, got %d", c.Priorities))
	}
	if c.MaxTasks <= 0 {
		panic(fmt.Sprintf("tneo: Config.MaxTasks must be > 0, got %d", c.MaxTasks))
	}
	if c.WheelSize <= 0 || c.WheelSize&(c.WheelSize-1) != 0 {
		panic(fmt.Sprintf("tneo: Config.WheelSize must be a power of two, got %d", c.WheelSize))
	}
}
