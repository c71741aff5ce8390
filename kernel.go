package tneo

import (
	"github.com/lightsp33d/tneo/internal/arch"
	"github.com/lightsp33d/tneo/internal/diagrate"
	"github.com/lightsp33d/tneo/internal/dlist"
	"github.com/lightsp33d/tneo/internal/klog"
)

// sysState is the global system-state flag word from spec section 3.
type sysState uint32

const (
	sysStateRunning sysState = 1 << iota
	sysStateDeadlock
)

// ExecContext identifies which of the two execution domains (spec section
// 5) the caller is in.
type ExecContext int

const (
	ContextNone ExecContext = iota
	ContextTask
	ContextISR
)

// Kernel is the single explicitly constructed record holding all kernel
// state (spec section 3, "global process-wide state" - realized here as a
// value every service takes through its receiver, never a package
// global, so a test can run several independent kernels side by side).
type Kernel struct {
	cfg  Config
	port arch.Port
	log  klog.Logger

	tasks       []Task
	freeTaskIDs []TaskID
	allTasks    dlist.List

	ready   readyStruct
	current *Task
	next    *Task
	booting bool

	tick    uint64
	isrNest int32 // accessed only via atomic; see isr.go

	state sysState

	wheel         []dlist.List
	genericTimers dlist.List

	// walkMark/walkGen detect cycles in the mutex priority-inheritance
	// boost walk without allocating a set: walkGen is bumped once per
	// walk, and a task is "seen this walk" iff walkMark[task.id] == walkGen.
	walkMark []int
	walkGen  int

	deadlockActive       bool
	deadlockParticipants map[*Task]bool

	limiter *diagrate.Limiter
}

// NewKernel constructs a Kernel with the given architecture port and
// configuration. Panics if cfg is structurally invalid (Config.validate),
// exactly as this codebase's other constructors do for invalid
// configuration.
func NewKernel(port arch.Port, cfg Config) *Kernel {
	cfg = cfg.withDefaults()
	cfg.validate()

	log := klog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	k := &Kernel{cfg: cfg, port: port, log: log}

	k.tasks = make([]Task, cfg.MaxTasks)
	k.freeTaskIDs = make([]TaskID, 0, cfg.MaxTasks)
	for i := range k.tasks {
		t := &k.tasks[i]
		t.id = TaskID(i)
		t.k = k
		t.listNode.Init(t)
		t.allNode.Init(t)
		t.timer.node.Init(&t.timer)
		t.timer.task = t
		t.ownedMutexes.Init()
		k.freeTaskIDs = append(k.freeTaskIDs, t.id)
	}
	k.allTasks.Init()

	k.ready = newReadyStruct(cfg.Priorities)

	k.wheel = make([]dlist.List, cfg.WheelSize)
	for i := range k.wheel {
		k.wheel[i].Init()
	}
	k.genericTimers.Init()

	k.walkMark = make([]int, cfg.MaxTasks)

	if len(cfg.DiagnosticRateLimits) > 0 {
		k.limiter = diagrate.NewLimiter(cfg.DiagnosticRateLimits)
	}

	return k
}

func (k *Kernel) enterCritical() uint32      { return k.port.InterruptsDisable() }
func (k *Kernel) leaveCritical(mask uint32)  { k.port.InterruptsEnable(mask) }

func (k *Kernel) requireTaskContext() Code {
	if k.cfg.DisableISRContextChecks {
		return OK
	}
	if k.isrNestLoad() > 0 {
		return InterruptContext
	}
	return OK
}

func (k *Kernel) requireISRContext() Code {
	if k.cfg.DisableISRContextChecks {
		return OK
	}
	if k.isrNestLoad() == 0 {
		return InterruptContext
	}
	return OK
}

// Start creates the idle task (the lowest priority, P-1, always runnable,
// body loops forever), runs boot synchronously so it can create and
// activate the application's own tasks, then performs the single initial
// handoff into the highest-priority runnable task.
//
// Unlike the embedded original this is modelled on, Start returns once
// that handoff is issued rather than truly never returning: the reference
// architecture port models "the first task runs" as a goroutine resume
// (internal/arch/sim), and the calling goroutine's stack frame has no
// further role in the simulation once the handoff happens. This Go-
// specific nuance is recorded in DESIGN.md.
func (k *Kernel) Start(boot func(k *Kernel)) Code {
	k.booting = true

	idle, code := k.CreateTask(k.cfg.Priorities-1, func(any) { select {} }, nil)
	if code != OK {
		k.booting = false
		return code
	}
	if code := idle.Activate(); code != OK {
		k.booting = false
		return code
	}

	k.state |= sysStateRunning

	if boot != nil {
		boot(k)
	}

	k.booting = false

	mask := k.enterCritical()
	k.recomputeNext()
	k.leaveCritical(mask)
	k.yieldIfNeeded()
	return OK
}

// TimeGet returns the current tick count.
func (k *Kernel) TimeGet() uint64 {
	mask := k.enterCritical()
	defer k.leaveCritical(mask)
	return k.tick
}

// ContextGet reports which execution domain the caller is in.
func (k *Kernel) ContextGet() ExecContext {
	if k.isrNestLoad() > 0 {
		return ContextISR
	}
	if k.current != nil {
		return ContextTask
	}
	return ContextNone
}

// Current returns the currently scheduled task, or nil before Start.
func (k *Kernel) Current() *Task { return k.current }
