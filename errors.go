package tneo

import "fmt"

// Code is the kernel's universal return value, returned by every service
// instead of a bare error: it distinguishes programmer errors (which never
// mutate kernel state) from the runtime events a waiting service uses to
// report non-success. Code implements error so callers that prefer
// errors.Is can still do so against the exported sentinels below.
type Code int

const (
	// OK indicates success.
	OK Code = iota
	// Timeout indicates a wait expired before the resource became available.
	Timeout
	// Overflow indicates a counting resource (a semaphore) is already at
	// its maximum and has no waiter to hand the signal to.
	Overflow
	// WrongParameter indicates a caller-supplied argument is structurally
	// invalid (e.g. a negative count, an out-of-range priority).
	WrongParameter
	// IllegalUse indicates the call is well-formed but not valid in the
	// object's current state (e.g. a non-recursive mutex locked twice by
	// its own holder).
	IllegalUse
	// InvalidObject indicates the handle's identity tag does not match a
	// live object - a stale, zeroed, or never-initialized handle.
	InvalidObject
	// NotOwned indicates an unlock (or similar) was attempted by a task
	// other than the object's current holder.
	NotOwned
	// Deleted indicates the wait was aborted because the primitive it was
	// blocked on was deleted out from under it.
	Deleted
	// Forced indicates the wait was aborted by an explicit release or by
	// the waiting task itself being deleted.
	Forced
	// InterruptContext indicates a service was called from the wrong
	// execution context (task-only from ISR, or vice versa).
	InterruptContext
	// Internal indicates a kernel invariant was violated; seeing this
	// outside of a test double is a kernel bug, not a caller mistake.
	Internal
)

var codeNames = [...]string{
	OK:               "ok",
	Timeout:          "timeout",
	Overflow:         "overflow",
	WrongParameter:   "wrong parameter",
	IllegalUse:       "illegal use",
	InvalidObject:    "invalid object",
	NotOwned:         "not owned",
	Deleted:          "deleted",
	Forced:           "forced",
	InterruptContext: "interrupt context",
	Internal:         "internal error",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("tneo.Code(%d)", int(c))
	}
	return codeNames[c]
}

// Error implements error, so a Code can be passed anywhere an error is
// expected (e.g. to errors.Is against one of the sentinels above).
func (c Code) Error() string {
	return "tneo: " + c.String()
}

// IsProgrammerError reports whether c belongs to the class of errors that
// spec's error-handling design guarantees never mutate kernel state:
// WrongParameter, IllegalUse, InvalidObject, InterruptContext. All other
// non-OK codes (Timeout, Overflow, Deleted, Forced) are runtime events -
// the ordinary way a blocking service reports non-success.
func (c Code) IsProgrammerError() bool {
	switch c {
	case WrongParameter, IllegalUse, InvalidObject, InterruptContext:
		return true
	default:
		return false
	}
}
