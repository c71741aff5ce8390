// Package diagrate implements sliding-window rate limiting for a single
// stream of diagnostic events, used by the kernel to throttle repeated
// deadlock-active notifications so a busy cycle re-detected on every tick
// can't flood a log sink or callback. Rates are checked against a window of
// recent event timestamps kept in a ring buffer.
//
// It is intended for use cases that don't lend themselves well to any of the
// more complex solutions, e.g. token buckets, or probabilistic rate limiting
// (i.e. bloom filters). Diagnostic-event throttling fits this: one stream,
// short bursts, and exact token-bucket semantics aren't needed.
package diagrate
