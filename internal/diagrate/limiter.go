package diagrate

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	nextZeroValue = math.MinInt64
)

// Limiter applies a set of sliding-window rate limits to a single stream of
// diagnostic events. It has no notion of category: the kernel holds one
// Limiter per kind of event it wants throttled (deadlock.go uses exactly one,
// for repeated deadlock-active notifications).
type Limiter struct {
	rates map[time.Duration]int

	mu     sync.Mutex
	next   int64 // next allowed event, or nextZeroValue if none
	events *ringBuffer[int64]
}

// for testing purposes
var timeNow = time.Now

// NewLimiter creates a new rate limiter with configurable sliding windows.
//
// Parameters:
//
//	rates - Map of time window durations to maximum event counts.
//	        Keys must be time.Duration values (e.g., 1*time.Second, 1*time.Minute).
//	        Values are the maximum number of events allowed in that window.
//
// Requirements:
//
//  1. All rate durations must be positive (non-zero).
//  2. All rate counts must be positive (non-zero).
//  3. Rates must be monotonic: Longer windows must have strictly larger counts
//     than shorter windows, and a strictly lower count per unit of time.
//     For example: 1 second: 10 events, 1 minute: 100 events (valid).
//     Example: 1 second: 10 events, 1 minute: 5 events (invalid).
//
// Behavior:
//
//   - Sliding window: Tracks events over the specified duration.
//   - Allow method: Returns true if adding the event would not exceed any rate.
//
// Example:
//
//	// Allow 1 event per 500ms, 20 per minute
//	limiter := NewLimiter(map[time.Duration]int{
//	    500 * time.Millisecond: 1,
//	    1 * time.Minute:        20,
//	})
//
//	if t, ok := limiter.Allow(); ok {
//	    // emit the diagnostic event
//	} else {
//	    // suppressed - next allowed at t
//	}
//
// Returns:
//
//	A Limiter instance. Panics if rates are invalid (non-positive or non-monotonic).
func NewLimiter(rates map[time.Duration]int) *Limiter {
	if _, ok := parseRates(rates); !ok {
		panic(fmt.Errorf(`diagrate: invalid rates: %v`, rates))
	}

	return &Limiter{
		rates:  rates,
		next:   nextZeroValue,
		events: newRingBuffer[int64](8),
	}
}

func (x *Limiter) ok() bool {
	return x != nil && len(x.rates) != 0
}

// Allow is a non-blocking call that attempts to register an event. True
// indicates that an event was registered. In all cases, the returned time is
// the next time that an event can be registered. If at least one more event
// may be registered prior to a rate limit being applied (at the current
// system time), the time will be the zero value.
func (x *Limiter) Allow() (time.Time, bool) {
	if !x.ok() {
		// no rate limits applied
		return time.Time{}, true
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	now := timeNow()
	nowUnixNano := now.UnixNano()

	if x.next != nextZeroValue && nowUnixNano < x.next {
		return time.Unix(0, x.next), false
	}

	// insert sort into x.events
	x.events.Insert(x.events.Search(nowUnixNano), nowUnixNano)

	// remove expired events, calculating the next allowed event, if rate limited
	remaining := filterEvents(now, x.rates, x.events)
	if remaining <= 0 {
		// reservation success, and at least one more event is allowed (prior to rate limiting)
		x.next = nextZeroValue
		return time.Time{}, true
	}

	// reservation success, but rate limit is now in effect
	next := now.Add(remaining)
	x.next = next.UnixNano()

	return next, true
}
