package client

import (
	"log/slog"
	"sync"
	"time"
)

// breakerState mirrors the classic closed/open/half-open circuit breaker
// states, following the trip/cool-down/probe shape resilient-bridge's
// RequestExecutor uses around its retry loop, pulled one level up so it
// can reject calls outright instead of only backing off between them.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// breaker is a minimal circuit breaker: it trips after failMax consecutive
// failures, stays open for resetTimeout, then lets calls through in the
// half-open state (it does not limit them to one). The first success
// recorded while half-open closes it; the first failure reopens it for
// another full resetTimeout.
type breaker struct {
	mu           sync.Mutex
	name         string
	failMax      int
	resetTimeout time.Duration
	state        breakerState
	failures     int
	openedAt     time.Time
}

func newBreaker(name string, failMax int, resetTimeout time.Duration) *breaker {
	return &breaker{name: name, failMax: failMax, resetTimeout: resetTimeout}
}

// allow reports whether a call may proceed, transitioning open->half-open
// once resetTimeout has elapsed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerOpen:
		if time.Since(b.openedAt) >= b.resetTimeout {
			b.state = breakerHalfOpen
			slog.Info("breaker.half_open", "upstream", b.name)
			return true
		}
		return false
	default:
		return true
	}
}

// recordSuccess closes the breaker and clears the failure count.
func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != breakerClosed {
		slog.Info("breaker.closed", "upstream", b.name)
	}
	b.state = breakerClosed
	b.failures = 0
}

// recordFailure increments the failure count, tripping the breaker once
// failMax is reached (or immediately, if the breaker is half-open).
func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == breakerHalfOpen {
		b.trip()
		return
	}
	b.failures++
	if b.failures >= b.failMax {
		b.trip()
	}
}

// trip must be called with mu held.
func (b *breaker) trip() {
	b.state = breakerOpen
	b.openedAt = time.Now()
	b.failures = 0
	slog.Warn("breaker.open", "upstream", b.name, "reset_timeout", b.resetTimeout)
}

// currentState returns the breaker's state for health reporting.
func (b *breaker) currentState() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
