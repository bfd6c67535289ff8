package client

import (
	"sync"
	"time"

	"github.com/leonardokr/ghstats/domain/ghstats"
)

// rateLimitCriticalThreshold is the remaining-calls floor below which the
// governor makes the caller wait out the reset window rather than risk a 403.
const rateLimitCriticalThreshold = 10

// rateLimitMaxWait caps how long paceDelay will ever ask a caller to sleep,
// regardless of how far away the reset actually is.
const rateLimitMaxWait = 60 * time.Second

// rateGovernor tracks the most recently observed GitHub rate-limit headers
// and decides whether a caller should pace itself before the next request.
// One governor is shared across every collector goroutine for a given
// client instance.
type rateGovernor struct {
	mu       sync.Mutex
	snapshot ghstats.RateLimitSnapshot
	observed bool
}

func newRateGovernor() *rateGovernor {
	return &rateGovernor{}
}

// observe records the X-RateLimit-* headers from a response.
func (g *rateGovernor) observe(remaining, limit int, resetEpoch int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshot = ghstats.RateLimitSnapshot{Remaining: remaining, Limit: limit, ResetEpoch: resetEpoch}
	g.observed = true
}

// snapshotNow returns the last observed snapshot and whether one exists.
func (g *rateGovernor) snapshotNow() (ghstats.RateLimitSnapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot, g.observed
}

// state classifies the current rate-limit posture.
func (g *rateGovernor) state() ghstats.RateLimitState {
	snap, observed := g.snapshotNow()
	return snap.Classify(observed)
}

// paceDelay returns how long the caller should sleep before issuing its next
// request. Once remaining budget drops below rateLimitCriticalThreshold, the
// caller waits out the reset window (capped at rateLimitMaxWait) rather than
// racing the remaining calls against GitHub's limiter. It never returns a
// negative duration.
func (g *rateGovernor) paceDelay(now time.Time) time.Duration {
	snap, observed := g.snapshotNow()
	if !observed {
		return 0
	}
	if snap.Remaining >= rateLimitCriticalThreshold {
		return 0
	}
	resetAt := time.Unix(snap.ResetEpoch, 0)
	wait := resetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	if wait > rateLimitMaxWait {
		return rateLimitMaxWait
	}
	return wait
}
