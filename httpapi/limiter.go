package httpapi

import (
	"sync"
	"time"
)

// callerLimiter is a per-key fixed-window rate limiter: each key gets a
// fresh budget every minute. No example repo in the pack implements
// server-side caller rate limiting (the teacher's command/web has none),
// so this is a small hand-rolled window counter rather than an adopted
// library — the justification recorded in DESIGN.md.
type callerLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

func newCallerLimiter() *callerLimiter {
	return &callerLimiter{windows: map[string]*window{}}
}

// allow reports whether key may proceed under limit requests per minute. On
// rejection it also returns how long the caller should wait before retrying.
func (l *callerLimiter) allow(key string, limit int) (time.Duration, bool) {
	if limit <= 0 {
		return 0, true
	}
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 0, resetAt: now.Add(time.Minute)}
		l.windows[key] = w
	}
	if w.count >= limit {
		return w.resetAt.Sub(now), false
	}
	w.count++
	return 0, true
}
