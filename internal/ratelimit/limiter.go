// Package ratelimit implements per-chat sliding-window admission control.
// State is process-local: under horizontal scaling each instance keeps its
// own windows.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits up to limit requests per chat within a rolling window.
// Every call appends its timestamp, including denied ones, so an identity
// hammering past the ceiling keeps its window full and stays throttled.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[int64][]time.Time
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[int64][]time.Time),
	}
}

// WithClock replaces the time source, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Admit prunes entries older than the window, admits iff the remaining
// count is below the limit, and records the attempt either way.
func (l *Limiter) Admit(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.windows[chatID][:0]
	for _, ts := range l.windows[chatID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	admitted := len(kept) < l.limit
	l.windows[chatID] = append(kept, now)
	return admitted
}
