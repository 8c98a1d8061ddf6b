package validation

import (
	"sync"
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
)

type rateEntry struct {
	count     int
	lastReset time.Time
}

// RateLimiter counts actions per name in fixed windows. State is in-memory
// and per-process.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateEntry
	now     func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*rateEntry),
		now:     time.Now,
	}
}

// WithClock replaces the limiter's time source.
func (r *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// Allow records an attempt of action and reports whether it fits within max
// attempts per window. The window restarts on the first attempt after it
// has elapsed.
func (r *RateLimiter) Allow(action string, max int, window time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if len(r.entries) > constants.RateLimitGCThreshold {
		r.gc(now, window)
	}

	e, ok := r.entries[action]
	if !ok || now.Sub(e.lastReset) > window {
		r.entries[action] = &rateEntry{count: 1, lastReset: now}
		return true
	}
	if e.count >= max {
		return false
	}
	e.count++
	return true
}

// gc drops entries whose window started more than two windows ago.
func (r *RateLimiter) gc(now time.Time, window time.Duration) {
	for action, e := range r.entries {
		if now.Sub(e.lastReset) > 2*window {
			delete(r.entries, action)
		}
	}
}

func (r *RateLimiter) tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
