package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleTTL = 15 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket refilled evenly over the window.
type MemoryLimiter struct {
	every rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

// NewMemoryLimiter allows attempts requests per window for each key.
// attempts <= 0 or a non-positive window denies every request.
func NewMemoryLimiter(attempts int, window time.Duration) *MemoryLimiter {
	every := rate.Limit(0)
	if attempts > 0 && window > 0 {
		every = rate.Every(window / time.Duration(attempts))
	} else {
		attempts = 0
	}
	return &MemoryLimiter{
		every:    every,
		burst:    attempts,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > idleTTL {
		for k, entry := range m.limiters {
			if now.Sub(entry.lastSeen) > idleTTL {
				delete(m.limiters, k)
			}
		}
		m.lastSweep = now
	}

	entry, ok := m.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(m.every, m.burst)}
		m.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1), nil
}
