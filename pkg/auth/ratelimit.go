package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter checks whether a request from an identity should be allowed.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// FixedWindowLimiter is an in-memory fixed-window rate limiter keyed by
// the identity's limit key (the hashed caller token). Counting is
// increment-and-compare under one lock; windows reset lazily on the
// first request after expiry.
type FixedWindowLimiter struct {
	window      time.Duration
	maxRequests int

	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	count    int
	windowAt time.Time
}

// NewFixedWindowLimiter creates a limiter allowing maxRequests per
// window per caller.
func NewFixedWindowLimiter(window time.Duration, maxRequests int) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		window:      window,
		maxRequests: maxRequests,
		counters:    make(map[string]*windowCounter),
	}
}

// Allow checks if the request is within the rate limit.
// A non-positive limit disables counting entirely.
func (l *FixedWindowLimiter) Allow(_ context.Context, identity *Identity) error {
	if l.maxRequests <= 0 {
		return nil
	}

	key := identity.LimitKey()
	if key == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= l.window {
		l.counters[key] = &windowCounter{count: 1, windowAt: now}
		return nil
	}

	c.count++
	if c.count > l.maxRequests {
		return ErrTooManyRequests
	}

	return nil
}
