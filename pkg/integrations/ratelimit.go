package integrations

import (
	"context"
	"sync"
	"time"

	"github.com/yair/localgeo/pkg/domain"
)

// rateLimiter enforces a request budget per window and, optionally,
// a minimum spacing between consecutive requests.
type rateLimiter struct {
	mu          sync.Mutex
	requests    int
	windowStart time.Time
	window      time.Duration
	limit       int
	minInterval time.Duration
	last        time.Time
	now         func() time.Time
}

func newRateLimiter(limit int, window, minInterval time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:       limit,
		window:      window,
		minInterval: minInterval,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// Allow consumes one request from the window budget.
func (r *rateLimiter) Allow() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.windowStart) > r.window {
		r.requests = 0
		r.windowStart = now
	}

	if r.limit > 0 && r.requests >= r.limit {
		return domain.ErrRateLimitExceeded
	}

	r.requests++
	return nil
}

// Wait blocks until minInterval has passed since the previous request, then consumes
// from the window budget.
func (r *rateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	next := r.last.Add(r.minInterval)
	now := r.now()
	if next.After(now) {
		r.last = next
	} else {
		r.last = now
	}
	delay := next.Sub(now)
	r.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.Allow()
}
