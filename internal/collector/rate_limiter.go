package collector

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
)

// safetyThreshold is the remaining-quota floor below which requests pause
// until the reported reset time.
const safetyThreshold = 1

// RateLimiter manages GitHub API rate limiting. Collection is sequential by
// design so one limiter instance accounts for the whole run.
type RateLimiter interface {
	// Observe records the remaining quota and reset time from a response
	Observe(remaining int, reset time.Time)

	// ShouldWait reports whether the quota is low enough that the next
	// request must wait for the reset
	ShouldWait() bool

	// WaitDuration returns how long the next request would have to wait
	WaitDuration() time.Duration

	// Wait suspends until it is safe to issue the next request. When the
	// quota is exhausted and no reset time is known it fails immediately
	// instead of waiting indefinitely.
	Wait(ctx context.Context) error
}

// githubRateLimiter implements RateLimiter from GitHub rate headers
type githubRateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetAt   time.Time
	observed  bool
	logger    *logrus.Logger
}

// NewRateLimiter creates a new rate limiter. Until the first Observe the
// quota is unknown and requests proceed unthrottled.
func NewRateLimiter(logger *logrus.Logger) RateLimiter {
	return &githubRateLimiter{logger: logger}
}

// Observe updates the tracked quota from API response headers
func (r *githubRateLimiter) Observe(remaining int, reset time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = remaining
	r.resetAt = reset
	r.observed = true
}

// ShouldWait reports whether the next request must wait for the quota reset
func (r *githubRateLimiter) ShouldWait() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observed && r.remaining <= safetyThreshold && r.resetAt.After(time.Now())
}

// WaitDuration returns max(0, reset − now)
func (r *githubRateLimiter) WaitDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := time.Until(r.resetAt)
	if d < 0 {
		return 0
	}
	return d
}

// Wait blocks until the next request is safe to send. This is the only
// blocking operation in the pipeline.
func (r *githubRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	if !r.observed || r.remaining > safetyThreshold {
		r.mu.Unlock()
		return nil
	}
	if r.resetAt.IsZero() {
		r.mu.Unlock()
		return apperrors.NewRateLimitedError("API quota exhausted and no reset time reported")
	}
	wait := time.Until(r.resetAt)
	remaining := r.remaining
	r.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	r.logger.WithFields(logrus.Fields{
		"remaining": remaining,
		"wait":      wait.Round(time.Second).String(),
	}).Warn("rate limit low, waiting for reset")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}

	// The quota has rolled over; forget the stale reading until the next
	// response reports fresh numbers.
	r.mu.Lock()
	r.observed = false
	r.mu.Unlock()
	return nil
}
