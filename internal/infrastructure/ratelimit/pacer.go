// Package ratelimit spaces outbound provider calls to stay under the
// provider's throttling threshold.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the default minimum spacing between provider calls.
const DefaultInterval = 500 * time.Millisecond

// Pacer enforces a minimum interval between calls. One Pacer instance is
// shared by all workers of a run, so the spacing holds globally across
// concurrent queries, not per worker.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer with the given minimum interval between calls.
// A non-positive interval falls back to DefaultInterval.
func NewPacer(minInterval time.Duration) *Pacer {
	if minInterval <= 0 {
		minInterval = DefaultInterval
	}
	// Burst of 1: the first call proceeds immediately, every later call
	// waits out the interval.
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the next call slot is available or the context ends.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Interval returns the configured minimum spacing.
func (p *Pacer) Interval() time.Duration {
	limit := p.limiter.Limit()
	if limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}
