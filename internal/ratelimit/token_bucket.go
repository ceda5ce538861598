package ratelimit

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// TokenBucket is a limiter backed by golang.org/x/time/rate with a bucket of
// one token refilled every interval. A burst of one means idle time is never
// banked: after any pause at most one request starts immediately.
//
// rate.Limiter schedules tokens on its own timeline, so a permit that
// returned late would leave the next one less than an interval away. Wait
// therefore also tracks when the previous permit was actually granted and
// sleeps out any shortfall, under the same kind of exclusive section Pacer
// uses.
type TokenBucket struct {
	rpm      int
	interval time.Duration
	limiter  *rate.Limiter

	sem  *semaphore.Weighted
	last time.Time // guarded by sem
}

// NewTokenBucket creates a token bucket limiter for the given requests per
// minute.
func NewTokenBucket(rpm int) (*TokenBucket, error) {
	interval, err := Interval(rpm)
	if err != nil {
		return nil, err
	}
	return &TokenBucket{
		rpm:      rpm,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		sem:      semaphore.NewWeighted(1),
	}, nil
}

// Wait blocks until a token is available and at least one interval has
// passed since the previous permit.
func (b *TokenBucket) Wait(ctx context.Context) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.sem.Release(1)

	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := sleepUntilSpaced(ctx, b.last, b.interval); err != nil {
		return err
	}

	b.last = time.Now()
	return nil
}

// RPM returns the configured requests per minute.
func (b *TokenBucket) RPM() int {
	return b.rpm
}

// Interval returns the token refill interval.
func (b *TokenBucket) Interval() time.Duration {
	return b.interval
}
