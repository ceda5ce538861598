package ratelimit

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Pacer enforces a minimum interval between permitted request starts. It
// owns the timestamp of the last permit; reading it, sleeping out the
// remainder of the interval and re-stamping happen under one exclusive
// section so two callers can never both act on the same stale stamp.
//
// The exclusive section is a weight-1 semaphore rather than a sync.Mutex so
// that queued callers can give up when their context ends.
type Pacer struct {
	rpm      int
	interval time.Duration

	sem  *semaphore.Weighted
	last time.Time // guarded by sem
}

// NewPacer creates a pacer for the given requests per minute. The first
// permit is granted immediately.
func NewPacer(rpm int) (*Pacer, error) {
	interval, err := Interval(rpm)
	if err != nil {
		return nil, err
	}
	return &Pacer{
		rpm:      rpm,
		interval: interval,
		sem:      semaphore.NewWeighted(1),
	}, nil
}

// Wait blocks until at least one interval has passed since the previous
// permit, then records the current time as the new permit.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	if err := sleepUntilSpaced(ctx, p.last, p.interval); err != nil {
		return err
	}

	p.last = time.Now()
	return nil
}

// sleepUntilSpaced blocks until interval has passed since last. A zero last
// never blocks.
func sleepUntilSpaced(ctx context.Context, last time.Time, interval time.Duration) error {
	if last.IsZero() {
		return nil
	}
	elapsed := time.Since(last)
	if elapsed >= interval {
		return nil
	}

	timer := time.NewTimer(interval - elapsed)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RPM returns the configured requests per minute.
func (p *Pacer) RPM() int {
	return p.rpm
}

// Interval returns the minimum spacing between permits.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
