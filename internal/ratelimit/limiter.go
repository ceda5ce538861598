// Package ratelimit paces outbound requests so a client stays within the
// remote service's requests-per-minute quota. A Limiter is shared by every
// handle of one logical client; each Wait returns once the caller may start
// its request, and never holds any lock across the request itself.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hibp/internal/models"
)

// ErrInvalidRPM is returned when a limiter is configured with a
// non-positive requests-per-minute figure.
var ErrInvalidRPM = errors.New("requests per minute must be positive")

// Limiter defines the pacing contract. Implementations must be safe for
// concurrent use.
type Limiter interface {
	// Wait blocks until the caller is permitted to start a request. It
	// returns early with the context's error if ctx ends first, in which
	// case no permit is consumed.
	Wait(ctx context.Context) error

	// RPM returns the configured requests per minute.
	RPM() int
}

// New creates a limiter for the given strategy ("interval" or
// "token_bucket"). An empty strategy selects interval pacing.
func New(strategy string, rpm int) (Limiter, error) {
	switch strategy {
	case "", models.RateLimitStrategyInterval:
		p, err := NewPacer(rpm)
		if err != nil {
			return nil, err
		}
		return p, nil
	case models.RateLimitStrategyTokenBucket:
		b, err := NewTokenBucket(rpm)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported rate limit strategy: %s", strategy)
	}
}

// Interval returns the minimum spacing between permitted request starts for
// the given rate.
func Interval(rpm int) (time.Duration, error) {
	if rpm <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRPM, rpm)
	}
	return time.Minute / time.Duration(rpm), nil
}
