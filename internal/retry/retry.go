// Package retry runs an operation with exponential backoff.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
)

// Policy handles retry logic with exponential backoff and full jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt.
	// nil retries every error.
	Retryable func(error) bool

	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a policy capped at 30s between attempts.
func NewPolicy(maxAttempts int, baseDelay time.Duration, retryable func(error) bool) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    30 * time.Second,
		Retryable:   retryable,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// run out or ctx is done. The last error is returned wrapped.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if err := p.doSleep(ctx, p.Backoff(attempt)); err != nil {
			return errors.WithSecondaryError(err, lastErr)
		}
	}

	return errors.Wrapf(lastErr, "failed after %d attempts", attempts)
}

// Backoff returns the delay before retry number attempt (1-based): a random
// duration in [d/2, d] where d = BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << min(attempt-1, 20)
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func (p Policy) doSleep(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
