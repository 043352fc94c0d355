// Package retry wraps a single remote call with bounded exponential backoff.
package retry

import (
	"context"
	"math"
	"time"
)

// DefaultMaxAttempts bounds the concurrent refine path.
const DefaultMaxAttempts = 5

// Policy retries an operation on retryable failures. Non-retryable errors
// and exhaustion propagate to the caller; nothing is swallowed.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// IsRetryable classifies an error; nil means nothing is retryable.
	IsRetryable func(error) bool
	// Sleep overrides the backoff wait; nil waits in real time.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New creates a policy with the given attempt bound and classifier.
func New(maxAttempts int, isRetryable func(error) bool) *Policy {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Policy{
		MaxAttempts: maxAttempts,
		IsRetryable: isRetryable,
	}
}

// Do runs fn, retrying retryable failures after Delay(attempt) until the
// attempt bound is reached. The backoff wait aborts on context cancellation.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts || p.IsRetryable == nil || !p.IsRetryable(err) {
			return err
		}
		if sleepErr := sleep(ctx, Delay(attempt)); sleepErr != nil {
			return sleepErr
		}
	}
}

// Delay returns the backoff before the retry following the given attempt:
// 1.5^attempt seconds plus a linear 0.1*attempt jitter term.
func Delay(attempt int) time.Duration {
	seconds := math.Pow(1.5, float64(attempt)) + 0.1*float64(attempt)
	return time.Duration(seconds * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
