package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRetryable = errors.New("remote 500")
var errFatal = errors.New("malformed response")

func newTestPolicy(maxAttempts int) (*Policy, *[]time.Duration) {
	var slept []time.Duration
	p := New(maxAttempts, func(err error) bool { return errors.Is(err, errRetryable) })
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestPolicy_SucceedsAfterRetryableFailures(t *testing.T) {
	p, slept := newTestPolicy(5)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errRetryable
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{Delay(1), Delay(2)}, *slept)
}

func TestPolicy_FatalErrorNotRetried(t *testing.T) {
	p, slept := newTestPolicy(5)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errFatal
	})

	assert.ErrorIs(t, err, errFatal)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestPolicy_ExhaustionPropagatesLastError(t *testing.T) {
	p, slept := newTestPolicy(3)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errRetryable
	})

	assert.ErrorIs(t, err, errRetryable)
	assert.Equal(t, 3, calls)
	assert.Len(t, *slept, 2)
}

func TestPolicy_BackoffAbortsOnCancellation(t *testing.T) {
	p := New(5, func(error) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errRetryable
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDelay_ExponentialWithLinearJitter(t *testing.T) {
	assert.InDelta(t, 1.6, Delay(1).Seconds(), 0.001)
	assert.InDelta(t, 2.45, Delay(2).Seconds(), 0.001)
	assert.InDelta(t, 3.675, Delay(3).Seconds(), 0.001)
}

func TestNew_AttemptFloor(t *testing.T) {
	p := New(0, nil)
	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
}
