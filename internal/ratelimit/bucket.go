// Package ratelimit paces outbound refine calls.
//
// Two limiters share one contract: an in-process token bucket, and a
// cross-process variant that serializes requests through an advisory file
// lock so independent process instances share one rate budget.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates one outbound call per Acquire.
type Limiter interface {
	// Acquire blocks until a permit is available or the context is done.
	Acquire(ctx context.Context) error
}

// TokenBucket is a mutex-protected token bucket. Tokens accumulate at a
// fixed rate up to capacity; each Acquire consumes one. A rate of zero or
// less disables limiting entirely.
type TokenBucket struct {
	rate     float64
	capacity float64

	mu        sync.Mutex
	tokens    float64
	updatedAt time.Time
}

// NewTokenBucket creates a bucket with the given rate in tokens per second.
// Capacity is max(1, rate) and the bucket starts full.
func NewTokenBucket(rate float64) *TokenBucket {
	capacity := rate
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{
		rate:      rate,
		capacity:  capacity,
		tokens:    capacity,
		updatedAt: time.Now(),
	}
}

// Acquire consumes one token, suspending for the exact time needed for a
// token to become available when the bucket is empty. Refill-and-consume is
// a single critical section; the wait happens outside it.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	if b.rate <= 0 {
		return nil
	}
	for {
		b.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(b.updatedAt).Seconds()
		b.tokens += elapsed * b.rate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.updatedAt = now
		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
		b.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
