package limiters

import (
	"context"
	"time"

	"github.com/hexbyte/adminguard/internal/rate"
)

// LockoutConfig holds configuration for the auto-block promotion tracker.
type LockoutConfig struct {
	Threshold int
	Window    time.Duration
}

// LockoutLimiter counts cumulative failed attempts per actor, independently of
// the short login window, and reports the moment the auto-block threshold is
// crossed. The counter is deliberately separate from the login limiter: the
// login window resets every few minutes, while this one accrues across the
// whole lockout horizon.
type LockoutLimiter struct {
	store  rate.CounterStore
	config LockoutConfig
}

// NewLockoutLimiter creates a new auto-block tracker over the given store.
func NewLockoutLimiter(store rate.CounterStore, cfg LockoutConfig) *LockoutLimiter {
	return &LockoutLimiter{store: store, config: cfg}
}

func (l *LockoutLimiter) key(actorKey string) string {
	return "agc:" + actorKey
}

// RecordFailure increments the cumulative counter. It returns true exactly
// once per window, on the increment that reaches the threshold, so the caller
// creates a single block record per promotion.
func (l *LockoutLimiter) RecordFailure(ctx context.Context, actorKey string) (bool, error) {
	if actorKey == "" {
		return false, nil
	}

	count, err := l.store.Incr(ctx, l.key(actorKey), l.config.Window)
	if err != nil {
		return false, err
	}

	return count == int64(l.config.Threshold), nil
}

// Reset clears the cumulative counter, e.g. after successful authentication
// or a manual unblock.
func (l *LockoutLimiter) Reset(ctx context.Context, actorKey string) error {
	if actorKey == "" {
		return nil
	}
	return l.store.Del(ctx, l.key(actorKey))
}

// Count returns the current cumulative failure count for an actor.
func (l *LockoutLimiter) Count(ctx context.Context, actorKey string) (int, error) {
	if actorKey == "" {
		return 0, nil
	}
	count, err := l.store.Get(ctx, l.key(actorKey))
	return int(count), err
}
