package rate

import (
	"context"
	"time"
)

// Config holds login limiter tuning parameters.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter enforces the per-actor login attempt budget over a fixed window.
type Limiter struct {
	store  CounterStore
	config Config
}

// NewLimiter creates a login [Limiter] over the given counter store.
func NewLimiter(store CounterStore, cfg Config) *Limiter {
	return &Limiter{store: store, config: cfg}
}

func loginKey(actorKey string) string {
	return "agl:" + actorKey
}

// Check reports whether the actor is within its attempt budget. A store
// error returns an allowing decision alongside the error: the limiter fails
// open and leaves the durable blocklist as the enforcement boundary.
func (l *Limiter) Check(ctx context.Context, actorKey string) (Decision, error) {
	count, err := l.store.Get(ctx, loginKey(actorKey))
	if err != nil {
		return Decision{Allowed: true, Remaining: l.config.MaxAttempts}, err
	}

	if count >= int64(l.config.MaxAttempts) {
		retryAfter, _ := l.store.Remaining(ctx, loginKey(actorKey))
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: l.config.MaxAttempts - int(count),
	}, nil
}

// RecordFailure counts one failed attempt and returns the new count within
// the current window.
func (l *Limiter) RecordFailure(ctx context.Context, actorKey string) (int64, error) {
	return l.store.Incr(ctx, loginKey(actorKey), l.config.Window)
}

// Reset clears the actor's window entirely. Called after successful
// authentication.
func (l *Limiter) Reset(ctx context.Context, actorKey string) error {
	return l.store.Del(ctx, loginKey(actorKey))
}
