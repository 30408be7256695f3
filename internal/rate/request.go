package rate

import (
	"context"
	"time"
)

// RequestConfig holds the generic per-source window parameters.
type RequestConfig struct {
	Window      time.Duration
	MaxRequests int
}

// RequestLimiter is the stateless per-source fixed-window limiter governing
// general API abuse, independent of the login attempt tracker. Whether an
// exceeded budget yields an explicit rejection or a silent no-op response is
// the transport layer's choice, not the limiter's.
type RequestLimiter struct {
	store  CounterStore
	config RequestConfig
}

func NewRequestLimiter(store CounterStore, cfg RequestConfig) *RequestLimiter {
	return &RequestLimiter{store: store, config: cfg}
}

func requestKey(scope, actorKey string) string {
	return "agr:" + scope + ":" + actorKey
}

// Allow counts the request and reports whether it fits the window budget.
// Store errors fail open.
func (l *RequestLimiter) Allow(ctx context.Context, scope, actorKey string) (Decision, error) {
	count, err := l.store.Incr(ctx, requestKey(scope, actorKey), l.config.Window)
	if err != nil {
		return Decision{Allowed: true, Remaining: l.config.MaxRequests}, err
	}

	if count > int64(l.config.MaxRequests) {
		retryAfter, _ := l.store.Remaining(ctx, requestKey(scope, actorKey))
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: l.config.MaxRequests - int(count),
	}, nil
}
