package rate

import "errors"

var (
	// ErrStoreUnavailable indicates the counter backend is unreachable.
	// Limiter checks treat it as fail-open: a broken counter store must not
	// deny logins outright, it only weakens the first line of defense.
	ErrStoreUnavailable = errors.New("rate limit backend unavailable")
)
