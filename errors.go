package adminguard

import "errors"

var (
	// ErrMalformedInput indicates a request missing required fields. It is
	// rejected before any cryptographic work and never counted as a failure.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are intentionally indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTOTPRequired is returned when a second factor is configured but the
	// request carried no code.
	ErrTOTPRequired = errors.New("totp code required")
	// ErrTOTPInvalid is returned when the presented TOTP code does not match
	// any step within the configured skew.
	ErrTOTPInvalid = errors.New("invalid totp code")
	// ErrLoginRateLimited indicates the per-actor login attempt budget for the
	// current window is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRequestRateLimited indicates the generic per-source request budget is
	// exhausted.
	ErrRequestRateLimited = errors.New("request rate limited")
	// ErrBlocked indicates the actor has an active durable block record.
	ErrBlocked = errors.New("actor blocked")
	// ErrTokenMalformed indicates the token does not split into exactly three
	// dot-separated segments or otherwise failed to decode.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenSignature indicates the recomputed signature does not match.
	ErrTokenSignature = errors.New("bad token signature")
	// ErrTokenExpired indicates the token's exp claim is in the past. Expired
	// tokens are rejected regardless of signature validity.
	ErrTokenExpired = errors.New("token expired")
	// ErrInsufficientRole indicates a verified token whose role claim is not
	// "admin".
	ErrInsufficientRole = errors.New("insufficient role")
	// ErrStoreUnavailable indicates a backing store error. Each component
	// applies its own fail-open or fail-closed policy when it occurs.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrEngineNotReady is returned by methods on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
