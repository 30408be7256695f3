package adminguard

import "time"

// LoginRequest carries the credentials presented to [Engine.Login]. The
// client IP travels on the context (see [WithClientIP]), not on the request.
type LoginRequest struct {
	Email    string
	Password string
	TOTPCode string
}

// LoginResult is returned by [Engine.Login]. On success Token and ExpiresIn
// are set. On failure the result may still be non-nil to carry caller hints:
// TOTPRequired when only the second factor is missing, RemainingAttempts after
// a failed credential or TOTP check, and RetryAfter when rate limited.
type LoginResult struct {
	Token     string
	ExpiresIn int // seconds

	TOTPRequired      bool
	RemainingAttempts int
	RetryAfter        time.Duration
}

// BlockInfo is the display form of a durable block record, as returned by
// [Engine.ListBlocks]. Only a truncated key prefix is exposed; the full actor
// key never reaches a UI.
type BlockInfo struct {
	KeyPrefix string     `json:"keyPrefix"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Permanent bool       `json:"permanent"`
}
