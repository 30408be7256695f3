package middleware

import (
	"net/http"
	"strconv"

	adminguard "github.com/hexbyte/adminguard"
)

// Mode selects how a rate-limited request is answered.
type Mode int

const (
	// ModeExplicit answers 429 with a Retry-After hint. Used for endpoints
	// whose callers deserve feedback (login, checkout).
	ModeExplicit Mode = iota
	// ModeSilent answers 202 and drops the request without reaching the
	// handler. Used for high-volume low-value endpoints where an explicit
	// rejection would only feed an attacker's feedback loop. Silence over
	// information leakage is a deliberate tradeoff here.
	ModeSilent
)

// RateLimit applies the engine's generic fixed-window limiter under the given
// scope before passing the request on.
func RateLimit(engine *adminguard.Engine, scope string, mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := adminguard.WithClientIP(r.Context(), ClientIP(r))
			decision, err := engine.AllowRequest(ctx, scope)
			if err != nil || decision.Allowed {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			switch mode {
			case ModeSilent:
				w.WriteHeader(http.StatusAccepted)
			default:
				retryAfter := int(decision.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "rate limited")
			}
		})
	}
}
