package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	adminguard "github.com/hexbyte/adminguard"
	"github.com/hexbyte/adminguard/token"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified session claims attached by [Guard].
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok
}

// Guard rejects requests that lack a valid admin bearer token or originate
// from a blocked actor. Error bodies deliberately reveal nothing beyond the
// expired/invalid distinction.
func Guard(engine *adminguard.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			ctx := adminguard.WithClientIP(r.Context(), ClientIP(r))

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			claims, err := engine.Validate(ctx, tok)
			if err != nil {
				switch {
				case errors.Is(err, adminguard.ErrBlocked):
					writeError(w, http.StatusForbidden, "forbidden")
				case errors.Is(err, adminguard.ErrTokenExpired):
					writeError(w, http.StatusUnauthorized, "token expired")
				default:
					writeError(w, http.StatusUnauthorized, "invalid credentials")
				}
				return
			}

			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}

// ClientIP extracts the caller address, preferring the first X-Forwarded-For
// hop when the request came through a proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
