package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SubjectAdmin is the fixed subject claim on every issued token.
const SubjectAdmin = "admin"

// RoleAdmin is the only role accepted by Verify.
const RoleAdmin = "admin"

var (
	// ErrMalformed indicates the token does not split into exactly three
	// dot-separated segments, or a segment failed to decode.
	ErrMalformed = errors.New("malformed token")
	// ErrSignature indicates the recomputed HMAC does not exactly match the
	// provided signature segment.
	ErrSignature = errors.New("bad token signature")
	// ErrExpired indicates the exp claim is in the past. Checked on every
	// verification; an expired token is rejected even with a valid signature.
	ErrExpired = errors.New("token expired")
	// ErrInsufficientRole indicates a verified token whose role claim is not
	// [RoleAdmin].
	ErrInsufficientRole = errors.New("insufficient role")
)

// Claims is the session credential payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session credentials with a single shared HS256
// secret. Managers are immutable after construction and safe for concurrent
// use.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager validates the signing configuration.
func NewManager(secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	return &Manager{secret: secret, ttl: ttl}, nil
}

// TTL reports the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed token for the admin principal. The now parameter is
// explicit so callers control the clock; it stamps both iat and exp.
func (m *Manager) Issue(email, role string, now time.Time) (string, error) {
	if m == nil {
		return "", errors.New("token manager not initialized")
	}

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   SubjectAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.secret)
}

// Verify parses and validates a token at the given instant. Failures map to
// the package sentinels in check order: malformed, signature, expiry, role.
func (m *Manager) Verify(tokenStr string, now time.Time) (*Claims, error) {
	if m == nil {
		return nil, errors.New("token manager not initialized")
	}
	if strings.Count(tokenStr, ".") != 2 {
		return nil, ErrMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		}
		return nil, ErrMalformed
	}
	if !tok.Valid {
		return nil, ErrSignature
	}

	if claims.Role != RoleAdmin {
		return nil, ErrInsufficientRole
	}

	return claims, nil
}
