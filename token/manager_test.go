package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewManager(testSecret, 0); err == nil {
		t.Fatal("expected error for zero TTL")
	}
	if _, err := NewManager(testSecret, -time.Hour); err == nil {
		t.Fatal("expected error for negative TTL")
	}
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	m := newTestManager(t, 2*time.Hour)
	now := time.Unix(1_700_000_000, 0)

	tok, err := m.Issue("admin@example.com", RoleAdmin, now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Email != "admin@example.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("unexpected role claim: %s", claims.Role)
	}
	if claims.Subject != SubjectAdmin {
		t.Fatalf("unexpected subject claim: %s", claims.Subject)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 2*time.Hour {
		t.Fatalf("expected 2h lifetime on claims, got %v", got)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	tok, err := m.Issue("admin@example.com", RoleAdmin, now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Just inside the lifetime.
	if _, err := m.Verify(tok, now.Add(time.Hour-time.Second)); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	// Just past it.
	if _, err := m.Verify(tok, now.Add(time.Hour+time.Second)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	tok, err := m.Issue("admin@example.com", RoleAdmin, now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a high bit of the final signature character; the low bits of the
	// last base64url character are padding and would decode identically.
	last := tok[len(tok)-1]
	flip := byte('A')
	if last == 'A' {
		flip = 'Q'
	}
	tampered := tok[:len(tok)-1] + string(flip)

	if _, err := m.Verify(tampered, now); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	tok, err := m.Issue("admin@example.com", RoleAdmin, now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	other, err := NewManager([]byte("another-secret-another-secret-00"), time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := other.Verify(tok, now); !errors.Is(err, ErrSignature) {
		t.Fatalf("expected ErrSignature, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	cases := []string{
		"",
		"not-a-token",
		"one.two",
		"one.two.three.four",
		"..",
		"!!!.@@@.###",
	}

	for _, tc := range cases {
		if _, err := m.Verify(tc, now); !errors.Is(err, ErrMalformed) {
			t.Fatalf("token %q: expected ErrMalformed, got %v", tc, err)
		}
	}
}

func TestVerifyRejectsNonAdminRole(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	tok, err := m.Issue("intern@example.com", "viewer", now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Verify(tok, now); !errors.Is(err, ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}
}

func TestVerifyExpiryBeatsRole(t *testing.T) {
	m := newTestManager(t, time.Hour)
	now := time.Unix(1_700_000_000, 0)

	tok, err := m.Issue("intern@example.com", "viewer", now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// An expired token is rejected as expired before the role is examined.
	if _, err := m.Verify(tok, now.Add(2*time.Hour)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestIssuedTokenShape(t *testing.T) {
	m := newTestManager(t, time.Hour)

	tok, err := m.Issue("admin@example.com", RoleAdmin, time.Unix(1_700_000_000, 0))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("expected three segments, got %q", tok)
	}
}
