package adminguard

import (
	"strings"
	"testing"
	"time"
)

// base32 form of the ASCII seed "12345678901234567890" used by the RFC 6238
// reference vectors.
const rfcSeedBase32 = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestTOTPVerifyRFCVectors(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Secret: rfcSeedBase32,
		Issuer: "adminguard",
		Digits: 8,
		Period: 30,
		Skew:   0,
	})

	cases := []struct {
		ts   int64
		code string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}

	for _, tc := range cases {
		ok, err := m.VerifyCode(tc.code, time.Unix(tc.ts, 0))
		if err != nil {
			t.Fatalf("vector at t=%d: %v", tc.ts, err)
		}
		if !ok {
			t.Fatalf("vector at t=%d: code %s did not verify", tc.ts, tc.code)
		}
	}
}

func TestTOTPSkewWindow(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Secret: rfcSeedBase32,
		Issuer: "adminguard",
		Digits: 8,
		Period: 30,
		Skew:   1,
	})

	// The vector code for t=1111111109 belongs to a single step. With skew 1
	// it must be accepted one step on either side and rejected two steps away.
	const base = int64(1111111109)
	code := "07081804"

	for _, ts := range []int64{base - 30, base, base + 30} {
		ok, err := m.VerifyCode(code, time.Unix(ts, 0))
		if err != nil || !ok {
			t.Fatalf("t=%d: expected code accepted within skew, ok=%v err=%v", ts, ok, err)
		}
	}

	for _, ts := range []int64{base - 60, base + 60} {
		ok, err := m.VerifyCode(code, time.Unix(ts, 0))
		if err != nil {
			t.Fatalf("t=%d: %v", ts, err)
		}
		if ok {
			t.Fatalf("t=%d: code accepted outside skew window", ts)
		}
	}
}

func TestTOTPRejectsNonNumericAndWrongLength(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Secret: rfcSeedBase32,
		Digits: 6,
		Period: 30,
		Skew:   1,
	})
	now := time.Unix(1234567890, 0)

	for _, code := range []string{"", "12345", "1234567", "12a456", "abcdef", "123 45"} {
		ok, err := m.VerifyCode(code, now)
		if err != nil {
			t.Fatalf("code %q: %v", code, err)
		}
		if ok {
			t.Fatalf("code %q: must not verify", code)
		}
	}
}

func TestTOTPLenientSecretDecoding(t *testing.T) {
	reference := newTOTPManager(TOTPConfig{
		Secret: rfcSeedBase32,
		Digits: 8,
		Period: 30,
		Skew:   0,
	})

	// Same secret in the forms authenticator apps actually hand around:
	// lowercase, grouped with spaces, grouped with dashes, padded.
	variants := []string{
		"gezdgnbvgy3tqojqgezdgnbvgy3tqojq",
		"GEZD GNBV GY3T QOJQ GEZD GNBV GY3T QOJQ",
		"GEZD-GNBV-GY3T-QOJQ-GEZD-GNBV-GY3T-QOJQ",
		rfcSeedBase32 + "========",
	}

	code := "94287082"
	now := time.Unix(59, 0)

	if ok, err := reference.VerifyCode(code, now); err != nil || !ok {
		t.Fatalf("reference secret rejected vector: ok=%v err=%v", ok, err)
	}

	for _, secret := range variants {
		m := newTOTPManager(TOTPConfig{
			Secret: secret,
			Digits: 8,
			Period: 30,
			Skew:   0,
		})
		ok, err := m.VerifyCode(code, now)
		if err != nil {
			t.Fatalf("secret %q: %v", secret, err)
		}
		if !ok {
			t.Fatalf("secret %q: vector code rejected", secret)
		}
	}
}

func TestTOTPEnabled(t *testing.T) {
	if newTOTPManager(TOTPConfig{}).Enabled() {
		t.Fatal("empty secret must disable TOTP")
	}
	if !newTOTPManager(TOTPConfig{Secret: rfcSeedBase32}).Enabled() {
		t.Fatal("configured secret must enable TOTP")
	}
}

func TestGenerateTOTPSecret(t *testing.T) {
	a, err := GenerateTOTPSecret()
	if err != nil {
		t.Fatalf("GenerateTOTPSecret failed: %v", err)
	}
	b, err := GenerateTOTPSecret()
	if err != nil {
		t.Fatalf("GenerateTOTPSecret failed: %v", err)
	}
	if a == b {
		t.Fatal("two generated secrets must differ")
	}
	if _, err := decodeBase32Secret(a); err != nil {
		t.Fatalf("generated secret must decode: %v", err)
	}
}

func TestTOTPProvisionURI(t *testing.T) {
	m := newTOTPManager(TOTPConfig{
		Secret: rfcSeedBase32,
		Issuer: "adminguard",
		Digits: 6,
		Period: 30,
	})

	uri := m.ProvisionURI("admin@example.com")
	for _, want := range []string{
		"otpauth://totp/",
		"secret=" + rfcSeedBase32,
		"issuer=adminguard",
		"digits=6",
		"period=30",
	} {
		if !strings.Contains(uri, want) {
			t.Fatalf("provision URI %q missing %q", uri, want)
		}
	}
}
