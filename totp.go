package adminguard

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const totpSecretBytes = 20

// totpManager implements the RFC 6238 time-based second factor over the
// process-wide shared secret. HMAC-SHA1, 30-second steps, dynamic truncation
// per RFC 4226.
type totpManager struct {
	config TOTPConfig
}

func newTOTPManager(cfg TOTPConfig) *totpManager {
	if cfg.Digits == 0 {
		cfg.Digits = 6
	}
	if cfg.Period == 0 {
		cfg.Period = 30
	}
	return &totpManager{config: cfg}
}

// Enabled reports whether a shared secret is configured. When false the
// second-factor step is skipped entirely.
func (m *totpManager) Enabled() bool {
	return m != nil && m.config.Secret != ""
}

// GenerateTOTPSecret produces a fresh random secret in base32 form, suitable
// for operator enrollment.
func GenerateTOTPSecret() (string, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return enc.EncodeToString(raw), nil
}

// ProvisionURIFor renders an otpauth:// enrollment URI for a secret outside
// any engine, with the default digit count and period. Provisioning tooling
// uses it before a deployment exists.
func ProvisionURIFor(secret, issuer, account string) string {
	m := newTOTPManager(TOTPConfig{Secret: secret, Issuer: issuer})
	return m.ProvisionURI(account)
}

// ProvisionURI renders the otpauth:// enrollment URI for the configured
// secret and account label.
func (m *totpManager) ProvisionURI(account string) string {
	issuer := m.config.Issuer
	label := url.PathEscape(issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", m.config.Secret)
	v.Set("issuer", issuer)
	v.Set("period", strconv.Itoa(m.config.Period))
	v.Set("digits", strconv.Itoa(m.config.Digits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// VerifyCode checks the presented code against the current step and the
// configured skew on each side, tolerating clock drift between client and
// server. The comparison per candidate is constant-time.
func (m *totpManager) VerifyCode(code string, now time.Time) (bool, error) {
	if m == nil {
		return false, ErrEngineNotReady
	}

	trimmed := strings.TrimSpace(code)
	if len(trimmed) != m.config.Digits || !isNumericString(trimmed) {
		return false, nil
	}

	secret, err := decodeBase32Secret(m.config.Secret)
	if err != nil {
		return false, err
	}

	baseCounter := now.Unix() / int64(m.config.Period)
	for step := -m.config.Skew; step <= m.config.Skew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		generated := hotpCode(secret, counter, m.config.Digits)
		if subtle.ConstantTimeCompare([]byte(generated), []byte(trimmed)) == 1 {
			return true, nil
		}
	}

	return false, nil
}

// decodeBase32Secret decodes a base32 secret leniently: case is folded,
// padding, spaces, and any character outside the base32 alphabet are skipped
// rather than rejected. Authenticator apps commonly display secrets with
// grouping separators, so strictness here only breaks enrollment.
func decodeBase32Secret(s string) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7') {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return nil, errors.New("empty totp secret")
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	raw, err := enc.DecodeString(cleaned)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func hotpCode(secret []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func isNumericString(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
