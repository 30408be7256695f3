package adminguard

import (
	"errors"
	"strings"
	"time"
)

// Config is the full configuration surface of the admin authentication engine.
//
// Config instances are intended to be populated during initialization and then
// treated as immutable.
type Config struct {
	Credential  CredentialConfig
	Token       TokenConfig
	TOTP        TOTPConfig
	RateLimit   RateLimitConfig
	RequestRate RequestRateConfig
	AutoBlock   AutoBlockConfig
	Blocklist   BlocklistConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
	Security    SecurityConfig
}

// MetricsConfig toggles the in-process counters exposed through
// [Engine.MetricsSnapshot].
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig identifies the single admin principal and its stored
// credential descriptor. The descriptor string is parsed into a typed variant
// at Build time; format errors are configuration errors, not login failures.
type CredentialConfig struct {
	AdminEmail string
	// Descriptor is one of:
	//   plain:<secret>                                (requires AllowCleartextPassword)
	//   $pbkdf2-sha512$i=<iter>$<b64 salt>$<b64 digest>
	//   $2a$... / $2b$... / $2y$...                   (bcrypt)
	Descriptor string
}

// TokenConfig controls session token issuance. Tokens are stateless: validity
// is fully determined by signature and expiry, and there is no revocation list.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// TOTPConfig controls the optional second factor. An empty Secret disables the
// TOTP step entirely.
type TOTPConfig struct {
	Secret string // base32, process-wide shared secret
	Issuer string
	Digits int
	Period int
	Skew   int // accepted step offsets each side of now
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig tunes the per-actor login attempt window.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
	// SharedCounters moves attempt counters from process memory into Redis so
	// that multiple instances share one budget. Off by default: the in-memory
	// counter is a best-effort optimization and the durable block record
	// remains the real enforcement boundary either way.
	SharedCounters bool
}

// RequestRateConfig tunes the generic per-source fixed-window limiter used by
// non-login endpoints.
type RequestRateConfig struct {
	Window      time.Duration
	MaxRequests int
}

// AutoBlockConfig controls promotion from transient lockout to a durable block.
type AutoBlockConfig struct {
	// Threshold is the cumulative failure count that triggers promotion. It is
	// tracked separately from the login window counter and is intentionally
	// larger than RateLimit.MaxAttempts.
	Threshold int
	// Window bounds how long cumulative failures accrue before the counter
	// naturally resets.
	Window time.Duration
	// BlockTTL is the lifetime of an automatically created block record.
	BlockTTL time.Duration
}

// BlocklistConfig controls the durable block record store.
type BlocklistConfig struct {
	RedisPrefix string
}

// AuditConfig controls the asynchronous security event pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// PersistEvents appends every event to the durable Redis event log in
	// addition to the configured sink.
	PersistEvents bool
	RedisKey      string
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig carries cross-cutting hardening switches.
type SecurityConfig struct {
	ProductionMode bool
	// AllowCleartextPassword permits the plain: descriptor format. It exists
	// for local bootstrap only and is rejected outright in ProductionMode.
	AllowCleartextPassword bool
	// StoreTimeout bounds every external store call. A timeout is treated as a
	// store failure and resolved by each component's fail-open/fail-closed
	// policy.
	StoreTimeout time.Duration
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. It is not valid on its
// own: the credential and token secret must still be supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL: 2 * time.Hour,
		},
		TOTP: TOTPConfig{
			Digits: 6,
			Period: 30,
			Skew:   1,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts:    5,
			Window:         15 * time.Minute,
			SharedCounters: false,
		},
		RequestRate: RequestRateConfig{
			Window:      time.Minute,
			MaxRequests: 60,
		},
		AutoBlock: AutoBlockConfig{
			Threshold: 10,
			Window:    24 * time.Hour,
			BlockTTL:  24 * time.Hour,
		},
		Blocklist: BlocklistConfig{
			RedisPrefix: "agb",
		},
		Audit: AuditConfig{
			Enabled:       true,
			BufferSize:    1024,
			DropIfFull:    true,
			PersistEvents: true,
			RedisKey:      "ag:security_events",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Security: SecurityConfig{
			ProductionMode:         false,
			AllowCleartextPassword: false,
			StoreTimeout:           3 * time.Second,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency. Build calls it;
// callers constructing a Config by hand may call it early for better error
// locality.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Credential.AdminEmail) == "" {
		return errors.New("Credential AdminEmail is required")
	}
	if strings.TrimSpace(c.Credential.Descriptor) == "" {
		return errors.New("Credential Descriptor is required")
	}

	if len(c.Token.Secret) == 0 {
		return errors.New("Token Secret is required")
	}
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}

	if c.TOTP.Secret != "" {
		if c.TOTP.Digits != 6 && c.TOTP.Digits != 8 {
			return errors.New("TOTP Digits must be 6 or 8")
		}
		if c.TOTP.Period < 15 {
			return errors.New("TOTP Period must be >= 15 seconds")
		}
		if c.TOTP.Skew < 0 {
			return errors.New("TOTP Skew must be >= 0")
		}
	}

	if c.RateLimit.MaxAttempts <= 0 {
		return errors.New("RateLimit MaxAttempts must be > 0")
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RateLimit Window must be > 0")
	}

	if c.RequestRate.MaxRequests <= 0 {
		return errors.New("RequestRate MaxRequests must be > 0")
	}
	if c.RequestRate.Window <= 0 {
		return errors.New("RequestRate Window must be > 0")
	}

	if c.AutoBlock.Threshold <= 0 {
		return errors.New("AutoBlock Threshold must be > 0")
	}
	if c.AutoBlock.Threshold < c.RateLimit.MaxAttempts {
		return errors.New("AutoBlock Threshold must be >= RateLimit MaxAttempts")
	}
	if c.AutoBlock.Window <= 0 {
		return errors.New("AutoBlock Window must be > 0")
	}
	if c.AutoBlock.BlockTTL <= 0 {
		return errors.New("AutoBlock BlockTTL must be > 0")
	}

	if c.Blocklist.RedisPrefix == "" {
		return errors.New("Blocklist RedisPrefix is required")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Audit.PersistEvents && c.Audit.RedisKey == "" {
		return errors.New("Audit RedisKey is required when PersistEvents is enabled")
	}

	if c.Security.StoreTimeout <= 0 {
		return errors.New("Security StoreTimeout must be > 0")
	}

	if c.Security.ProductionMode {
		if c.Security.AllowCleartextPassword {
			return errors.New("ProductionMode forbids AllowCleartextPassword")
		}
		if strings.HasPrefix(c.Credential.Descriptor, "plain:") {
			return errors.New("ProductionMode forbids plain credential descriptors")
		}
		if len(c.Token.Secret) < 32 {
			return errors.New("ProductionMode requires Token Secret length >= 256 bits")
		}
		if c.Token.TTL > 24*time.Hour {
			return errors.New("ProductionMode requires Token TTL <= 24h")
		}
		if c.TOTP.Secret != "" && c.TOTP.Skew > 2 {
			return errors.New("ProductionMode requires TOTP Skew <= 2")
		}
	}

	return nil
}
