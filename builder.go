package adminguard

import (
	"errors"
	"time"

	"github.com/hexbyte/adminguard/internal/blocklist"
	"github.com/hexbyte/adminguard/internal/limiters"
	"github.com/hexbyte/adminguard/internal/rate"
	"github.com/hexbyte/adminguard/password"
	"github.com/hexbyte/adminguard/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the Engine handles its first request.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	sink   AuditSink
	now    func() time.Time

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the blocklist, the durable
// event log, and (when enabled) shared attempt counters.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink supplies the sink that receives security events in addition
// to the durable event log.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithClock overrides the engine's time source. Tests use it to step through
// token expiry and rate-limit windows deterministically.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration, parses the credential descriptor, and
// wires the engine. A Builder can build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		// The durable block record is the only cross-instance enforcement
		// mechanism; there is no meaningful engine without it.
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	descriptor, err := password.Parse(cfg.Credential.Descriptor, cfg.Security.AllowCleartextPassword)
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(cfg.Token.Secret, cfg.Token.TTL)
	if err != nil {
		return nil, err
	}

	var counters rate.CounterStore
	if cfg.RateLimit.SharedCounters {
		counters = rate.NewRedisStore(b.redis)
	} else {
		counters = rate.NewMemoryStore(now)
	}

	engine := &Engine{
		config:     cfg,
		descriptor: descriptor,
		tokens:     tokens,
		totp:       newTOTPManager(cfg.TOTP),
		now:        now,
	}

	engine.loginLimiter = rate.NewLimiter(counters, rate.Config{
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Window:      cfg.RateLimit.Window,
	})
	engine.requestLimiter = rate.NewRequestLimiter(counters, rate.RequestConfig{
		Window:      cfg.RequestRate.Window,
		MaxRequests: cfg.RequestRate.MaxRequests,
	})
	engine.lockout = limiters.NewLockoutLimiter(counters, limiters.LockoutConfig{
		Threshold: cfg.AutoBlock.Threshold,
		Window:    cfg.AutoBlock.Window,
	})
	engine.blocklist = blocklist.NewStore(b.redis, cfg.Blocklist.RedisPrefix, now)
	engine.events = newEventLog(b.redis, cfg.Audit.RedisKey)
	engine.audit = newAuditDispatcher(cfg.Audit, b.sink, engine.events)
	engine.metrics = NewMetrics(cfg.Metrics.Enabled)

	b.built = true

	return engine, nil
}
