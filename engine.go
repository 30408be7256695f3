package adminguard

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/hexbyte/adminguard/internal/blocklist"
	"github.com/hexbyte/adminguard/internal/limiters"
	"github.com/hexbyte/adminguard/internal/rate"
	"github.com/hexbyte/adminguard/password"
	"github.com/hexbyte/adminguard/token"
)

// Engine is the admin authentication and abuse-mitigation core. It is
// immutable after [Builder.Build] and safe for concurrent use; each request's
// verification runs independently with no process-wide lock.
type Engine struct {
	config     Config
	descriptor *password.Descriptor
	tokens     *token.Manager
	totp       *totpManager

	loginLimiter   *rate.Limiter
	requestLimiter *rate.RequestLimiter
	lockout        *limiters.LockoutLimiter
	blocklist      *blocklist.Store
	events         *eventLog
	audit          *auditDispatcher
	metrics        *Metrics

	now func() time.Time
}

// Close drains the audit dispatcher. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many security events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// storeCtx bounds an external store call. Timeouts read as store failures and
// resolve per each component's fail-open/fail-closed policy.
func (e *Engine) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, e.config.Security.StoreTimeout)
}

// Login authenticates the admin principal. The check order is fixed:
// blocklist gate, attempt window, credential, second factor, token mint.
// Every outcome emits exactly one security event.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if e == nil || e.descriptor == nil {
		return nil, ErrEngineNotReady
	}

	// Malformed input is rejected before any cryptographic work and does not
	// count as a failed attempt.
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrMalformedInput
	}

	actor := ActorKey(clientIPFromContext(ctx))

	if e.gateBlocked(ctx, actor, "login") {
		e.metricInc(MetricBlockedHit)
		return nil, ErrBlocked
	}

	sctx, cancel := e.storeCtx(ctx)
	decision, err := e.loginLimiter.Check(sctx, actor)
	cancel()
	if err != nil {
		// Limiter store failure: fail open. The blocklist above remains the
		// enforcement boundary.
		e.emit(ctx, LevelWarn, EventRateLimited, actor, map[string]string{
			detailReason: "limiter_unavailable",
		})
	}
	if !decision.Allowed {
		e.metricInc(MetricLoginRateLimited)
		e.emit(ctx, LevelWarn, EventRateLimited, actor, map[string]string{
			detailRetryAfter: decision.RetryAfter.Round(time.Second).String(),
		})
		return &LoginResult{RetryAfter: decision.RetryAfter}, ErrLoginRateLimited
	}

	// Verify the password even when the email is wrong so a mismatched email
	// costs the same time as a mismatched password. Both failures report
	// identically to prevent account enumeration.
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(req.Email))),
		[]byte(strings.ToLower(e.config.Credential.AdminEmail)),
	) == 1
	passwordOK := e.descriptor.Verify(req.Password)
	if !emailOK || !passwordOK {
		return e.failLogin(ctx, actor, "bad_credentials", ErrInvalidCredentials)
	}

	if e.totp.Enabled() {
		if strings.TrimSpace(req.TOTPCode) == "" {
			// Not a failed check: the caller is told to retry with a code and
			// no counter moves.
			e.metricInc(MetricTOTPRequired)
			return &LoginResult{TOTPRequired: true}, ErrTOTPRequired
		}
		ok, err := e.totp.VerifyCode(req.TOTPCode, e.now())
		if err != nil || !ok {
			return e.failLogin(ctx, actor, "bad_totp", ErrTOTPInvalid)
		}
	}

	tok, err := e.tokens.Issue(e.config.Credential.AdminEmail, token.RoleAdmin, e.now())
	if err != nil {
		// Signing failure is internal; it must not read as bad credentials.
		return nil, err
	}

	sctx, cancel = e.storeCtx(ctx)
	_ = e.loginLimiter.Reset(sctx, actor)
	_ = e.lockout.Reset(sctx, actor)
	cancel()

	e.metricInc(MetricLoginSuccess)
	e.emit(ctx, LevelInfo, EventAdminLoginSuccess, actor, map[string]string{
		detailEmail: e.config.Credential.AdminEmail,
	})

	return &LoginResult{
		Token:     tok,
		ExpiresIn: int(e.tokens.TTL() / time.Second),
	}, nil
}

// failLogin records a failed credential or TOTP check, promotes the actor to
// a durable block when the cumulative threshold is reached, and emits the
// corresponding event.
func (e *Engine) failLogin(ctx context.Context, actor, reason string, sentinel error) (*LoginResult, error) {
	e.metricInc(MetricLoginFailure)

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	count, err := e.loginLimiter.RecordFailure(sctx, actor)
	if err != nil {
		count = int64(e.config.RateLimit.MaxAttempts)
	}

	promote, err := e.lockout.RecordFailure(sctx, actor)
	if err != nil {
		promote = false
	}

	if promote {
		expires := e.now().Add(e.config.AutoBlock.BlockTTL)
		blockErr := e.blocklist.Block(sctx, blocklist.Record{
			ActorKey:  actor,
			Reason:    autoBlockReason,
			CreatedAt: e.now(),
			ExpiresAt: &expires,
		})
		details := map[string]string{
			detailReason:   reason,
			detailBlockTTL: e.config.AutoBlock.BlockTTL.String(),
		}
		if blockErr != nil {
			// The block write failed; the login still fails, but the actor is
			// only held by in-memory counters until the store recovers.
			details[detailStoreError] = "block_write_failed"
		}
		e.metricInc(MetricAutoBlocked)
		e.emit(ctx, LevelAlert, EventAutoBlocked, actor, details)
	} else {
		e.emit(ctx, LevelWarn, EventFailedLogin, actor, map[string]string{
			detailReason: reason,
		})
	}

	remaining := e.config.RateLimit.MaxAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &LoginResult{RemainingAttempts: remaining}, sentinel
}

// Validate authorizes an already-authenticated request: blocklist gate first,
// then bearer token verification. Token failures map to the package
// sentinels; callers must not leak which check failed beyond the generic
// expired/invalid distinction.
func (e *Engine) Validate(ctx context.Context, tokenStr string) (*token.Claims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	actor := ActorKey(clientIPFromContext(ctx))

	if e.gateBlocked(ctx, actor, "validate") {
		e.metricInc(MetricBlockedHit)
		return nil, ErrBlocked
	}

	claims, err := e.tokens.Verify(tokenStr, e.now())
	if err != nil {
		e.metricInc(MetricTokenRejected)
		e.emit(ctx, LevelWarn, EventUnauthorizedAdminAccess, actor, map[string]string{
			detailReason: tokenFailureReason(err),
		})
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, token.ErrSignature):
			return nil, ErrTokenSignature
		case errors.Is(err, token.ErrInsufficientRole):
			return nil, ErrInsufficientRole
		case errors.Is(err, token.ErrMalformed):
			return nil, ErrTokenMalformed
		}
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// AllowRequest applies the generic per-source fixed-window limiter for a
// named scope. The transport layer decides whether a rejection is explicit
// (429 with retry hint) or silent.
func (e *Engine) AllowRequest(ctx context.Context, scope string) (rate.Decision, error) {
	if e == nil || e.requestLimiter == nil {
		return rate.Decision{Allowed: true}, ErrEngineNotReady
	}

	actor := ActorKey(clientIPFromContext(ctx))

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	decision, err := e.requestLimiter.Allow(sctx, scope, actor)
	if err != nil {
		// Fail open on store errors.
		return rate.Decision{Allowed: true}, nil
	}
	if !decision.Allowed {
		e.metricInc(MetricRequestThrottled)
	}
	return decision, nil
}

// gateBlocked consults the blocklist gate. Store errors fail OPEN by policy:
// infrastructure trouble must not deny legitimate admin traffic. The inverse
// policy (fail closed) applies to credential checks.
func (e *Engine) gateBlocked(ctx context.Context, actor, where string) bool {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	blocked, err := e.blocklist.IsBlocked(sctx, actor)
	if err != nil {
		e.emit(ctx, LevelWarn, EventUnauthorizedAdminAccess, actor, map[string]string{
			detailReason:     "blocklist_unavailable",
			detailCheckpoint: where,
		})
		return false
	}
	if blocked {
		e.emit(ctx, LevelWarn, EventBlockedIP, actor, map[string]string{
			detailCheckpoint: where,
		})
	}
	return blocked
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "token_expired"
	case errors.Is(err, token.ErrSignature):
		return "bad_signature"
	case errors.Is(err, token.ErrInsufficientRole):
		return "insufficient_role"
	default:
		return "malformed_token"
	}
}
