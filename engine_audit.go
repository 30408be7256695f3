package adminguard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const auditSource = "admin_auth"

const autoBlockReason = "auto: repeated failed admin logins"

// Detail keys used in security event payloads. Values under these keys are
// sanitized before emission: never a raw password, never a raw IP.
const (
	detailReason     = "reason"
	detailEmail      = "email"
	detailRetryAfter = "retry_after"
	detailBlockTTL   = "block_ttl"
	detailCheckpoint = "checkpoint"
	detailStoreError = "store_error"
	detailTTLHours   = "ttl_hours"
)

const maxDetailValueLen = 256

// emit records one security event for a decision. Emission is best-effort
// and asynchronous; it can never fail or delay the request that caused it.
func (e *Engine) emit(ctx context.Context, level AuditLevel, eventType, actorKey string, details map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	for k, v := range details {
		if len(v) > maxDetailValueLen {
			details[k] = v[:maxDetailValueLen]
		}
	}

	e.audit.Emit(ctx, AuditEvent{
		ID:             uuid.NewString(),
		Timestamp:      e.now().UTC(),
		Level:          level,
		Source:         auditSource,
		EventType:      eventType,
		ActorKeyPrefix: ActorKeyPrefix(actorKey),
		Region:         regionFromContext(ctx),
		Details:        details,
	})
}

// RecentEvents reads the newest n entries from the durable security event
// log, newest first. Intended for dashboard display.
func (e *Engine) RecentEvents(ctx context.Context, n int) ([]AuditEvent, error) {
	if e == nil || e.events == nil {
		return nil, ErrEngineNotReady
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	events, err := e.events.Recent(sctx, n)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// TOTPProvisionURI renders the otpauth:// enrollment URI for the configured
// shared secret, or the empty string when TOTP is disabled.
func (e *Engine) TOTPProvisionURI(account string) string {
	if e == nil || !e.totp.Enabled() {
		return ""
	}
	return e.totp.ProvisionURI(account)
}

// Now exposes the engine clock for transport-layer retry arithmetic.
func (e *Engine) Now() time.Time {
	if e == nil || e.now == nil {
		return time.Now()
	}
	return e.now()
}
