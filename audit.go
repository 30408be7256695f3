package adminguard

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// AuditLevel is the severity attached to a security event.
type AuditLevel string

const (
	// LevelInfo marks routine outcomes such as a successful login.
	LevelInfo AuditLevel = "INFO"
	// LevelWarn marks suspicious but unescalated outcomes.
	LevelWarn AuditLevel = "WARN"
	// LevelAlert marks outcomes that changed enforcement state, such as an
	// automatic block promotion.
	LevelAlert AuditLevel = "ALERT"
)

// Fixed event vocabulary. Every security-relevant decision emits exactly one
// event with one of these types.
const (
	EventFailedLogin             = "failed_login"
	EventAdminLoginSuccess       = "admin_login_success"
	EventRateLimited             = "rate_limited"
	EventAutoBlocked             = "auto_blocked"
	EventBlockedIP               = "blocked_ip"
	EventUnauthorizedAdminAccess = "unauthorized_admin_access"
	EventIPBlockedManual         = "ip_blocked_manual"
	EventIPUnblockedManual       = "ip_unblocked_manual"
)

// AuditEvent is the canonical security event model. Details never contain the
// raw password or raw IP; actors appear only as a truncated key hash prefix.
type AuditEvent struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	Level          AuditLevel        `json:"level"`
	Source         string            `json:"source"`
	EventType      string            `json:"event_type"`
	ActorKeyPrefix string            `json:"actor_key,omitempty"`
	Region         string            `json:"region,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
}

// AuditSink receives emitted security events. Emission is best-effort: a sink
// failure must never abort the request that produced the event.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops security events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes security events into a buffered channel, typically for
// an embedding host that forwards them to its own pipeline.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
