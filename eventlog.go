package adminguard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// eventLog is the durable, append-only security event record backing the audit
// trail consumed by dashboards. Events are only ever appended; nothing in this
// subsystem mutates or deletes them.
type eventLog struct {
	redis redis.UniversalClient
	key   string
}

func newEventLog(redisClient redis.UniversalClient, key string) *eventLog {
	return &eventLog{redis: redisClient, key: key}
}

func (l *eventLog) Append(ctx context.Context, event AuditEvent) error {
	if l == nil || l.redis == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := l.redis.RPush(ctx, l.key, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Recent returns up to n events, newest first.
func (l *eventLog) Recent(ctx context.Context, n int) ([]AuditEvent, error) {
	if l == nil || l.redis == nil || n <= 0 {
		return nil, nil
	}

	raw, err := l.redis.LRange(ctx, l.key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	events := make([]AuditEvent, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var event AuditEvent
		if err := json.Unmarshal([]byte(raw[i]), &event); err != nil {
			// Skip undecodable rows rather than failing the whole read.
			continue
		}
		events = append(events, event)
	}

	return events, nil
}
