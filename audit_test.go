package adminguard

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testEvent(eventType string) AuditEvent {
	return AuditEvent{
		ID:        "test-id",
		Timestamp: time.Unix(1_700_000_000, 0).UTC(),
		Level:     LevelWarn,
		Source:    "admin_auth",
		EventType: eventType,
	}
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(64)
	d := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 64,
		DropIfFull: true,
	}, sink, nil)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), testEvent(EventFailedLogin))
	}
	d.Close()

	received := 0
	for {
		select {
		case <-sink.Events():
			received++
		default:
			if received != 10 {
				t.Fatalf("expected 10 delivered events, got %d", received)
			}
			return
		}
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// A sink that parks until released keeps the buffer occupied.
	release := make(chan struct{})
	var once sync.Once
	blocking := sinkFunc(func(ctx context.Context, event AuditEvent) {
		once.Do(func() { <-release })
	})

	d := newAuditDispatcher(AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, blocking, nil)

	// The first event occupies the delivery goroutine, the second fills the
	// buffer; everything after that must be dropped, never block.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), testEvent(EventFailedLogin))
	}

	close(release)
	d.Close()

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events")
	}
}

type sinkFunc func(ctx context.Context, event AuditEvent)

func (f sinkFunc) Emit(ctx context.Context, event AuditEvent) { f(ctx, event) }

func TestDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, nil, nil)
	if d != nil {
		t.Fatal("disabled audit must yield a nil dispatcher")
	}
	// Nil dispatcher methods are no-ops.
	d.Emit(context.Background(), testEvent(EventFailedLogin))
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports zero drops")
	}
}

func TestDispatcherEmitAfterClose(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8, DropIfFull: true}, sink, nil)
	d.Close()

	// Must not panic or block.
	d.Emit(context.Background(), testEvent(EventFailedLogin))
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), testEvent(EventAutoBlocked))
	sink.Emit(context.Background(), testEvent(EventFailedLogin))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var event AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if event.EventType != EventAutoBlocked {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
}

func TestEventLogAppendAndRecent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := newEventLog(rdb, "ag:security_events")
	ctx := context.Background()

	for _, eventType := range []string{EventFailedLogin, EventRateLimited, EventAutoBlocked} {
		if err := log.Append(ctx, testEvent(eventType)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	events, err := log.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Newest first.
	if events[0].EventType != EventAutoBlocked || events[1].EventType != EventRateLimited {
		t.Fatalf("unexpected order: %s, %s", events[0].EventType, events[1].EventType)
	}

	if events, _ := log.Recent(ctx, 100); len(events) != 3 {
		t.Fatalf("expected all 3 events, got %d", len(events))
	}
	if events, _ := log.Recent(ctx, 0); events != nil {
		t.Fatal("n<=0 must return nothing")
	}
}

func TestEventLogSkipsCorruptRows(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	log := newEventLog(rdb, "ag:security_events")
	ctx := context.Background()

	if err := log.Append(ctx, testEvent(EventFailedLogin)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := rdb.RPush(ctx, "ag:security_events", "{not json").Err(); err != nil {
		t.Fatalf("rpush failed: %v", err)
	}
	if err := log.Append(ctx, testEvent(EventAutoBlocked)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := log.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected corrupt row skipped, got %d events", len(events))
	}
}

func TestActorKeyShape(t *testing.T) {
	key := ActorKey("203.0.113.7")
	if len(key) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(key))
	}
	if key == ActorKey("203.0.113.8") {
		t.Fatal("distinct IPs must hash differently")
	}
	if key != ActorKey("203.0.113.7") {
		t.Fatal("hashing must be deterministic")
	}
	if strings.Contains(key, "203.0.113.7") {
		t.Fatal("actor key must not embed the raw IP")
	}

	prefix := ActorKeyPrefix(key)
	if len(prefix) != 12 || !strings.HasPrefix(key, prefix) {
		t.Fatalf("unexpected prefix %q", prefix)
	}
	if got := ActorKeyPrefix("short"); got != "short" {
		t.Fatalf("short keys pass through, got %q", got)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(true)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricAutoBlocked)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 || snap.Counters[MetricAutoBlocked] != 1 {
		t.Fatalf("unexpected snapshot %+v", snap.Counters)
	}

	// The snapshot is detached from live counters.
	m.Inc(MetricLoginSuccess)
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Fatal("snapshot must not track live state")
	}

	disabled := NewMetrics(false)
	disabled.Inc(MetricLoginSuccess)
	if disabled.Value(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics must not count")
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricLoginSuccess)
	if nilMetrics.Value(MetricLoginSuccess) != 0 {
		t.Fatal("nil metrics must be a no-op")
	}
}
