package adminguard

import (
	"context"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples security event emission from the request path.
// Events are buffered and delivered on a single background goroutine to the
// configured sink and, when enabled, the durable Redis event log. Delivery is
// best-effort; the request that produced an event never waits on it.
type auditDispatcher struct {
	cfg       AuditConfig
	sink      AuditSink
	log       *eventLog
	ch        chan AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, log *eventLog) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if !cfg.PersistEvents {
		log = nil
	}

	d := &auditDispatcher{
		cfg:  cfg,
		sink: sink,
		log:  log,
		ch:   make(chan AuditEvent, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (d *auditDispatcher) deliver(event AuditEvent) {
	ctx := context.Background()
	d.sink.Emit(ctx, event)
	if d.log != nil {
		// Persistence failures are swallowed: the decision that produced the
		// event has already been made and must stand.
		_ = d.log.Append(ctx, event)
	}
}

// Emit queues an event for delivery. With DropIfFull the call never blocks and
// overflow is counted; otherwise it waits until the buffer drains or the
// caller's context ends.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close drains buffered events and stops the delivery goroutine.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
