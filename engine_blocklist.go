package adminguard

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/hexbyte/adminguard/internal/blocklist"
)

// BlockActor writes a manual block record for an actor key. A ttl of zero
// makes the block permanent. Manual blocks go through the same durable store
// as automatic promotions.
func (e *Engine) BlockActor(ctx context.Context, actorKey, reason string, ttl time.Duration) error {
	if e == nil || e.blocklist == nil {
		return ErrEngineNotReady
	}
	if actorKey == "" {
		return ErrMalformedInput
	}
	if reason == "" {
		reason = "manual block"
	}

	rec := blocklist.Record{
		ActorKey:  actorKey,
		Reason:    reason,
		CreatedAt: e.now(),
	}
	if ttl > 0 {
		expires := e.now().Add(ttl)
		rec.ExpiresAt = &expires
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if err := e.blocklist.Block(sctx, rec); err != nil {
		return storeErr(err)
	}

	e.metricInc(MetricManualBlock)
	e.emit(ctx, LevelInfo, EventIPBlockedManual, actorKey, map[string]string{
		detailReason:   reason,
		detailTTLHours: strconv.FormatFloat(ttl.Hours(), 'f', -1, 64),
	})
	return nil
}

// UnblockActor removes an actor's block record and clears its cumulative
// failure counter so a released actor starts clean.
func (e *Engine) UnblockActor(ctx context.Context, actorKey string) error {
	if e == nil || e.blocklist == nil {
		return ErrEngineNotReady
	}
	if actorKey == "" {
		return ErrMalformedInput
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if err := e.blocklist.Unblock(sctx, actorKey); err != nil {
		return storeErr(err)
	}
	_ = e.lockout.Reset(sctx, actorKey)

	e.metricInc(MetricManualUnblock)
	e.emit(ctx, LevelInfo, EventIPUnblockedManual, actorKey, nil)
	return nil
}

// ListBlocks returns the active block records in display form, newest first.
// Only truncated key prefixes are exposed.
func (e *Engine) ListBlocks(ctx context.Context) ([]BlockInfo, error) {
	if e == nil || e.blocklist == nil {
		return nil, ErrEngineNotReady
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	records, err := e.blocklist.List(sctx)
	if err != nil {
		return nil, storeErr(err)
	}

	infos := make([]BlockInfo, 0, len(records))
	for _, rec := range records {
		infos = append(infos, BlockInfo{
			KeyPrefix: ActorKeyPrefix(rec.ActorKey),
			Reason:    rec.Reason,
			CreatedAt: rec.CreatedAt,
			ExpiresAt: rec.ExpiresAt,
			Permanent: rec.Permanent(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})

	return infos, nil
}

func storeErr(err error) error {
	if errors.Is(err, blocklist.ErrUnavailable) {
		return ErrStoreUnavailable
	}
	return err
}
