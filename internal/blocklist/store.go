package blocklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrUnavailable indicates the blocklist backend is unreachable. The
	// membership-check caller fails open on it; write paths surface it.
	ErrUnavailable = errors.New("blocklist backend unavailable")
)

// Record is a durable block entry. A nil ExpiresAt means permanent.
type Record struct {
	ActorKey  string     `json:"actor_key"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Permanent reports whether the record never expires.
func (r Record) Permanent() bool {
	return r.ExpiresAt == nil
}

// Store keeps block records in Redis, one key per actor. Temporary blocks are
// written with a matching key TTL so the store itself enforces expiry;
// permanent blocks have no TTL and survive until an explicit unblock.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore creates a blocklist store. A nil now defaults to time.Now.
func NewStore(redisClient redis.UniversalClient, prefix string, now func() time.Time) *Store {
	if prefix == "" {
		prefix = "agb"
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		now:    now,
	}
}

func (s *Store) key(actorKey string) string {
	return s.prefix + ":" + actorKey
}

// IsBlocked reports whether the actor has an active block. A record whose
// expiry is already in the past counts as absent even if the key still
// exists, mirroring an `expires_at IS NULL OR expires_at > now` filter.
func (s *Store) IsBlocked(ctx context.Context, actorKey string) (bool, error) {
	rec, err := s.Get(ctx, actorKey)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Get returns the active record for an actor, or nil when none exists.
func (s *Store) Get(ctx context.Context, actorKey string) (*Record, error) {
	raw, err := s.redis.Get(ctx, s.key(actorKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt record: %v", ErrUnavailable, err)
	}
	if rec.ExpiresAt != nil && !rec.ExpiresAt.After(s.now()) {
		return nil, nil
	}

	return &rec, nil
}

// Block writes a record. Re-blocking an already blocked actor overwrites the
// previous record.
func (s *Store) Block(ctx context.Context, rec Record) error {
	if rec.ActorKey == "" {
		return errors.New("empty actor key")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if rec.ExpiresAt != nil {
		ttl = rec.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return errors.New("block expiry already in the past")
		}
	}

	// ttl of zero means no expiry, which is exactly the permanent case.
	if err := s.redis.Set(ctx, s.key(rec.ActorKey), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Unblock removes an actor's record. Removing an absent record is a no-op.
func (s *Store) Unblock(ctx context.Context, actorKey string) error {
	if err := s.redis.Del(ctx, s.key(actorKey)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// List returns all active records, scanning the key prefix. Expired records
// that have not yet been evicted are filtered out.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var (
		records []Record
		cursor  uint64
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		for _, key := range keys {
			raw, err := s.redis.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}

			var rec Record
			if err := json.Unmarshal(raw, &rec); err != nil {
				continue
			}
			if rec.ExpiresAt != nil && !rec.ExpiresAt.After(s.now()) {
				continue
			}
			records = append(records, rec)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return records, nil
}
