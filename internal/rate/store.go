package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore is the minimal contract shared by the in-memory and Redis
// counter backends. Keys are opaque; TTL semantics are fixed-window: the
// window opens on the first increment and the counter vanishes when it ends.
type CounterStore interface {
	// Incr adds one to the counter, opening a window of the given ttl when
	// the counter did not exist, and returns the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Get returns the current value, zero when absent.
	Get(ctx context.Context, key string) (int64, error)
	// Remaining reports how long until the counter's window ends, zero when
	// the key is absent or has no window.
	Remaining(ctx context.Context, key string) (time.Duration, error)
	// Del removes counters. Deleting an absent key is not an error.
	Del(ctx context.Context, keys ...string) error
}

/*
====================================
REDIS STORE
====================================
*/

// RedisStore shares counters across instances via atomic INCR+EXPIRE.
type RedisStore struct {
	redis redis.UniversalClient
}

func NewRedisStore(redisClient redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: redisClient}
}

func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := s.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return count, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	count, err := s.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}

func (s *RedisStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.redis.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

/*
====================================
MEMORY STORE
====================================
*/

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore keeps counters in a process-local map guarded by one mutex.
// It is an injected object, never package-global state, so tests can run with
// isolated stores. Counters do not survive a restart, and concurrent requests
// for one key may race between Get and Incr; undercounting an attacker is an
// accepted risk of the first-line limiter.
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]memoryEntry
	now func() time.Time
}

// NewMemoryStore creates an in-process counter store. A nil now defaults to
// time.Now; tests inject a fake clock to step through windows.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		m:   make(map[string]memoryEntry),
		now: now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.m[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = memoryEntry{expiresAt: now.Add(ttl)}
	}
	entry.count++
	s.m[key] = entry

	return entry.count, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.m[key]
	if !ok {
		return 0, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.m, key)
		return 0, nil
	}
	return entry.count, nil
}

func (s *MemoryStore) Remaining(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.m[key]
	if !ok {
		return 0, nil
	}
	left := entry.expiresAt.Sub(s.now())
	if left < 0 {
		return 0, nil
	}
	return left, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.m, key)
	}
	return nil
}
