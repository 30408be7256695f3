// Package rate implements the fixed-window counters behind login throttling
// and generic per-source request limiting.
//
// Counters live behind the [CounterStore] interface. The default
// [MemoryStore] keeps them in process memory: cheap, best-effort, and lost on
// restart. [RedisStore] shares one budget across instances using atomic
// INCR+EXPIRE. Neither is a security boundary on its own; durable enforcement
// belongs to the blocklist.
package rate
