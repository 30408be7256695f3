// Package adminguard provides the authentication and abuse-mitigation core for
// a single-operator admin surface: credential verification across multiple
// stored-hash formats, stateless HS256 session tokens, an optional TOTP second
// factor, per-IP rate limiting with automatic promotion to durable blocks, and
// a blocklist gate consulted before every privileged operation.
//
// The package is designed for concurrent, stateless request handlers: Engine
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build], and no method holds a process-wide lock around
// cryptographic work.
//
// # Architecture boundaries
//
// adminguard is the public surface. It exposes [Engine], [Builder], [Config],
// the audit sink types, and value types such as [LoginResult] and [BlockInfo].
// Counter stores, the blocklist store, and the lockout tracker live under
// internal/ and are never exported.
//
// # Enforcement model
//
// The in-process failed-attempt counters are a best-effort first line of
// defense; they do not survive process restarts and may undercount under
// concurrent load. The only cross-instance-consistent enforcement mechanism is
// the durable block record kept in Redis, checked by the blocklist gate on
// every privileged request. Blocklist reads fail open (an unreachable store
// must not lock out legitimate traffic); credential checks fail closed.
package adminguard
