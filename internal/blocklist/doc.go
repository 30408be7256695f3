// Package blocklist stores durable block records in Redis. It is the only
// cross-instance-consistent enforcement state in the system: in-memory
// counters are best-effort, block records are authoritative.
//
// Membership reads fail OPEN by policy — a storage outage must not lock
// legitimate traffic out of the admin surface. Callers log the error and
// proceed. This is the documented inverse of the credential path, which fails
// closed.
package blocklist
