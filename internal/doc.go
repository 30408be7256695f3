// Package internal and its subpackages hold adminguard's non-exported
// machinery: counter stores and limiters (internal/rate,
// internal/limiters) and the durable blocklist store (internal/blocklist).
// Nothing under internal/ is part of the public API.
package internal
