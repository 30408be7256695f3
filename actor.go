package adminguard

import (
	"crypto/sha256"
	"encoding/hex"
)

const actorKeyPrefixLen = 12

// ActorKey derives the stable identifier used to key rate-limit counters and
// block records for a client IP. The hash is one-way: enforcement state never
// stores the raw address.
func ActorKey(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// ActorKeyPrefix truncates an actor key for display in audit events and
// blocklist listings. The full hash is never handed to a UI.
func ActorKeyPrefix(actorKey string) string {
	if len(actorKey) <= actorKeyPrefixLen {
		return actorKey
	}
	return actorKey[:actorKeyPrefixLen]
}
