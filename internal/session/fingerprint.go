package session

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprint hashes exact trimmed message text into a fixed-size cache key.
//
// This is exact-match identity, not semantic similarity; two texts collide
// only when they are byte-identical.
func fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}
