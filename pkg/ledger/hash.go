package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent computes the hex-encoded SHA-256 hash of a canonical
// payload. Unlike request-body hashing, ledger payloads are small and
// hashed in full; truncation would silently weaken tamper evidence.
func HashContent(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
