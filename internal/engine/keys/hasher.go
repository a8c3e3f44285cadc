package keys

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash is the one-way digest used for API-key secrets and account
// passwords. Deterministic and fixed-length so digests can serve as
// lookup keys; never reversible.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
