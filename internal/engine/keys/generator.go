package keys

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	secretPrefix = "hsh402"

	// Number of random bytes behind each secret. 32 bytes keeps the
	// chance of a (prefix, hash) collision negligible even at the
	// bounded retry limit.
	secretEntropyBytes = 32

	// Hex chars of the random part exposed as the lookup prefix.
	prefixRandomLen = 8
)

// Generate produces a fresh API-key secret together with its lookup
// prefix and digest. The secret looks like hsh402_<64 hex chars>; the
// prefix is the hsh402_ tag plus the first 8 hex chars, enough to
// identify a key in listings without revealing it.
func Generate() (secret, prefix, digest string, err error) {
	buf := make([]byte, secretEntropyBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", err
	}

	random := hex.EncodeToString(buf)
	secret = secretPrefix + "_" + random
	prefix = secretPrefix + "_" + random[:prefixRandomLen]
	digest = Hash(secret)
	return secret, prefix, digest, nil
}
