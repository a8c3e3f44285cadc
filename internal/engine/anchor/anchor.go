package anchor

import (
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"time"
)

const hashDomain = "hash402.solana"

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// PayloadHash digests a raw transaction payload.
func PayloadHash(payload string) string {
	return sha256Hex(payload)
}

// TxHash402 is the domain-separated hash identifying a validated
// transaction across the API.
func TxHash402(wallet, payloadHash string) string {
	return sha256Hex(hashDomain + "|" + wallet + "|" + payloadHash)
}

// MockSignature is a deterministic stand-in for a Solana transaction
// signature, derived from the tx hash.
func MockSignature(txHash string) string {
	return sha256Hex(txHash)
}

// MockSlot returns a realistic-looking slot number.
func MockSlot() int64 {
	return 265019392 + rand.Int63n(10000)
}

func MockBlockTime() int64 {
	return time.Now().Unix()
}

// DerivePDA mocks program-derived-address derivation, truncated to the
// length of a Solana address.
func DerivePDA(txHash, programID string) string {
	return sha256Hex(programID + ":" + txHash)[:44]
}
