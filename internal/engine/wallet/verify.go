package wallet

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// Verify checks that signature is a valid ed25519 signature by the
// wallet over message. Addresses and signatures are base58, the Solana
// convention: the address is the 32-byte public key, the signature is
// 64 bytes. Any decoding defect counts as an invalid signature.
func Verify(address, signature, message string) bool {
	pub, err := base58.Decode(address)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}

	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}

// ShortAddress renders a truncated display form, e.g. "4Nd1...pQrs".
func ShortAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}
