package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
)

func testKeypair(t *testing.T) (address string, priv ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return base58.Encode(pub), priv
}

func TestVerify(t *testing.T) {
	address, priv := testKeypair(t)
	message := "Sign in to Hash402\nNonce: 42"
	signature := base58.Encode(ed25519.Sign(priv, []byte(message)))

	if !Verify(address, signature, message) {
		t.Error("Valid signature rejected")
	}
	if Verify(address, signature, "a different message") {
		t.Error("Signature accepted for the wrong message")
	}

	otherAddress, _ := testKeypair(t)
	if Verify(otherAddress, signature, message) {
		t.Error("Signature accepted for the wrong wallet")
	}
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	address, priv := testKeypair(t)
	message := "hello"
	signature := base58.Encode(ed25519.Sign(priv, []byte(message)))

	cases := []struct {
		name      string
		address   string
		signature string
	}{
		{"bad base58 address", "0OIl-not-base58", signature},
		{"short address", base58.Encode([]byte{1, 2, 3}), signature},
		{"bad base58 signature", address, "0OIl-not-base58"},
		{"short signature", address, base58.Encode([]byte{1, 2, 3})},
		{"empty address", "", signature},
		{"empty signature", address, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Verify(tc.address, tc.signature, message) {
				t.Error("Malformed input accepted")
			}
		})
	}
}

func TestShortAddress(t *testing.T) {
	if got := ShortAddress("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"); got != "9WzD...AWWM" {
		t.Errorf("ShortAddress = %s", got)
	}
	if got := ShortAddress("short"); got != "short" {
		t.Errorf("Short input must pass through, got %s", got)
	}
}
