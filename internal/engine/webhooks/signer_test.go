package webhooks

import "testing"

func TestSign(t *testing.T) {
	got := Sign("secret", []byte("payload"))
	want := "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4"
	if got != want {
		t.Errorf("Sign = %s, want %s", got, want)
	}

	if Sign("other", []byte("payload")) == got {
		t.Error("Signature must depend on the secret")
	}
}

func TestSignatureHeader(t *testing.T) {
	got := SignatureHeader(1700000000000, "abc123")
	if got != "t=1700000000000,s=abc123" {
		t.Errorf("SignatureHeader = %s", got)
	}
}
