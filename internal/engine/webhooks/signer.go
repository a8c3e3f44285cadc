package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// SignatureHeader renders the delivery signature in the t=<ms>,s=<sig>
// form consumers verify against.
func SignatureHeader(timestampMs int64, signature string) string {
	return fmt.Sprintf("t=%d,s=%s", timestampMs, signature)
}
