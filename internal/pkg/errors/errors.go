package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the object under the top-level "error" key. Optional
// fields like request_id and retry_after live inside it rather than in
// a separate details map.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

const (
	ErrCodeInvalidBody       = "INVALID_BODY"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAnchorNotFound    = "ANCHOR_NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message, requestID string) {
	write(w, status, ErrorBody{Code: code, Message: message, RequestID: requestID})
}

// WriteRateLimited is the 429 body: same envelope plus retry_after so
// clients can back off without parsing headers.
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	write(w, http.StatusTooManyRequests, ErrorBody{
		Code:       ErrCodeRateLimitExceeded,
		Message:    "Too many requests",
		RetryAfter: retryAfterSeconds,
	})
}

func write(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: body})
}
