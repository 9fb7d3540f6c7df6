// Package response writes JSON bodies and the API's error envelope.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeAuth          = "AUTH_ERROR"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left but to log.
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes an ErrorResponse.
func Error(w http.ResponseWriter, status int, message, code, details string) {
	JSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// RateLimit writes a 429 with the RATE_LIMIT_EXCEEDED code.
func RateLimit(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too many requests. Try again later.", CodeRateLimit, "")
}
