package amadeus

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrAuth is returned when the provider rejects our credentials or token.
var ErrAuth = errors.New("amadeus: authentication failed")

// APIError is a non-2xx provider response other than 401.
type APIError struct {
	StatusCode int
	Endpoint   string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("amadeus: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("amadeus: %s returned status %d", e.Endpoint, e.StatusCode)
}

// Status returns the provider status, or 500 when none was reported.
func (e *APIError) Status() int {
	if e.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

type errorPayload struct {
	Errors []struct {
		Status int    `json:"status"`
		Code   int    `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// ExtractDetail pulls errors[0].detail (or its title) out of a provider error
// body. It returns "" when the body does not have that shape.
func ExtractDetail(body []byte) string {
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil || len(p.Errors) == 0 {
		return ""
	}
	if d := strings.TrimSpace(p.Errors[0].Detail); d != "" {
		return d
	}
	return strings.TrimSpace(p.Errors[0].Title)
}

func newAPIError(endpoint string, status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Endpoint:   endpoint,
		Detail:     ExtractDetail(body),
	}
}
