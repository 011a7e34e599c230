package chat

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrorUpstreamAuth       ErrorCode = "UPSTREAM_AUTH"
	ErrorUpstreamRateLimit  ErrorCode = "UPSTREAM_RATE_LIMITED"
	ErrorUpstreamBadRequest ErrorCode = "UPSTREAM_BAD_REQUEST"
	ErrorUpstreamTimeout    ErrorCode = "UPSTREAM_TIMEOUT"
	ErrorUpstream           ErrorCode = "UPSTREAM_ERROR"
	ErrorStorage            ErrorCode = "STORAGE_ERROR"
	ErrorInternal           ErrorCode = "INTERNAL_ERROR"
)

// Error is the classified failure surfaced by the reply service. Reason
// is a stable machine-readable tag; Err carries the provider or storage
// cause and is exposed to clients only in development mode.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("chat: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("chat: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatus maps the error class onto the API's status contract:
// validation 400, everything provider- or server-side 500.
func (e *Error) HTTPStatus() int {
	if e != nil && e.Code == ErrorInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// SafeMessage is the user-facing text for the failure. It never carries
// provider bodies, file paths, or stack detail.
func (e *Error) SafeMessage() string {
	if e == nil {
		return ""
	}
	switch e.Code {
	case ErrorInvalidInput:
		switch e.Reason {
		case "empty_message":
			return "Message is required"
		case "missing_role":
			return "Role is required"
		}
		return "Invalid request"
	case ErrorUpstreamAuth:
		return "Invalid API configuration"
	case ErrorUpstreamRateLimit:
		return "Service temporarily unavailable"
	case ErrorUpstreamBadRequest:
		return "Invalid request"
	case ErrorUpstreamTimeout:
		return "The assistant took too long to respond"
	case ErrorUpstream:
		return "Failed to get response from AI"
	case ErrorStorage:
		return "Failed to save conversation"
	default:
		return "Something went wrong"
	}
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
