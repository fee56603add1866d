package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrNetworkFailure    = errors.New("network failure")
	ErrAuthRequired      = errors.New("authentication required")
	ErrDecodeFailure     = errors.New("decode failure")
	ErrStorageFailure    = errors.New("storage failure")
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrStaleResult       = errors.New("result superseded by a newer query")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// APIError is a non-2xx answer from the backend. Message is the server-provided text, if any.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthRequired:
		return e.StatusCode == 401 || e.StatusCode == 403
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrRateLimitExceeded:
		return e.StatusCode == 429
	}
	return false
}

// UserMessage picks the text shown to the user: the server message verbatim if present,
// the validation message for input gaps, otherwise the fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	var vErr ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return fallback
}
