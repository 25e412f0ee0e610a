package adminapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized indicates the admin token was rejected
var ErrUnauthorized = errors.New("admin API rejected credentials")

// ErrMalformedResponse indicates a 2xx response whose body could not be decoded
var ErrMalformedResponse = errors.New("malformed admin API response")

// StatusError represents any non-2xx answer from the admin API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("admin API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("admin API error: HTTP %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether a later attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
