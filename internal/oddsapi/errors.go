package oddsapi

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when the client is built without an API key.
	ErrMissingAPIKey = errors.New("odds api: missing API key")

	// ErrUnauthorized is returned when the upstream rejects the API key.
	ErrUnauthorized = errors.New("odds api: unauthorized")

	// ErrQuotaExceeded is returned when the upstream request quota is exhausted.
	ErrQuotaExceeded = errors.New("odds api: request quota exceeded")
)

// APIError represents a non-2xx response from the odds API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("odds api: unexpected status %d: %s", e.StatusCode, e.Body)
}
