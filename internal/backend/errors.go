package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized   = errors.New("backend rejected credentials")
	ErrInvalidReply   = errors.New("backend reply could not be parsed")
	ErrUnavailable    = errors.New("backend unavailable")
	ErrMissingBaseURL = errors.New("backend base url is required")
)

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}
