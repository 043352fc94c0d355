package refine

import (
	"errors"
	"fmt"
)

// APIError is a remote image-editing failure carrying the HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("image editing API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether re-attempting the failed call is expected to
// plausibly succeed: rate limiting (429) or any transient server error (5xx).
// Everything else, including malformed responses, is fatal.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 429 || (apiErr.StatusCode >= 500 && apiErr.StatusCode <= 599)
}
