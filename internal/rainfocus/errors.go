package rainfocus

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingTotal indicates a search response without a usable total, so
// pagination cannot be bounded.
var ErrMissingTotal = errors.New("search response does not report a total")

// ErrNoProgress indicates a page that would not advance the cursor.
var ErrNoProgress = errors.New("search page did not advance the cursor")

// ErrMissingProfileID indicates the API profile id was not configured.
var ErrMissingProfileID = errors.New("rainfocus API profile id is not configured")

// TransientFetchError is a transport failure or non-2xx response for a
// single request. StatusCode is zero for transport failures.
type TransientFetchError struct {
	From       int
	StatusCode int
	Body       string
	Err        error
}

func (e *TransientFetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch page at offset %d: %v", e.From, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("fetch page at offset %d: HTTP %d: %s", e.From, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch page at offset %d: HTTP %d", e.From, e.StatusCode)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request may succeed.
func (e *TransientFetchError) Retryable() bool {
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode >= http.StatusInternalServerError:
		return true
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}

func isRetryableError(err error) bool {
	var fetchErr *TransientFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Retryable()
	}
	return false
}
