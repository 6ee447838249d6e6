package aot

import (
	"errors"
	"fmt"
	"net/http"
)

// Static errors for err113 compliance.
var (
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrInvalidMergeMode  = errors.New("invalid merge mode")
	ErrInvalidFilter     = errors.New("invalid filter expression")
	ErrHTTPStatus        = errors.New("unexpected HTTP status")
	ErrDecode            = errors.New("response is not valid JSON")
	ErrConfigRequired    = errors.New("config is required")
	ErrHostnameRequired  = errors.New("hostname is required")
	ErrMaxPagesReached   = errors.New("maximum number of pages reached")
	ErrNoMoreItems       = errors.New("no more items")
	ErrEmptyResourceName = errors.New("resource identifier is required")
)

// TypeMismatchError is returned when And/Or style merging is attempted with a
// value that is not a filter set.
type TypeMismatchError struct {
	Op  string
	Got string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot %s %s with a filter set", e.Op, e.Got)
}

// Unwrap allows errors.Is(err, ErrTypeMismatch).
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// HTTPError represents a non-success response. The body is kept raw since it
// is never decoded.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       []byte
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("GET %s: %s", e.URL, status)
}

// Unwrap allows errors.Is(err, ErrHTTPStatus).
func (e *HTTPError) Unwrap() error {
	return ErrHTTPStatus
}

// Retryable reports whether the status is worth retrying (429 and 5xx except 501).
func (e *HTTPError) Retryable() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}

	return e.StatusCode >= http.StatusInternalServerError && e.StatusCode != http.StatusNotImplemented
}

// DecodeError wraps a JSON decoding failure of a response body.
type DecodeError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, ErrDecode).
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsRetryable checks if the error is a response a caller may want to retry.
func IsRetryable(err error) bool {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}

	return false
}

// IsTypeMismatch checks if the error came from merging a non filter set.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}
