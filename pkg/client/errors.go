package client

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents a non-2xx HTTP response from the API.
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d on %s", e.Status, e.Endpoint)
	}
	return fmt.Sprintf("HTTP %d on %s: %s", e.Status, e.Endpoint, e.Message)
}

// IsClientError reports whether the response was a 4xx. Client errors
// are never retried.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// NetworkError represents a transport-level failure (DNS, refused
// connection, reset) before any HTTP response arrived.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError represents a client-side deadline exceeded while waiting
// for a response. Timeouts surface immediately and are never retried.
type TimeoutError struct {
	Endpoint string
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.Endpoint, e.Timeout)
}

// IsStatus returns true if err (or any wrapped error) is an APIError
// with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == code
	}
	return false
}

// IsTimeout returns true if err (or any wrapped error) is a TimeoutError.
func IsTimeout(err error) bool {
	var tErr *TimeoutError
	return errors.As(err, &tErr)
}
