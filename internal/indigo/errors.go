package indigo

import "errors"

// Domain-specific errors for Indigo REST operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrClosed is returned when a request is submitted after Close().
	ErrClosed = errors.New("indigo: client closed")

	// ErrNotStarted is returned when a request is submitted before Start().
	ErrNotStarted = errors.New("indigo: client not started")

	// ErrRedirectRefused is returned when the server attempts to redirect a
	// request. Redirects are never followed.
	ErrRedirectRefused = errors.New("indigo: server redirect refused")

	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("indigo: unexpected response status")

	// ErrMalformedResponse is returned when a response body cannot be parsed
	// as JSON, even after the known-bug repair pass.
	ErrMalformedResponse = errors.New("indigo: malformed response body")
)
