package nswire

import (
	"errors"

	"github.com/statecraft/nswire/assembly"
)

// APIError is the remote API's application-level error, re-exported from the
// engine so most callers never import assembly directly.
type APIError = assembly.APIError

// ErrNotFinalized mirrors assembly.ErrNotFinalized for the same reason.
var ErrNotFinalized = assembly.ErrNotFinalized

// StatusError reports a non-200 HTTP response whose body carried no
// protocol error tag.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return "nswire: unexpected response: " + e.Status }

// AsAPIError extracts an APIError from an error chain using errors.As.
func AsAPIError(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// AsStatusError extracts a StatusError from an error chain.
func AsStatusError(err error) (*StatusError, bool) {
	if err == nil {
		return nil, false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
