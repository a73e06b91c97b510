package domain

import (
	"errors"
	"fmt"
)

// ErrTransport wraps a network or connectivity failure.
type ErrTransport struct {
	Op  string
	Err error
}

func (e ErrTransport) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e ErrTransport) Unwrap() error {
	return e.Err
}

// ErrInvalidResponse is returned for a non-2xx status or an empty body.
type ErrInvalidResponse struct {
	Status int
}

func (e ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid response (status %d)", e.Status)
}

// ErrInvalidJSON is returned when a body is not a JSON object or lacks required fields.
type ErrInvalidJSON struct {
	Reason string
}

func (e ErrInvalidJSON) Error() string {
	return "invalid json: " + e.Reason
}

// ErrInvalidPayload is returned when the remote config document is not an object.
type ErrInvalidPayload struct{}

func (e ErrInvalidPayload) Error() string {
	return "remote config payload is not an object"
}

// ErrMalformedURL is returned when an internally built URL cannot be parsed.
type ErrMalformedURL struct {
	URL string
	Err error
}

func (e ErrMalformedURL) Error() string {
	return fmt.Sprintf("malformed url %q: %v", e.URL, e.Err)
}

func (e ErrMalformedURL) Unwrap() error {
	return e.Err
}

// ErrAlreadyRouted is returned when the screen router is asked to switch twice.
var ErrAlreadyRouted = errors.New("screen already routed")

// ErrNoCredential is returned when a push token is requested without a push credential.
var ErrNoCredential = errors.New("push credential not available")

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")
