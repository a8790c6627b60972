package services

import (
	"errors"
	"fmt"
)

// ErrTransport matches any *TransportError with errors.Is.
var ErrTransport = errors.New("transport failure")

// TransportError means the upstream provider could not be reached or answered
// with a failure status and no usable body.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Provider + " transport failure"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Custom errors
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// UnavailableError reports a feature that is not configured on this server.
type UnavailableError struct{ Message string }

func (e *UnavailableError) Error() string { return e.Message }
