package lektrico

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every error returned by a Device matches exactly
// one of them.
var (
	ErrConnection = errors.New("lektrico: connection error")
	ErrProtocol   = errors.New("lektrico: protocol error")
	ErrValidation = errors.New("lektrico: validation error")
)

// ConnectionError means the device could not be reached or answered with a
// failing HTTP status. Callers decide whether to retry.
type ConnectionError struct {
	Reason     string
	StatusCode int
	Err        error
}

func (e *ConnectionError) Error() string {
	msg := "lektrico: " + e.Reason
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// ProtocolError means the device answered but the answer could not be
// understood. ContentType and Body are kept for diagnostics when the failure
// came from the HTTP response itself.
type ProtocolError struct {
	Reason      string
	ContentType string
	Body        string
	Err         error
}

func (e *ProtocolError) Error() string {
	msg := "lektrico: " + e.Reason
	if e.ContentType != "" {
		msg += fmt.Sprintf(" (content-type %q)", e.ContentType)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// ValidationError means the caller passed an argument the client rejects
// before talking to the device.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lektrico: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func protocolErrorf(err error, format string, args ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...), Err: err}
}

func validationErrorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
