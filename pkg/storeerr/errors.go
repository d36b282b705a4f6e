// Package storeerr defines the error vocabulary shared by the cache and lock
// components. Every error carries a kind, matched with errors.Is, and a
// machine-readable code.
package storeerr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrConfiguration marks missing or unresolvable connection configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrState marks an operation attempted while the component is not open.
	ErrState = errors.New("invalid state")

	// ErrTransport marks a network or store failure.
	ErrTransport = errors.New("transport error")

	// ErrAcquisitionTimeout marks a lock wait budget that ran out.
	// It is recoverable: the caller may retry.
	ErrAcquisitionTimeout = errors.New("lock acquisition timed out")

	// ErrSerialization marks a value that could not be encoded or decoded.
	ErrSerialization = errors.New("serialization error")
)

// Error codes.
const (
	CodeNoConnection  = "NO_CONNECTION"
	CodeCannotResolve = "CANNOT_RESOLVE"
	CodeNoPrefix      = "NO_PREFIX"
	CodeNotOpened     = "NOT_OPENED"
	CodeConnectFailed = "CONNECT_FAILED"
	CodeCloseFailed   = "CLOSE_FAILED"
	CodeCommandFailed = "COMMAND_FAILED"
	CodeLockTimeout   = "LOCK_TIMEOUT"
	CodeEncodeFailed  = "ENCODE_FAILED"
	CodeDecodeFailed  = "DECODE_FAILED"
)

// Error is a component error. It unwraps to both its kind and its cause.
type Error struct {
	Kind    error
	Code    string
	TraceID string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s [%s]", e.Kind, e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.TraceID != "" {
		msg += " (trace_id=" + e.TraceID + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap exposes the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Cause}
}

func newError(kind error, traceID, code, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		TraceID: traceID,
		Message: message,
		Cause:   cause,
	}
}

// Configuration returns an ErrConfiguration error.
func Configuration(traceID, code, message string, cause error) *Error {
	return newError(ErrConfiguration, traceID, code, message, cause)
}

// State returns an ErrState error.
func State(traceID, code, message string) *Error {
	return newError(ErrState, traceID, code, message, nil)
}

// Transport returns an ErrTransport error.
func Transport(traceID, code, message string, cause error) *Error {
	return newError(ErrTransport, traceID, code, message, cause)
}

// AcquisitionTimeout returns an ErrAcquisitionTimeout error.
func AcquisitionTimeout(traceID, message string) *Error {
	return newError(ErrAcquisitionTimeout, traceID, CodeLockTimeout, message, nil)
}

// Serialization returns an ErrSerialization error.
func Serialization(traceID, code, message string, cause error) *Error {
	return newError(ErrSerialization, traceID, code, message, cause)
}

// NotOpened is the state error returned by every data operation on a
// component that is not open.
func NotOpened(traceID string) *Error {
	return State(traceID, CodeNotOpened, "component is not opened")
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}
