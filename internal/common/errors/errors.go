// Package errors defines the structured error kinds returned by the
// core data-plane packages (ringlog, store, orderbook, numa,
// fastchannel). All core operations return explicit error values; the
// core never panics on user input.
package errors

import (
	"fmt"
)

// Kind classifies the failure mode of a core operation.
type Kind string

const (
	// InvalidArgument covers malformed input: non-power-of-two sizes,
	// zero periods, negative prices, NaN prices, and similar.
	InvalidArgument Kind = "INVALID_ARGUMENT"
	// CapacityExceeded is raised when an append or push would exceed a
	// fixed storage limit.
	CapacityExceeded Kind = "CAPACITY_EXCEEDED"
	// BufferFull is raised when a ring log reservation would overlap
	// the reader cursor.
	BufferFull Kind = "BUFFER_FULL"
	// NotFound is raised when a book operation references a price
	// level that does not exist.
	NotFound Kind = "NOT_FOUND"
	// InsufficientSize is raised when a book level exists but holds
	// less size than requested.
	InsufficientSize Kind = "INSUFFICIENT_SIZE"
	// OutOfBounds is raised when an array index or range exceeds the
	// current length or capacity.
	OutOfBounds Kind = "OUT_OF_BOUNDS"
	// Unsupported is raised by NUMA primitives on platforms lacking
	// the underlying facility.
	Unsupported Kind = "UNSUPPORTED"
	// IoError wraps an underlying OS failure (log sync, topology read).
	IoError Kind = "IO_ERROR"
	// Disconnected is raised by a fast channel once all senders or
	// receivers have gone away.
	Disconnected Kind = "DISCONNECTED"
)

// Error is the structured error type returned by core operations. It
// always carries a Kind so callers can branch on failure class without
// string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches a Kind and message to an existing cause. Returns nil if
// err is nil, mirroring the teacher's WrapServiceError idiom.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...interface{}) *Error {
	return Wrap(err, kind, fmt.Sprintf(format, args...))
}

// Is reports whether err is, or wraps, an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// GetKind extracts the Kind from err's chain, walking Unwrap. Returns
// the empty Kind if err is nil or carries no *Error.
func GetKind(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ""
}
