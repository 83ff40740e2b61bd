package database

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Driver or Statement matches exactly
// one of them with errors.Is.
var (
	// ErrConnectionFailure is returned when a connection cannot be opened or
	// re-opened.
	ErrConnectionFailure = errors.New("connection failure")

	// ErrPrepareFailure is returned when the server rejects statement text.
	ErrPrepareFailure = errors.New("prepare failure")

	// ErrExecutionFailure is returned when a prepared statement fails to run.
	ErrExecutionFailure = errors.New("execution failure")

	// ErrUnsupportedAdapter is returned for driver names nothing registered.
	ErrUnsupportedAdapter = errors.New("unsupported adapter")

	// ErrInvalidArgument is returned for unusable arguments, such as a query
	// of the wrong type or a parameter with an unknown type.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStatementClosed is returned when a closed statement is used.
	ErrStatementClosed = errors.New("statement closed")

	// ErrNotConnected is returned when an operation needs a live connection
	// and the driver has none.
	ErrNotConnected = errors.New("not connected")
)

// Error carries the failing SQL and the native error code and message next
// to one of the error kinds.
type Error struct {
	Kind    error
	Query   string
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	switch {
	case e.Code != "" && e.Message != "":
		msg += fmt.Sprintf(": [%s] %s", e.Code, e.Message)
	case e.Message != "":
		msg += ": " + e.Message
	case e.Cause != nil:
		msg += ": " + e.Cause.Error()
	}
	if e.Query != "" {
		msg += "\nSQL: " + e.Query
	}
	return msg
}

// Unwrap returns the native error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// IsConnectionFailure reports whether err is a connection failure.
func IsConnectionFailure(err error) bool {
	return errors.Is(err, ErrConnectionFailure)
}

// IsExecutionFailure reports whether err is an execution failure.
func IsExecutionFailure(err error) bool {
	return errors.Is(err, ErrExecutionFailure)
}

func invalidArgument(format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}
