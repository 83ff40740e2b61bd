package query

import "errors"

var (
	// ErrQueryTypeAlreadyDefined is recorded when a builder that already has
	// a statement type is asked to become another one.
	ErrQueryTypeAlreadyDefined = errors.New("query: statement type already defined")
	// ErrUnsupportedCast is returned by CastAs for unknown target types.
	ErrUnsupportedCast = errors.New("query: unsupported cast type")
	// ErrBindingMismatch is returned when an array binding gets a types list
	// whose length differs from the number of values.
	ErrBindingMismatch = errors.New("query: number of types does not match number of values")
	// ErrInvalidParameterType marks a binding declared with an unknown type.
	ErrInvalidParameterType = errors.New("query: invalid parameter type")
)
