package fit

import "errors"

// Common fitting errors.
var (
	// ErrUnknownParam is returned when a model needs a parameter the set
	// does not contain.
	ErrUnknownParam = errors.New("unknown parameter")

	// ErrBadExpression is returned for expressions that fail to parse or
	// use unsupported syntax.
	ErrBadExpression = errors.New("invalid expression")

	// ErrUnresolvable is returned when the parameter set cannot be
	// evaluated: an expression references a missing name, forms a cycle, or
	// fails numerically.
	ErrUnresolvable = errors.New("unresolvable parameter set")
)
