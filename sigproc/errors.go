package sigproc

import "errors"

// Common processing errors.
var (
	// ErrUnknownKind is returned for an unrecognized background,
	// normalization or peak-shape kind.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrShortInput is returned when input arrays are too short, differ in
	// length, or are not strictly increasing where required.
	ErrShortInput = errors.New("invalid input arrays")
)
