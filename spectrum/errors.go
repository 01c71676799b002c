package spectrum

import "errors"

// Validation and identity errors raised synchronously by constructors and
// setters. They are never retried and always surface to the caller unchanged.
var (
	// ErrMissingField is returned when a required construction input is
	// absent.
	ErrMissingField = errors.New("required field missing")

	// ErrShapeMismatch is returned for malformed measurement arrays.
	ErrShapeMismatch = errors.New("array shapes do not match")

	// ErrUnknownType is returned for an unrecognized enum value
	// (background, normalization or peak shape).
	ErrUnknownType = errors.New("unknown type")

	// ErrOutOfRange is returned for numeric values outside their valid
	// range: background bounds beyond the displayed energy range, a zero
	// normalization divisor or a non-finite calibration.
	ErrOutOfRange = errors.New("value out of range")

	// ErrOddBoundCount is returned when background bounds are not pairwise.
	ErrOddBoundCount = errors.New("background bounds must be pairwise")

	// ErrDuplicatePeak is returned when adding a peak under an existing name.
	ErrDuplicatePeak = errors.New("peak already exists")

	// ErrUnknownPeak is returned when removing a peak that does not exist.
	ErrUnknownPeak = errors.New("peak does not exist")

	// ErrUnknownSpectrum is returned when removing a spectrum the container
	// does not hold.
	ErrUnknownSpectrum = errors.New("spectrum not in container")

	// ErrDuplicateSpectrum is returned when adding a spectrum twice.
	ErrDuplicateSpectrum = errors.New("spectrum already in container")

	// ErrInvalidConstraint is returned for constraint arguments that are
	// not real numbers or name no known parameter.
	ErrInvalidConstraint = errors.New("invalid constraint")

	// ErrInvalidExpression is returned when a constraint expression cannot
	// be parsed or leaves the parameter set unresolvable. The parameter is
	// rolled back before the error surfaces.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrSelfReference is returned when a peak's own name appears inside
	// one of its constraint expressions.
	ErrSelfReference = errors.New("own name inside expression")
)
