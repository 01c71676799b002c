package event

import "errors"

// Common substrate errors.
var (
	// ErrUnknownSignal is returned when connecting to a signal the
	// observable never declared.
	ErrUnknownSignal = errors.New("unknown signal")
)
