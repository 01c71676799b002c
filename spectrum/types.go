// Package spectrum implements the reactive domain model of the spectroscopy
// tool: a container of measured spectra, their derived calibration,
// normalization and background state, and the multi-peak fit model layered on
// top. Every mutation recomputes the affected derived arrays in-line and emits
// a typed change event; child events propagate upward through model, spectrum
// and container so one subscription at the container observes everything.
package spectrum

import "github.com/pesolab/pespec/event"

// Signals emitted by the domain entities. Parents declare their children's
// signals too, so propagated events reach subscribers at any level.
const (
	SignalChangedSpectra  event.Signal = "changed-spectra"
	SignalChangedSpectrum event.Signal = "changed-spectrum"
	SignalChangedMetadata event.Signal = "changed-metadata"
	SignalChangedFit      event.Signal = "changed-fit"
	SignalChangedPeak     event.Signal = "changed-peak"
)

// BackgroundType selects the background subtraction method.
type BackgroundType string

// Recognized background methods.
const (
	BackgroundNone     BackgroundType = "none"
	BackgroundLinear   BackgroundType = "linear"
	BackgroundShirley  BackgroundType = "shirley"
	BackgroundTougaard BackgroundType = "tougaard"
)

// IsValid reports whether the background type is recognized.
func (b BackgroundType) IsValid() bool {
	switch b {
	case BackgroundNone, BackgroundLinear, BackgroundShirley, BackgroundTougaard:
		return true
	}
	return false
}

// NormalizationType selects the intensity normalization policy.
type NormalizationType string

// Recognized normalization policies.
const (
	NormalizationNone       NormalizationType = "none"
	NormalizationManual     NormalizationType = "manual"
	NormalizationHighest    NormalizationType = "highest"
	NormalizationHighEnergy NormalizationType = "high_energy"
	NormalizationLowEnergy  NormalizationType = "low_energy"
)

// IsValid reports whether the normalization type is recognized.
func (n NormalizationType) IsValid() bool {
	switch n {
	case NormalizationNone, NormalizationManual, NormalizationHighest,
		NormalizationHighEnergy, NormalizationLowEnergy:
		return true
	}
	return false
}

// PeakShape names a peak basis function. Only the pseudo-Voigt is implemented;
// the remaining shapes are reserved.
type PeakShape string

// Peak shapes.
const (
	ShapePseudoVoigt   PeakShape = "PseudoVoigt"
	ShapeDoniachSunjic PeakShape = "Doniach Sunjic"
	ShapeVoigt         PeakShape = "Voigt"
)
