package spectrum

import (
	"fmt"
	"math"
	"sort"

	"github.com/pesolab/pespec/event"
	"github.com/pesolab/pespec/sigproc"
)

// Spectrum holds one measured dataset and its derived state. Raw energy and
// intensity are fixed at construction (reordered to increasing energy and
// resampled to an equidistant grid); calibration, normalization and background
// are mutable and every change recomputes the dependent arrays before a single
// tagged changed-spectrum event is emitted.
//
// Background bounds are stored in raw (uncalibrated) energy space so they stay
// fixed to spectral features when the calibration changes; all accessors
// return displayed values.
type Spectrum struct {
	*event.Observable

	energy    []float64 // raw, strictly increasing, equidistant
	intensity []float64 // raw

	background       []float64 // raw space
	backgroundType   BackgroundType
	backgroundBounds []float64 // raw space, ascending

	energyCalibration    float64
	normalizationType    NormalizationType
	normalizationDivisor float64
	normalizationEnergy  float64
	hasNormEnergy        bool

	meta  *Meta
	model *Model
}

// New constructs a spectrum from raw measurement arrays and metadata. energy
// and intensity are required, must be one-dimensional and equal-length; meta
// must carry "name" and "filename". The arrays are copied, reordered to
// increasing energy and resampled onto an equidistant grid before storage.
func New(energy, intensity []float64, meta map[string]any) (*Spectrum, error) {
	if len(energy) == 0 || len(intensity) == 0 {
		return nil, fmt.Errorf("%w: energy and intensity", ErrMissingField)
	}
	if len(energy) != len(intensity) {
		return nil, fmt.Errorf("%w: energy has %d samples, intensity %d",
			ErrShapeMismatch, len(energy), len(intensity))
	}

	e, in := sigproc.MakeIncreasing(energy, intensity)
	e, in, err := sigproc.MakeEquidistant(e, in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}

	m, err := NewMeta(meta)
	if err != nil {
		return nil, err
	}

	s := &Spectrum{
		energy:               e,
		intensity:            in,
		background:           make([]float64, len(e)),
		backgroundType:       BackgroundNone,
		normalizationType:    NormalizationNone,
		normalizationDivisor: 1.0,
		meta:                 m,
	}
	s.Observable = event.NewObservable(s,
		SignalChangedSpectrum, SignalChangedMetadata, SignalChangedFit, SignalChangedPeak)
	s.model = newModel(s)

	// Child mutations surface on the spectrum itself.
	if _, err := s.Propagate(m.Observable, SignalChangedMetadata); err != nil {
		return nil, err
	}
	for _, signal := range []event.Signal{SignalChangedFit, SignalChangedPeak} {
		if _, err := s.Propagate(s.model.Observable, signal); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Meta returns the spectrum's metadata bag.
func (s *Spectrum) Meta() *Meta { return s.meta }

// Model returns the spectrum's fit model.
func (s *Spectrum) Model() *Model { return s.model }

// Energy returns the displayed energy axis: raw energy plus calibration.
func (s *Spectrum) Energy() []float64 {
	out := make([]float64, len(s.energy))
	for j, e := range s.energy {
		out[j] = e + s.energyCalibration
	}
	return out
}

// Intensity returns the displayed intensity: raw intensity divided by the
// normalization divisor.
func (s *Spectrum) Intensity() []float64 {
	out := make([]float64, len(s.intensity))
	for j, v := range s.intensity {
		out[j] = v / s.normalizationDivisor
	}
	return out
}

// IntensityOfE returns the displayed intensity interpolated at the given
// displayed energy.
func (s *Spectrum) IntensityOfE(energy float64) (float64, error) {
	return sigproc.IntensityAtEnergy(s.Energy(), s.Intensity(), energy)
}

// Background returns the displayed background: raw background divided by the
// normalization divisor.
func (s *Spectrum) Background() []float64 {
	out := make([]float64, len(s.background))
	for j, v := range s.background {
		out[j] = v / s.normalizationDivisor
	}
	return out
}

// BackgroundOfE returns the displayed background interpolated at the given
// displayed energy.
func (s *Spectrum) BackgroundOfE(energy float64) (float64, error) {
	return sigproc.IntensityAtEnergy(s.Energy(), s.Background(), energy)
}

// EnergyCalibration returns the offset from raw to displayed energy.
func (s *Spectrum) EnergyCalibration() float64 { return s.energyCalibration }

// SetEnergyCalibration shifts the displayed energy axis. Only finite values
// are valid. Stored background bounds are raw-space and stay untouched.
func (s *Spectrum) SetEnergyCalibration(value float64) error {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return fmt.Errorf("%w: energy calibration %v", ErrOutOfRange, value)
	}
	s.energyCalibration = value
	s.Emit(event.Event{Signal: SignalChangedSpectrum, Attr: "energy_calibration", Value: value})
	return nil
}

// NormalizationType returns the active normalization policy.
func (s *Spectrum) NormalizationType() NormalizationType { return s.normalizationType }

// SetNormalizationType switches the normalization policy. Every policy except
// manual recomputes the divisor from the current raw intensity and displayed
// energy immediately.
func (s *Spectrum) SetNormalizationType(value NormalizationType) error {
	if !value.IsValid() {
		return fmt.Errorf("%w: normalization %q", ErrUnknownType, value)
	}
	divisor := s.normalizationDivisor
	if value != NormalizationManual {
		var err error
		divisor, err = sigproc.CalculateNormalizationDivisor(
			string(value), divisor, s.Energy(), s.intensity)
		if err != nil {
			return err
		}
	}
	s.normalizationType = value
	s.normalizationDivisor = divisor
	s.Emit(event.Event{Signal: SignalChangedSpectrum, Attr: "normalization_type", Value: value})
	return nil
}

// NormalizationDivisor returns the divisor applied to displayed intensities.
func (s *Spectrum) NormalizationDivisor() float64 { return s.normalizationDivisor }

// SetNormalizationDivisor assigns the divisor directly, forcing the
// normalization policy to manual. Zero is invalid.
func (s *Spectrum) SetNormalizationDivisor(value float64) error {
	if !(math.Abs(value) > 0) {
		return fmt.Errorf("%w: normalization divisor %v", ErrOutOfRange, value)
	}
	s.normalizationType = NormalizationManual
	s.normalizationDivisor = value
	s.Emit(event.Event{Signal: SignalChangedSpectrum, Attr: "normalization_divisor", Value: value})
	return nil
}

// NormalizationEnergy returns the energy the divisor was last pinned to, if
// any.
func (s *Spectrum) NormalizationEnergy() (float64, bool) {
	return s.normalizationEnergy, s.hasNormEnergy
}

// SetNormalizationEnergy pins the divisor to the raw intensity at the given
// displayed energy, forcing manual normalization.
func (s *Spectrum) SetNormalizationEnergy(value float64) error {
	divisor, err := sigproc.IntensityAtEnergy(s.Energy(), s.intensity, value)
	if err != nil {
		return err
	}
	if err := s.SetNormalizationDivisor(divisor); err != nil {
		return err
	}
	s.normalizationEnergy = value
	s.hasNormEnergy = true
	return nil
}

// BackgroundType returns the active background method.
func (s *Spectrum) BackgroundType() BackgroundType { return s.backgroundType }

// SetBackgroundType switches the background method and recomputes the cached
// background immediately.
func (s *Spectrum) SetBackgroundType(value BackgroundType) error {
	if !value.IsValid() {
		return fmt.Errorf("%w: background %q", ErrUnknownType, value)
	}
	background, err := sigproc.CalculateBackground(
		string(value), s.BackgroundBounds(), s.Energy(), s.intensity)
	if err != nil {
		return err
	}
	s.backgroundType = value
	s.background = background
	s.Emit(event.Event{Signal: SignalChangedSpectrum, Attr: "background_type", Value: value})
	return nil
}

// BackgroundBounds returns the boundary values in displayed energy space.
func (s *Spectrum) BackgroundBounds() []float64 {
	out := make([]float64, len(s.backgroundBounds))
	for j, b := range s.backgroundBounds {
		out[j] = b + s.energyCalibration
	}
	return out
}

// SetBackgroundBounds replaces the boundary list. values are displayed-space
// energies and must come in pairs; an empty or all-zero list clears the
// bounds. Every bound must lie within the current displayed energy range.
// Valid bounds are sorted, converted to raw space for storage, and the
// background is recomputed.
func (s *Spectrum) SetBackgroundBounds(values []float64) error {
	if len(values)%2 != 0 {
		return fmt.Errorf("%w: got %d values", ErrOddBoundCount, len(values))
	}

	cleared := true
	for _, v := range values {
		if v != 0 {
			cleared = false
			break
		}
	}
	if cleared {
		values = nil
	} else {
		displayed := s.Energy()
		lo, hi := displayed[0], displayed[len(displayed)-1]
		for _, v := range values {
			if v < lo || v > hi {
				return fmt.Errorf("%w: bound %v outside [%v, %v]", ErrOutOfRange, v, lo, hi)
			}
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	background, err := sigproc.CalculateBackground(
		string(s.backgroundType), sorted, s.Energy(), s.intensity)
	if err != nil {
		return err
	}

	raw := make([]float64, len(sorted))
	for j, b := range sorted {
		raw[j] = b - s.energyCalibration
	}
	s.backgroundBounds = raw
	s.background = background
	s.Emit(event.Event{Signal: SignalChangedSpectrum, Attr: "background_bounds", Value: s.BackgroundBounds()})
	return nil
}

// AddBackgroundBounds appends one boundary pair, swapping the pair into
// ascending order first.
func (s *Spectrum) AddBackgroundBounds(emin, emax float64) error {
	if emin > emax {
		emin, emax = emax, emin
	}
	return s.SetBackgroundBounds(append(s.BackgroundBounds(), emin, emax))
}

// RemoveBackgroundBounds removes one boundary pair by value, swapping the pair
// into ascending order first. Values not present are silently ignored
// (set-difference semantics).
func (s *Spectrum) RemoveBackgroundBounds(emin, emax float64) error {
	if emin > emax {
		emin, emax = emax, emin
	}
	var remaining []float64
	for _, b := range s.BackgroundBounds() {
		if b == emin || b == emax {
			continue
		}
		remaining = append(remaining, b)
	}
	return s.SetBackgroundBounds(remaining)
}
