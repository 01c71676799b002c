package spectrum

import (
	"fmt"
	"slices"

	"github.com/pesolab/pespec/event"
)

// Container is the root of the entity graph. It keeps spectra in insertion
// order and re-emits every event from its children, so observing the
// container alone is enough to track the whole tree.
type Container struct {
	*event.Observable

	spectra []*Spectrum
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	c := &Container{}
	c.Observable = event.NewObservable(c,
		SignalChangedSpectra,
		SignalChangedSpectrum,
		SignalChangedMetadata,
		SignalChangedFit,
		SignalChangedPeak,
	)
	return c
}

// Spectra returns the contained spectra in insertion order.
func (c *Container) Spectra() []*Spectrum {
	return slices.Clone(c.spectra)
}

// Len returns the number of contained spectra.
func (c *Container) Len() int { return len(c.spectra) }

// Add appends a spectrum, wires its events through the container and emits
// changed-spectra. Adding the same spectrum twice is an error.
func (c *Container) Add(s *Spectrum) error {
	if s == nil {
		return fmt.Errorf("%w: spectrum", ErrMissingField)
	}
	if slices.Contains(c.spectra, s) {
		return fmt.Errorf("%w: %q", ErrDuplicateSpectrum, s.Meta().Name())
	}
	c.spectra = append(c.spectra, s)
	for _, signal := range []event.Signal{
		SignalChangedSpectrum,
		SignalChangedMetadata,
		SignalChangedFit,
		SignalChangedPeak,
	} {
		if _, err := c.Propagate(s.Observable, signal); err != nil {
			return err
		}
	}
	c.Emit(event.Event{Signal: SignalChangedSpectra, Attr: "spectra", Value: s})
	return nil
}

// Remove detaches a spectrum, unwires its events and emits changed-spectra.
func (c *Container) Remove(s *Spectrum) error {
	if s == nil {
		return fmt.Errorf("%w: spectrum", ErrMissingField)
	}
	i := slices.Index(c.spectra, s)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSpectrum, s.Meta().Name())
	}
	c.spectra = slices.Delete(c.spectra, i, i+1)
	c.StopPropagatingAll(s.Observable)
	c.Emit(event.Event{Signal: SignalChangedSpectra, Attr: "spectra", Value: s})
	return nil
}

// Clear detaches all spectra. A single changed-spectra event is emitted when
// the container was non-empty.
func (c *Container) Clear() {
	if len(c.spectra) == 0 {
		return
	}
	for _, s := range c.spectra {
		c.StopPropagatingAll(s.Observable)
	}
	c.spectra = nil
	c.Emit(event.Event{Signal: SignalChangedSpectra, Attr: "spectra"})
}

// CreateSpectrum builds a spectrum from raw arrays and adds it in one step.
func (c *Container) CreateSpectrum(energy, intensity []float64, meta map[string]any) (*Spectrum, error) {
	s, err := New(energy, intensity, meta)
	if err != nil {
		return nil, err
	}
	if err := c.Add(s); err != nil {
		return nil, err
	}
	return s, nil
}
