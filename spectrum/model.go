package spectrum

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/pesolab/pespec/event"
	"github.com/pesolab/pespec/fit"
	"github.com/pesolab/pespec/sigproc"
)

// Model owns the peaks fitted to one spectrum and the parameter set shared by
// all of their basis functions. Peak parameters live in the shared set under
// "{peakname}_{param}" names; removing a peak purges its parameters.
type Model struct {
	*event.Observable

	spectrum *Spectrum
	params   *fit.Parameters
	peaks    map[string]*Peak
	fitOpts  fit.Options
}

func newModel(s *Spectrum) *Model {
	m := &Model{
		spectrum: s,
		params:   fit.NewParameters(),
		peaks:    make(map[string]*Peak),
		fitOpts:  fit.DefaultOptions(),
	}
	m.Observable = event.NewObservable(m, SignalChangedFit, SignalChangedPeak)
	return m
}

// Params returns the shared parameter set. It is owned by the model; external
// code must mutate parameters only through the model and its peaks.
func (m *Model) Params() *fit.Parameters { return m.params }

// Spectrum returns the owning spectrum.
func (m *Model) Spectrum() *Spectrum { return m.spectrum }

// FitOptions returns the solver options used by Fit.
func (m *Model) FitOptions() fit.Options { return m.fitOpts }

// SetFitOptions replaces the solver options used by Fit.
func (m *Model) SetFitOptions(opts fit.Options) { m.fitOpts = opts }

// Peak returns the named peak, or nil.
func (m *Model) Peak(name string) *Peak { return m.peaks[name] }

// Peaks returns all peaks, sorted by name.
func (m *Model) Peaks() []*Peak {
	out := make([]*Peak, 0, len(m.peaks))
	for _, name := range m.PeakNames() {
		out = append(out, m.peaks[name])
	}
	return out
}

// PeakNames returns the peak names, sorted.
func (m *Model) PeakNames() []string {
	names := make([]string, 0, len(m.peaks))
	for name := range m.peaks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Model) hasPeak(name string) bool {
	_, ok := m.peaks[name]
	return ok
}

// TotalModel returns the additive composition of all peak basis functions, or
// nil when the model has no peaks.
func (m *Model) TotalModel() fit.Model {
	peaks := m.Peaks()
	models := make([]fit.Model, len(peaks))
	for j, p := range peaks {
		models[j] = p.basis
	}
	return fit.Sum(models...)
}

// EvalIntensity evaluates the total model at the given energies. With no
// peaks the result is all zeros.
func (m *Model) EvalIntensity(x []float64) ([]float64, error) {
	total := m.TotalModel()
	if total == nil {
		return make([]float64, len(x)), nil
	}
	return total.Eval(m.params, x)
}

// Fit performs a least-squares fit of the total model to the given arrays,
// starting from the current parameter values. It is a no-op without peaks.
// Fitted values are merged back into the shared set, keeping bounds and
// expressions that the fit did not touch, and changed-fit is emitted.
func (m *Model) Fit(energy, intensity []float64) error {
	total := m.TotalModel()
	if total == nil {
		return nil
	}
	result, err := fit.Fit(total, intensity, m.params, energy, m.fitOpts)
	if err != nil {
		return err
	}
	m.params.Merge(result)
	m.Emit(event.Event{Signal: SignalChangedFit})
	return nil
}

// PeakOptions carries the construction inputs for a new peak. Area, FWHM and
// Position are required, but FWHM and Area may instead be derived from a
// Height+Angle wedge gesture; the derivation inputs themselves are never
// stored. Alpha defaults to 0.5 and Shape to PseudoVoigt.
type PeakOptions struct {
	Area     *float64
	FWHM     *float64
	Position *float64
	Height   *float64
	Angle    *float64
	Alpha    *float64
	Shape    PeakShape
}

// AddPeak creates a peak under a unique name and registers its parameters into
// the shared set. The peak's changed-peak events propagate through the model.
func (m *Model) AddPeak(name string, opts PeakOptions) (*Peak, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: peak name", ErrMissingField)
	}
	if m.hasPeak(name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePeak, name)
	}
	if opts.Shape == "" {
		opts.Shape = ShapePseudoVoigt
	}

	if opts.FWHM == nil && opts.Height != nil && opts.Angle != nil && opts.Position != nil {
		fwhm, err := sigproc.PAH2FWHM(*opts.Position, *opts.Angle, *opts.Height, string(opts.Shape))
		if err != nil {
			return nil, err
		}
		opts.FWHM = &fwhm
	}
	if opts.Area == nil && opts.Height != nil && opts.Angle != nil && opts.Position != nil {
		area, err := sigproc.PAH2Area(*opts.Position, *opts.Angle, *opts.Height, string(opts.Shape))
		if err != nil {
			return nil, err
		}
		opts.Area = &area
	}

	peak, err := newPeak(name, m, opts)
	if err != nil {
		return nil, err
	}
	m.peaks[name] = peak
	if _, err := m.Propagate(peak.Observable, SignalChangedPeak); err != nil {
		return nil, err
	}
	m.Emit(event.Event{Signal: SignalChangedFit, Attr: "peaks"})
	return peak, nil
}

// RemovePeak removes the named peak and every shared parameter registered
// under its name.
func (m *Model) RemovePeak(name string) error {
	peak, ok := m.peaks[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPeak, name)
	}

	owned := regexp.MustCompile("^" + regexp.QuoteMeta(name) + "_[a-z]+")
	for _, param := range m.params.Names() {
		if owned.MatchString(param) {
			m.params.Delete(param)
		}
	}

	m.StopPropagatingAll(peak.Observable)
	delete(m.peaks, name)
	m.Emit(event.Event{Signal: SignalChangedFit, Attr: "peaks"})
	return nil
}
