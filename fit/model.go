package fit

import (
	"fmt"
	"math"
)

// Model evaluates a basis function over an x array given a parameter set.
type Model interface {
	// Eval returns the model intensity at every x. The parameter set must
	// contain (or resolve) every name the model needs.
	Eval(params *Parameters, x []float64) ([]float64, error)

	// ParamNames returns the names of the parameters the model reads.
	ParamNames() []string
}

// PseudoVoigt is a pseudo-Voigt basis function: an amplitude-scaled linear mix
// of a Gaussian and a Lorentzian sharing one full width at half maximum. Its
// parameters are registered under prefix+{amplitude, center, sigma, fraction,
// fwhm}; fwhm starts as the derived 2*sigma, mirroring the usual lineshape
// parameterization.
type PseudoVoigt struct {
	prefix string
}

// NewPseudoVoigt creates a pseudo-Voigt model whose parameters carry the given
// name prefix.
func NewPseudoVoigt(prefix string) *PseudoVoigt {
	return &PseudoVoigt{prefix: prefix}
}

// Prefix returns the parameter name prefix.
func (m *PseudoVoigt) Prefix() string { return m.prefix }

// ParamNames returns the prefixed parameter names.
func (m *PseudoVoigt) ParamNames() []string {
	return []string{
		m.prefix + "amplitude",
		m.prefix + "center",
		m.prefix + "sigma",
		m.prefix + "fraction",
		m.prefix + "fwhm",
	}
}

// MakeParams creates the model's parameters with their default values and
// bounds: amplitude 1, center 0, sigma 1 (non-negative), fraction 0.5 in
// [0, 1] and fwhm derived as 2*sigma.
func (m *PseudoVoigt) MakeParams() *Parameters {
	ps := NewParameters()
	ps.Add(m.prefix+"amplitude", 1)
	ps.Add(m.prefix+"center", 0)
	ps.Add(m.prefix+"sigma", 1).Set(ParamUpdate{Min: Float(0)})
	ps.Add(m.prefix+"fraction", 0.5).Set(ParamUpdate{Min: Float(0), Max: Float(1)})
	ps.Add(m.prefix+"fwhm", 2).Set(ParamUpdate{Expr: String("2*" + m.prefix + "sigma")})
	return ps
}

// Eval evaluates the pseudo-Voigt profile at every x.
func (m *PseudoVoigt) Eval(params *Parameters, x []float64) ([]float64, error) {
	vals, err := params.Resolve()
	if err != nil {
		return nil, err
	}
	var amp, center, sigma, fraction float64
	for _, bind := range []struct {
		name string
		dst  *float64
	}{
		{m.prefix + "amplitude", &amp},
		{m.prefix + "center", &center},
		{m.prefix + "sigma", &sigma},
		{m.prefix + "fraction", &fraction},
	} {
		v, ok := vals[bind.name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, bind.name)
		}
		*bind.dst = v
	}

	sigmaG := sigma / math.Sqrt(2*math.Ln2)
	gaussNorm := 1 / (sigmaG * math.Sqrt(2*math.Pi))
	out := make([]float64, len(x))
	for j, xv := range x {
		d := xv - center
		gauss := gaussNorm * math.Exp(-d*d/(2*sigmaG*sigmaG))
		lorentz := sigma / (math.Pi * (d*d + sigma*sigma))
		out[j] = amp * ((1-fraction)*gauss + fraction*lorentz)
	}
	return out, nil
}

// composite is the additive combination of several models.
type composite struct {
	models []Model
}

// Sum returns the additive composition of the given models. With no models it
// returns nil; with one it returns that model unchanged.
func Sum(models ...Model) Model {
	switch len(models) {
	case 0:
		return nil
	case 1:
		return models[0]
	}
	return &composite{models: models}
}

// ParamNames returns the concatenated parameter names of all components.
func (c *composite) ParamNames() []string {
	var names []string
	for _, m := range c.models {
		names = append(names, m.ParamNames()...)
	}
	return names
}

// Eval returns the pointwise sum of all component models.
func (c *composite) Eval(params *Parameters, x []float64) ([]float64, error) {
	sum := make([]float64, len(x))
	for _, m := range c.models {
		y, err := m.Eval(params, x)
		if err != nil {
			return nil, err
		}
		for j := range sum {
			sum[j] += y[j]
		}
	}
	return sum, nil
}
