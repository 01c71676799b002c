// Package fit provides the curve-fitting collaborator of the spectrum domain
// model: a named parameter set with symbolic inter-parameter expressions, the
// pseudo-Voigt basis model, additive composition and least-squares fitting.
package fit

import "math"

// Parameter is one named fit parameter. A non-empty Expr makes the parameter
// derived: its value is computed from other parameters during Resolve and it
// never varies in a fit.
type Parameter struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
	Vary  bool
	Expr  string
}

// ParamUpdate is a partial update for Set; nil fields leave the parameter
// untouched.
type ParamUpdate struct {
	Value *float64
	Min   *float64
	Max   *float64
	Vary  *bool
	Expr  *string
}

// Set applies the provided fields. Assigning a non-empty expression turns off
// Vary; assigning an explicit value removes any expression, returning the
// parameter to plain numeric state.
func (p *Parameter) Set(u ParamUpdate) {
	if u.Expr != nil {
		p.Expr = *u.Expr
		if p.Expr != "" {
			p.Vary = false
		}
	}
	if u.Value != nil {
		p.Value = *u.Value
		p.Expr = ""
	}
	if u.Min != nil {
		p.Min = *u.Min
	}
	if u.Max != nil {
		p.Max = *u.Max
	}
	if u.Vary != nil {
		p.Vary = *u.Vary
	}
}

// Float returns a *float64 for ParamUpdate literals.
func Float(v float64) *float64 { return &v }

// Bool returns a *bool for ParamUpdate literals.
func Bool(v bool) *bool { return &v }

// String returns a *string for ParamUpdate literals.
func String(v string) *string { return &v }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func newParameter(name string, value float64) *Parameter {
	return &Parameter{
		Name:  name,
		Value: value,
		Min:   math.Inf(-1),
		Max:   math.Inf(1),
		Vary:  true,
	}
}
