package spectrum

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pesolab/pespec/event"
	"github.com/pesolab/pespec/fit"
)

// peakAliases maps user-facing parameter names to the underlying basis
// function parameter names.
var peakAliases = map[string]string{
	"area":     "amplitude",
	"fwhm":     "fwhm",
	"center":   "center",
	"position": "center",
	"fraction": "fraction",
}

// Peak is one additive fit component. Its physically meaningful properties
// (area, fwhm, position, shape-specific parameters) are live views onto the
// model's shared parameter set; a symbolic constraint editor binds any of them
// to sibling peaks' parameters.
type Peak struct {
	*event.Observable

	name    string
	model   *Model
	shape   PeakShape
	label   string
	aliases map[string]string
	basis   *fit.PseudoVoigt
}

func newPeak(name string, m *Model, opts PeakOptions) (*Peak, error) {
	if opts.Area == nil || opts.FWHM == nil || opts.Position == nil {
		return nil, fmt.Errorf("%w: area, fwhm and position", ErrMissingField)
	}
	if opts.Shape != ShapePseudoVoigt {
		return nil, fmt.Errorf("%w: shape %q not implemented", ErrUnknownType, opts.Shape)
	}
	alpha := 0.5
	if opts.Alpha != nil {
		alpha = *opts.Alpha
	}

	p := &Peak{
		name:    name,
		model:   m,
		shape:   opts.Shape,
		label:   name,
		aliases: make(map[string]string, len(peakAliases)+1),
		basis:   fit.NewPseudoVoigt(name + "_"),
	}
	for k, v := range peakAliases {
		p.aliases[k] = v
	}
	p.aliases["alpha"] = "fraction"
	p.Observable = event.NewObservable(p, SignalChangedPeak)

	params := m.params
	params.Merge(p.basis.MakeParams())
	params.Get(name + "_fraction").Set(fit.ParamUpdate{
		Value: fit.Float(alpha), Vary: fit.Bool(false),
	})
	params.Get(name + "_fwhm").Set(fit.ParamUpdate{
		Value: fit.Float(math.Abs(*opts.FWHM)), Vary: fit.Bool(true), Min: fit.Float(0),
	})
	params.Get(name + "_sigma").Set(fit.ParamUpdate{
		Expr: fit.String(name + "_fwhm/2"),
	})
	params.Get(name + "_amplitude").Set(fit.ParamUpdate{
		Value: fit.Float(math.Abs(*opts.Area)), Min: fit.Float(0),
	})
	params.Get(name + "_center").Set(fit.ParamUpdate{
		Value: fit.Float(math.Abs(*opts.Position)), Min: fit.Float(0),
	})
	return p, nil
}

// Name returns the peak's immutable name.
func (p *Peak) Name() string { return p.name }

// Basis returns the underlying basis function model.
func (p *Peak) Basis() fit.Model { return p.basis }

// Label returns the display label.
func (p *Peak) Label() string { return p.label }

// SetLabel changes the display label and emits changed-peak.
func (p *Peak) SetLabel(value string) {
	p.label = value
	p.Emit(event.Event{Signal: SignalChangedPeak, Attr: "label", Value: value})
}

// Shape returns the peak shape.
func (p *Peak) Shape() PeakShape { return p.shape }

// SetShape changes the peak shape. Only PseudoVoigt is implemented.
func (p *Peak) SetShape(value PeakShape) error {
	if value != ShapePseudoVoigt {
		return fmt.Errorf("%w: shape %q not implemented", ErrUnknownType, value)
	}
	p.shape = value
	return nil
}

// Intensity evaluates the peak over the whole displayed energy range of the
// parent spectrum.
func (p *Peak) Intensity() ([]float64, error) {
	return p.basis.Eval(p.model.params, p.model.spectrum.Energy())
}

// EvalIntensity evaluates the peak at the given energies.
func (p *Peak) EvalIntensity(x []float64) ([]float64, error) {
	return p.basis.Eval(p.model.params, x)
}

// paramValue reads the current value of one underlying parameter.
func (p *Peak) paramValue(alias string) float64 {
	if par := p.model.params.Get(p.name + "_" + alias); par != nil {
		return par.Value
	}
	return 0
}

// setParamValue writes one underlying parameter's value and emits
// changed-peak.
func (p *Peak) setParamValue(alias string, value float64) {
	if par := p.model.params.Get(p.name + "_" + alias); par != nil {
		par.Set(fit.ParamUpdate{Value: fit.Float(value)})
	}
	p.Emit(event.Event{Signal: SignalChangedPeak})
}

// Area returns the peak area.
func (p *Peak) Area() float64 { return p.paramValue("amplitude") }

// SetArea sets the peak area.
func (p *Peak) SetArea(value float64) { p.setParamValue("amplitude", value) }

// FWHM returns the full width at half maximum.
func (p *Peak) FWHM() float64 { return p.paramValue("fwhm") }

// SetFWHM sets the full width at half maximum.
func (p *Peak) SetFWHM(value float64) { p.setParamValue("fwhm", value) }

// Position returns the peak position.
func (p *Peak) Position() float64 { return p.paramValue("center") }

// SetPosition sets the peak position.
func (p *Peak) SetPosition(value float64) { p.setParamValue("center", value) }

// AlphaName returns the display name of the shape-specific alpha parameter,
// or "" when the shape has none.
func (p *Peak) AlphaName() string {
	if p.shape == ShapePseudoVoigt {
		return "Alpha"
	}
	return ""
}

// Alpha returns the shape-specific alpha value (the Lorentzian fraction for
// pseudo-Voigt peaks).
func (p *Peak) Alpha() float64 { return p.paramValue("fraction") }

// SetAlpha sets the shape-specific alpha value.
func (p *Peak) SetAlpha(value float64) error {
	if p.shape != ShapePseudoVoigt {
		return fmt.Errorf("%w: shape %q has no alpha", ErrUnknownType, p.shape)
	}
	p.setParamValue("fraction", value)
	return nil
}

// Constraint is a partial constraint update for one peak parameter; nil
// fields are left untouched. A non-empty Expr binds the parameter to a
// symbolic expression over sibling peak names; an explicitly empty Expr clears
// an existing binding and re-enables free variation.
type Constraint struct {
	Value *float64
	Min   *float64
	Max   *float64
	Vary  *bool
	Expr  *string
}

// SetConstraint edits the constraint state of one user-facing parameter
// (area, fwhm, position/center, fraction/alpha). Bare sibling peak names
// inside Expr are rewritten to that sibling's underlying parameter for the
// same kind being constrained; the rewritten expression is applied
// speculatively with unbounded min/max and the whole shared set is evaluated.
// On failure the parameter rolls back to its prior value/bounds/vary state,
// the expression is cleared, changed-peak is still emitted once, and
// ErrInvalidExpression is returned. Explicit Value/Min/Max/Vary arguments are
// applied after the expression outcome.
func (p *Peak) SetConstraint(param string, c Constraint) error {
	alias, ok := p.aliases[param]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidConstraint, param)
	}
	for _, arg := range []*float64{c.Value, c.Min, c.Max} {
		if arg != nil && math.IsNaN(*arg) {
			return fmt.Errorf("%w: NaN argument", ErrInvalidConstraint)
		}
	}
	par := p.model.params.Get(p.name + "_" + alias)
	if par == nil {
		return fmt.Errorf("%w: no parameter %q", ErrInvalidConstraint, param)
	}

	if c.Expr != nil && *c.Expr != "" {
		rewritten, err := fit.RewriteIdentifiers(*c.Expr, func(id string) (string, error) {
			if id == p.name {
				return "", fmt.Errorf("%w: %q", ErrSelfReference, id)
			}
			if p.model.hasPeak(id) {
				return id + "_" + alias, nil
			}
			return id, nil
		})
		if err != nil {
			if errors.Is(err, ErrSelfReference) {
				return err
			}
			// Parse failure leaves state untouched but is still announced.
			p.Emit(event.Event{Signal: SignalChangedPeak})
			return fmt.Errorf("%w: %q: %w", ErrInvalidExpression, *c.Expr, err)
		}

		prior := *par
		par.Set(fit.ParamUpdate{
			Expr: fit.String(rewritten),
			Min:  fit.Float(math.Inf(-1)),
			Max:  fit.Float(math.Inf(1)),
		})
		if _, err := p.model.params.Resolve(); err != nil {
			par.Expr = ""
			par.Value = prior.Value
			par.Min = prior.Min
			par.Max = prior.Max
			par.Vary = prior.Vary
			p.Emit(event.Event{Signal: SignalChangedPeak})
			return fmt.Errorf("%w: %q: %w", ErrInvalidExpression, *c.Expr, err)
		}
	} else if c.Expr != nil {
		par.Set(fit.ParamUpdate{Expr: fit.String(""), Vary: fit.Bool(true)})
	}

	par.Set(fit.ParamUpdate{Value: c.Value, Min: c.Min, Max: c.Max, Vary: c.Vary})
	p.Emit(event.Event{Signal: SignalChangedPeak})
	return nil
}

// ConstraintMin returns the stored lower bound for a user-facing parameter.
func (p *Peak) ConstraintMin(param string) (float64, error) {
	par, err := p.constraintParam(param)
	if err != nil {
		return 0, err
	}
	return par.Min, nil
}

// ConstraintMax returns the stored upper bound for a user-facing parameter.
func (p *Peak) ConstraintMax(param string) (float64, error) {
	par, err := p.constraintParam(param)
	if err != nil {
		return 0, err
	}
	return par.Max, nil
}

// ConstraintVary reports whether the parameter varies during a fit.
func (p *Peak) ConstraintVary(param string) (bool, error) {
	par, err := p.constraintParam(param)
	if err != nil {
		return false, err
	}
	return par.Vary, nil
}

// ConstraintExpr returns the symbolic constraint in user-facing form: tokens
// naming a sibling's underlying parameter are rewritten back to the bare
// sibling name. An empty string means the parameter is unconstrained.
func (p *Peak) ConstraintExpr(param string) (string, error) {
	par, err := p.constraintParam(param)
	if err != nil {
		return "", err
	}
	if par.Expr == "" {
		return "", nil
	}
	return fit.RewriteIdentifiers(par.Expr, func(id string) (string, error) {
		head, _, found := strings.Cut(id, "_")
		if !found {
			return id, nil
		}
		if head == p.name {
			return "", fmt.Errorf("%w: %q", ErrSelfReference, head)
		}
		if p.model.hasPeak(head) {
			return head, nil
		}
		return id, nil
	})
}

func (p *Peak) constraintParam(param string) (*fit.Parameter, error) {
	alias, ok := p.aliases[param]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidConstraint, param)
	}
	par := p.model.params.Get(p.name + "_" + alias)
	if par == nil {
		return nil, fmt.Errorf("%w: no parameter %q", ErrInvalidConstraint, param)
	}
	return par, nil
}
