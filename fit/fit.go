package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Options tunes the least-squares solver.
type Options struct {
	// MaxIterations caps the outer solver iterations.
	MaxIterations int

	// Tolerance is the absolute function convergence tolerance.
	Tolerance float64
}

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 2000,
		Tolerance:     1e-10,
	}
}

// Fit performs a least-squares fit of the model to (x, y), starting from the
// current parameter values. Only parameters that vary and carry no expression
// are adjusted; bounds are enforced by clamping. The input set is not mutated;
// the returned copy carries the fitted values.
func Fit(m Model, y []float64, params *Parameters, x []float64, opts Options) (*Parameters, error) {
	if m == nil {
		return nil, fmt.Errorf("fit: nil model")
	}
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("fit: x and y must be equal-length and non-empty")
	}
	if opts.MaxIterations <= 0 {
		opts = DefaultOptions()
	}

	work := params.Clone()
	var free []*Parameter
	for _, name := range work.Names() {
		p := work.Get(name)
		if p.Vary && p.Expr == "" {
			free = append(free, p)
		}
	}
	if len(free) == 0 {
		return work, nil
	}

	x0 := make([]float64, len(free))
	for k, p := range free {
		x0[k] = clamp(p.Value, p.Min, p.Max)
	}

	apply := func(v []float64) {
		for k, p := range free {
			p.Value = clamp(v[k], p.Min, p.Max)
		}
	}

	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			apply(v)
			yhat, err := m.Eval(work, x)
			if err != nil {
				return math.Inf(1)
			}
			var ss float64
			for j := range y {
				d := yhat[j] - y[j]
				ss += d * d
			}
			return ss
		},
	}

	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance,
			Iterations: 100,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	apply(result.X)
	if _, err := work.Resolve(); err != nil {
		return nil, err
	}
	return work, nil
}
