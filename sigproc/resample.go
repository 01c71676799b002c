// Package sigproc implements the numeric routines behind the spectrum domain
// model: reordering and resampling measured arrays, background curves,
// normalization divisors and peak-geometry conversions. All functions are pure;
// they never mutate their inputs.
package sigproc

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// MakeIncreasing returns copies of energy and intensity reordered so that
// energy is ascending. The sort is stable, so samples sharing an energy keep
// their measured order.
func MakeIncreasing(energy, intensity []float64) ([]float64, []float64) {
	idx := make([]int, len(energy))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return energy[idx[a]] < energy[idx[b]]
	})

	e := make([]float64, len(energy))
	in := make([]float64, len(intensity))
	for i, j := range idx {
		e[i] = energy[j]
		in[i] = intensity[j]
	}
	return e, in
}

// MakeEquidistant resamples an ascending spectrum onto an equidistant energy
// grid spanning the same range with the same number of samples. Intensities
// are linearly interpolated. The input energy must be strictly increasing.
func MakeEquidistant(energy, intensity []float64) ([]float64, []float64, error) {
	if len(energy) < 2 || len(energy) != len(intensity) {
		return nil, nil, fmt.Errorf("%w: need at least two equal-length samples", ErrShortInput)
	}
	for i := 1; i < len(energy); i++ {
		if energy[i] <= energy[i-1] {
			return nil, nil, fmt.Errorf("%w: energy not strictly increasing at index %d", ErrShortInput, i)
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(energy, intensity); err != nil {
		return nil, nil, fmt.Errorf("fit interpolant: %w", err)
	}

	grid := make([]float64, len(energy))
	floats.Span(grid, energy[0], energy[len(energy)-1])
	resampled := make([]float64, len(grid))
	for i, x := range grid {
		resampled[i] = pl.Predict(x)
	}
	return grid, resampled, nil
}

// IntensityAtEnergy returns the linearly interpolated intensity at the given
// energy. Energies outside the covered range clamp to the nearest endpoint.
func IntensityAtEnergy(energy, intensity []float64, target float64) (float64, error) {
	if len(energy) < 2 || len(energy) != len(intensity) {
		return 0, fmt.Errorf("%w: need at least two equal-length samples", ErrShortInput)
	}
	if target <= energy[0] {
		return intensity[0], nil
	}
	if last := len(energy) - 1; target >= energy[last] {
		return intensity[last], nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(energy, intensity); err != nil {
		return 0, fmt.Errorf("fit interpolant: %w", err)
	}
	return pl.Predict(target), nil
}
