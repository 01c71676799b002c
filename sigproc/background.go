package sigproc

import (
	"fmt"
	"math"
)

// Tougaard two-parameter universal loss function constants (eV^2).
const (
	tougaardB = 2866.0
	tougaardC = 1643.0
)

const (
	shirleyMaxIter = 50
	shirleyTol     = 1e-6
)

// CalculateBackground computes a background curve of the same length as the
// spectrum. kind is one of "none", "linear", "shirley" or "tougaard". bounds is
// an even-length ascending list of energy values delimiting the regions where
// the background is computed; outside these regions the background is zero.
// With kind "none" or no bounds the result is all zeros.
func CalculateBackground(kind string, bounds, energy, intensity []float64) ([]float64, error) {
	if len(energy) < 2 || len(energy) != len(intensity) {
		return nil, fmt.Errorf("%w: need at least two equal-length samples", ErrShortInput)
	}
	switch kind {
	case "none", "linear", "shirley", "tougaard":
	default:
		return nil, fmt.Errorf("%w: background %q", ErrUnknownKind, kind)
	}

	background := make([]float64, len(energy))
	if kind == "none" {
		return background, nil
	}

	for p := 0; p+1 < len(bounds); p += 2 {
		lo, hi := bounds[p], bounds[p+1]
		i0, i1 := regionIndices(energy, lo, hi)
		if i1-i0 < 1 {
			continue
		}
		region := background[i0 : i1+1]
		e := energy[i0 : i1+1]
		in := intensity[i0 : i1+1]
		switch kind {
		case "linear":
			linearBackground(region, in)
		case "shirley":
			shirleyBackground(region, e, in)
		case "tougaard":
			tougaardBackground(region, e, in)
		}
	}
	return background, nil
}

// regionIndices returns the first and last sample index inside [lo, hi].
func regionIndices(energy []float64, lo, hi float64) (int, int) {
	i0 := 0
	for i0 < len(energy) && energy[i0] < lo {
		i0++
	}
	i1 := len(energy) - 1
	for i1 >= 0 && energy[i1] > hi {
		i1--
	}
	return i0, i1
}

// linearBackground fills dst with the straight line joining the region's
// endpoint intensities.
func linearBackground(dst, intensity []float64) {
	n := len(dst)
	left, right := intensity[0], intensity[n-1]
	for j := range dst {
		frac := float64(j) / float64(n-1)
		dst[j] = left + (right-left)*frac
	}
}

// shirleyBackground fills dst with the iterative Shirley background: at each
// point the background is proportional to the peak area remaining between that
// point and the high-energy bound, pinned to the endpoint intensities.
func shirleyBackground(dst, energy, intensity []float64) {
	n := len(dst)
	left, right := intensity[0], intensity[n-1]
	for j := range dst {
		dst[j] = right
	}

	prev := make([]float64, n)
	for iter := 0; iter < shirleyMaxIter; iter++ {
		copy(prev, dst)

		// Cumulative peak area above the current background, from each
		// point to the high-energy end (trapezoidal).
		area := make([]float64, n)
		for j := n - 2; j >= 0; j-- {
			dx := energy[j+1] - energy[j]
			fa := intensity[j] - prev[j]
			fb := intensity[j+1] - prev[j+1]
			area[j] = area[j+1] + 0.5*(fa+fb)*dx
		}
		total := area[0]
		if total == 0 {
			return
		}
		for j := range dst {
			dst[j] = right + (left-right)*area[j]/total
		}

		var delta, scale float64
		for j := range dst {
			delta += math.Abs(dst[j] - prev[j])
			scale += math.Abs(dst[j])
		}
		if scale == 0 || delta/scale < shirleyTol {
			return
		}
	}
}

// tougaardBackground fills dst with an endpoint-matched Tougaard background
// using the two-parameter universal loss function.
func tougaardBackground(dst, energy, intensity []float64) {
	n := len(dst)
	left, right := intensity[0], intensity[n-1]

	// Loss integral from each point towards higher energies.
	loss := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for k := j + 1; k < n; k++ {
			t := energy[k] - energy[j]
			dx := energy[k] - energy[k-1]
			sum += tougaardB * t / math.Pow(tougaardC+t*t, 2) * (intensity[k] - right) * dx
		}
		loss[j] = sum
	}

	scale := 0.0
	if loss[0] != 0 {
		scale = (left - right) / loss[0]
	}
	for j := range dst {
		dst[j] = right + scale*loss[j]
	}
}
