package sigproc

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Number of edge samples averaged for the high_energy/low_energy policies.
const edgeSamples = 10

// CalculateNormalizationDivisor computes the intensity divisor for a
// normalization policy. kind is one of "none", "manual", "highest",
// "high_energy" or "low_energy". For "none" the divisor is 1; for "manual" the
// current divisor is kept unchanged; "highest" divides by the maximum
// intensity; "high_energy"/"low_energy" divide by the mean intensity of the
// outermost samples at the respective end of the energy axis.
func CalculateNormalizationDivisor(kind string, current float64, energy, intensity []float64) (float64, error) {
	if len(energy) < 2 || len(energy) != len(intensity) {
		return 0, fmt.Errorf("%w: need at least two equal-length samples", ErrShortInput)
	}

	switch kind {
	case "none":
		return 1.0, nil
	case "manual":
		return current, nil
	case "highest":
		return floats.Max(intensity), nil
	case "high_energy":
		edge := min(edgeSamples, len(intensity))
		tail := intensity[len(intensity)-edge:]
		return floats.Sum(tail) / float64(edge), nil
	case "low_energy":
		edge := min(edgeSamples, len(intensity))
		return floats.Sum(intensity[:edge]) / float64(edge), nil
	default:
		return 0, fmt.Errorf("%w: normalization %q", ErrUnknownKind, kind)
	}
}
