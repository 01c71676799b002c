package sigproc

import (
	"fmt"
	"math"
)

// PAH2FWHM converts a position/angle/height wedge gesture into a full width at
// half maximum. angle is measured in radians from the vertical through the
// apex, so the half width at half maximum is (height/2)*tan(angle). Only the
// "PseudoVoigt" shape is supported.
func PAH2FWHM(position, angle, height float64, shape string) (float64, error) {
	if shape != "PseudoVoigt" {
		return 0, fmt.Errorf("%w: shape %q", ErrUnknownKind, shape)
	}
	if height <= 0 || angle <= 0 || angle >= math.Pi/2 {
		return 0, fmt.Errorf("%w: height and angle must describe an open wedge", ErrShortInput)
	}
	return height * math.Tan(angle), nil
}

// PAH2Area converts a position/angle/height wedge gesture into a peak area by
// deriving the width via PAH2FWHM and inverting the pseudo-Voigt apex height
// for that width (equal Gaussian/Lorentzian mix). Only the "PseudoVoigt" shape
// is supported.
func PAH2Area(position, angle, height float64, shape string) (float64, error) {
	fwhm, err := PAH2FWHM(position, angle, height, shape)
	if err != nil {
		return 0, err
	}
	return height / pseudoVoigtUnitHeight(fwhm, 0.5), nil
}

// pseudoVoigtUnitHeight returns the apex height of a unit-area pseudo-Voigt
// with the given fwhm and Lorentzian fraction.
func pseudoVoigtUnitHeight(fwhm, fraction float64) float64 {
	sigma := fwhm / 2
	sigmaG := sigma / math.Sqrt(2*math.Ln2)
	gauss := (1 - fraction) / (sigmaG * math.Sqrt(2*math.Pi))
	lorentz := fraction / (math.Pi * sigma)
	return gauss + lorentz
}
