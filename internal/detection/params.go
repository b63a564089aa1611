package detection

import (
	"errors"
	"fmt"
)

// quadVertices is the vertex count a contour approximation must have to be
// considered plate-shaped.
const quadVertices = 4

// Params holds the tuning constants of the candidate selector.
//
// The defaults are the calibrated values the detector was tuned with. They
// can be overridden, but DefaultParams should be the starting point.
type Params struct {
	// BilateralDiameter is the pixel neighbourhood of the edge-preserving filter.
	BilateralDiameter int

	// BilateralSigmaColor controls how different intensities may be and still be mixed.
	BilateralSigmaColor float64

	// BilateralSigmaSpace controls how far apart pixels may be and still be mixed.
	BilateralSigmaSpace float64

	// CannyLow and CannyHigh are the hysteresis thresholds of edge detection.
	CannyLow  float32
	CannyHigh float32

	// MaxContours is how many of the largest contours are examined.
	MaxContours int

	// ApproxEpsilon is the polygon approximation tolerance as a fraction of
	// the contour perimeter.
	ApproxEpsilon float64

	// MinAspectRatio and MaxAspectRatio bound the accepted width/height ratio,
	// inclusive at both ends.
	MinAspectRatio float64
	MaxAspectRatio float64
}

// DefaultParams returns the calibrated selector constants.
func DefaultParams() Params {
	return Params{
		BilateralDiameter:   11,
		BilateralSigmaColor: 17,
		BilateralSigmaSpace: 17,
		CannyLow:            30,
		CannyHigh:           200,
		MaxContours:         10,
		ApproxEpsilon:       0.02,
		MinAspectRatio:      2.0,
		MaxAspectRatio:      5.5,
	}
}

// Validate reports the first parameter that cannot be used.
func (p Params) Validate() error {
	switch {
	case p.BilateralDiameter <= 0:
		return fmt.Errorf("bilateral diameter must be positive, got %d", p.BilateralDiameter)
	case p.BilateralSigmaColor <= 0 || p.BilateralSigmaSpace <= 0:
		return errors.New("bilateral sigmas must be positive")
	case p.CannyLow < 0 || p.CannyHigh < p.CannyLow:
		return fmt.Errorf("canny thresholds must satisfy 0 <= low <= high, got %v/%v", p.CannyLow, p.CannyHigh)
	case p.MaxContours < 1:
		return fmt.Errorf("max contours must be at least 1, got %d", p.MaxContours)
	case p.ApproxEpsilon <= 0:
		return fmt.Errorf("approximation epsilon must be positive, got %v", p.ApproxEpsilon)
	case p.MinAspectRatio <= 0 || p.MaxAspectRatio < p.MinAspectRatio:
		return fmt.Errorf("aspect ratio bounds must satisfy 0 < min <= max, got %v/%v", p.MinAspectRatio, p.MaxAspectRatio)
	}
	return nil
}

// acceptsAspectRatio applies the inclusive aspect-ratio gate.
func (p Params) acceptsAspectRatio(ratio float64) bool {
	return ratio >= p.MinAspectRatio && ratio <= p.MaxAspectRatio
}
