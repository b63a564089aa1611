package enhance

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// ErrInvalidRegion is returned (wrapped) when a region has zero area or a
// malformed pixel buffer.
var ErrInvalidRegion = errors.New("invalid plate region")

// Params holds the tuning constants of the enhancer.
type Params struct {
	// UpscaleFactor multiplies both region dimensions before binarisation.
	UpscaleFactor int

	// BlockSize is the side of the neighbourhood used for the local
	// threshold. Must be odd and at least 3.
	BlockSize int

	// C is subtracted from the Gaussian-weighted local mean.
	C float32

	// MaxValue is assigned to pixels above their local threshold.
	MaxValue float32

	// DenoiseH is the non-local-means filter strength.
	DenoiseH float32

	// TemplateWindow and SearchWindow are the patch and search sizes of the
	// non-local-means filter. Both must be odd.
	TemplateWindow int
	SearchWindow   int
}

// DefaultParams returns the calibrated enhancer constants. The denoising
// values are OpenCV's own defaults.
func DefaultParams() Params {
	return Params{
		UpscaleFactor:  2,
		BlockSize:      11,
		C:              2,
		MaxValue:       255,
		DenoiseH:       3,
		TemplateWindow: 7,
		SearchWindow:   21,
	}
}

// Validate reports the first parameter that cannot be used.
func (p Params) Validate() error {
	switch {
	case p.UpscaleFactor < 1:
		return fmt.Errorf("upscale factor must be at least 1, got %d", p.UpscaleFactor)
	case p.BlockSize < 3 || p.BlockSize%2 == 0:
		return fmt.Errorf("threshold block size must be odd and >= 3, got %d", p.BlockSize)
	case p.MaxValue <= 0 || p.MaxValue > 255:
		return fmt.Errorf("threshold max value must be in (0, 255], got %v", p.MaxValue)
	case p.DenoiseH < 0:
		return fmt.Errorf("denoise strength must not be negative, got %v", p.DenoiseH)
	case p.TemplateWindow < 1 || p.TemplateWindow%2 == 0:
		return fmt.Errorf("denoise template window must be odd and positive, got %d", p.TemplateWindow)
	case p.SearchWindow < 1 || p.SearchWindow%2 == 0:
		return fmt.Errorf("denoise search window must be odd and positive, got %d", p.SearchWindow)
	}
	return nil
}

// Enhance turns a plate region into a high-contrast image for character
// recognition.
//
// A nil region yields a nil image and no error. The output is UpscaleFactor
// times the region size in both dimensions.
//
// # Algorithm
//
//  1. Upscale with bicubic interpolation
//  2. Convert to grayscale
//  3. Adaptive threshold with a Gaussian-weighted local mean, which tolerates
//     uneven lighting across the plate
//  4. Non-local-means denoising to remove thresholding speckle
//
// Enhance is a pure function of its inputs; the region is only read.
func Enhance(region *imaging.Frame, p Params) (*imaging.GrayImage, error) {
	if region == nil {
		return nil, nil
	}
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("%w: zero area (%dx%d)", ErrInvalidRegion, region.Width, region.Height)
	}
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid enhance parameters: %w", err)
	}

	src, err := region.ToMat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, err)
	}
	defer src.Close()

	upscaled := gocv.NewMat()
	defer upscaled.Close()
	size := image.Pt(region.Width*p.UpscaleFactor, region.Height*p.UpscaleFactor)
	gocv.Resize(src, &upscaled, size, 0, 0, gocv.InterpolationCubic)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(upscaled, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(gray, &binary, p.MaxValue, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, p.BlockSize, p.C)

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.FastNlMeansDenoisingWithParams(binary, &denoised, p.DenoiseH, p.TemplateWindow, p.SearchWindow)

	return imaging.GrayFromMat(denoised)
}
