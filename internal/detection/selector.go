package detection

import (
	"errors"
	"fmt"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// ErrInvalidInput is returned (wrapped) when a frame cannot be analysed:
// it is nil, has zero area, is not 3-channel, or its buffer is malformed.
var ErrInvalidInput = errors.New("invalid input frame")

// SelectCandidate finds the plate-shaped region of a frame.
//
// It returns the candidate together with a copy of the frame pixels inside the
// candidate's bounding box. When no contour qualifies, all three return values
// are nil: a frame without a plate is an ordinary outcome, not an error.
//
// # Algorithm
//
//  1. Convert the BGR frame to grayscale
//  2. Smooth with a bilateral filter, which keeps plate borders sharp
//  3. Canny edge detection
//  4. Extract every contour (tree hierarchy, simple chain approximation)
//  5. Keep the MaxContours largest contours by enclosed area
//  6. Walk them from largest to smallest; the first one whose polygon
//     approximation has exactly 4 vertices and whose bounding box aspect
//     ratio lies within [MinAspectRatio, MaxAspectRatio] wins
//
// The walk stops at the first match. A smaller contour is never preferred
// over a larger acceptable one, whatever its shape.
//
// The input frame is only read. The returned region shares no memory with it.
func SelectCandidate(frame *imaging.Frame, p Params) (*PlateCandidate, *imaging.Frame, error) {
	if err := frame.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid detection parameters: %w", err)
	}

	edges, err := edgeMat(frame, p)
	if err != nil {
		return nil, nil, err
	}
	defer edges.Close()

	contours := gocv.FindContours(edges, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	areas := make([]float64, contours.Size())
	for i := range areas {
		areas[i] = gocv.ContourArea(contours.At(i))
	}

	for _, idx := range rankByArea(areas, p.MaxContours) {
		candidate, ok := evaluateContour(contours.At(idx), p)
		if !ok {
			continue
		}
		region, err := frame.Crop(candidate.BoundingBox.Rect())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to crop candidate region: %w", err)
		}
		return candidate, region, nil
	}

	return nil, nil, nil
}

// EdgeMap runs the preprocessing stages of SelectCandidate (grayscale,
// bilateral filter, Canny) and returns the resulting binary edge image.
func EdgeMap(frame *imaging.Frame, p Params) (*imaging.GrayImage, error) {
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection parameters: %w", err)
	}

	edges, err := edgeMat(frame, p)
	if err != nil {
		return nil, err
	}
	defer edges.Close()

	return imaging.GrayFromMat(edges)
}

// edgeMat produces the Canny edge map of a validated frame. The caller owns
// the returned matrix.
func edgeMat(frame *imaging.Frame, p Params) (gocv.Mat, error) {
	src, err := frame.ToMat()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(gray, &smoothed, p.BilateralDiameter, p.BilateralSigmaColor, p.BilateralSigmaSpace)

	edges := gocv.NewMat()
	gocv.Canny(smoothed, &edges, p.CannyLow, p.CannyHigh)
	return edges, nil
}

// rankByArea returns the indices of the limit largest areas, largest first.
// Equal areas keep their extraction order.
func rankByArea(areas []float64, limit int) []int {
	order := make([]int, len(areas))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return areas[order[a]] > areas[order[b]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// evaluateContour applies the quad test and the aspect-ratio gate to one
// contour and builds the candidate if both pass.
func evaluateContour(contour gocv.PointVector, p Params) (*PlateCandidate, bool) {
	perimeter := gocv.ArcLength(contour, true)
	approx := gocv.ApproxPolyDP(contour, p.ApproxEpsilon*perimeter, true)
	defer approx.Close()

	if approx.Size() != quadVertices {
		return nil, false
	}

	rect := gocv.BoundingRect(contour)
	box := BoundingBox{X: rect.Min.X, Y: rect.Min.Y, Width: rect.Dx(), Height: rect.Dy()}
	if box.Height <= 0 {
		return nil, false
	}
	if !p.acceptsAspectRatio(box.AspectRatio()) {
		return nil, false
	}

	return &PlateCandidate{
		BoundingBox: box,
		Polygon:     pointsFrom(approx.ToPoints()),
	}, true
}
