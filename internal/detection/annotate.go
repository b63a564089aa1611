package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// AnnotationStyle controls how Annotate marks a candidate.
type AnnotationStyle struct {
	// BoxColor outlines the bounding box (hex, default "#00FF00").
	BoxColor string

	// PolygonColor outlines the approximated polygon (hex, default "#00FFFF").
	// Empty skips the polygon.
	PolygonColor string

	// LabelColor is the caption color (hex, default "#FF00FF").
	LabelColor string

	// Label is drawn just above the bounding box. Empty skips the caption.
	Label string

	// Thickness is the stroke width in pixels.
	Thickness int
}

// DefaultAnnotationStyle returns a green box with a magenta "License Plate" caption.
func DefaultAnnotationStyle() AnnotationStyle {
	return AnnotationStyle{
		BoxColor:     "#00FF00",
		PolygonColor: "#00FFFF",
		LabelColor:   "#FF00FF",
		Label:        "License Plate",
		Thickness:    2,
	}
}

// Annotate returns a copy of frame with the candidate drawn on it.
//
// The input frame is not modified. A nil candidate yields an unmodified copy.
func Annotate(frame *imaging.Frame, c *PlateCandidate, style AnnotationStyle) (*imaging.Frame, error) {
	if err := frame.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if c == nil {
		return frame.Clone(), nil
	}
	if style.Thickness <= 0 {
		style.Thickness = 1
	}

	boxColor, err := imaging.ParseHexColor(style.BoxColor)
	if err != nil {
		return nil, fmt.Errorf("box color: %w", err)
	}

	src, err := frame.ToMat()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	canvas := src.Clone()
	defer canvas.Close()

	gocv.Rectangle(&canvas, c.BoundingBox.Rect(), boxColor, style.Thickness)

	if style.PolygonColor != "" && len(c.Polygon) > 0 {
		polyColor, err := imaging.ParseHexColor(style.PolygonColor)
		if err != nil {
			return nil, fmt.Errorf("polygon color: %w", err)
		}
		pts := gocv.NewPointsVectorFromPoints([][]image.Point{imagePoints(c.Polygon)})
		defer pts.Close()
		gocv.Polylines(&canvas, pts, true, polyColor, style.Thickness)
	}

	if style.Label != "" {
		labelColor, err := imaging.ParseHexColor(style.LabelColor)
		if err != nil {
			return nil, fmt.Errorf("label color: %w", err)
		}
		origin := image.Pt(c.BoundingBox.X, c.BoundingBox.Y-5)
		gocv.PutText(&canvas, style.Label, origin, gocv.FontHersheyComplexSmall, 1, labelColor, style.Thickness)
	}

	return imaging.FrameFromMat(canvas)
}
