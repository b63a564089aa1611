package detection

import (
	"encoding/json"
	"image"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// BoundingBox is an axis-aligned rectangle given by its top-left corner and size.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the box to an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// AspectRatio returns Width/Height, or 0 for a box with no height.
func (b BoundingBox) AspectRatio() float64 {
	if b.Height <= 0 {
		return 0
	}
	return float64(b.Width) / float64(b.Height)
}

// PlateCandidate is the plate-shaped region chosen from a frame.
//
// The bounding box is taken from the original contour, not from the
// approximated polygon, so it encloses every contour point. The aspect ratio
// is always derived from the bounding box and is only materialised when the
// candidate is marshalled.
type PlateCandidate struct {
	// BoundingBox encloses the accepted contour.
	BoundingBox BoundingBox `json:"bounding_box"`

	// Polygon is the 4-vertex approximation of the contour, in the order
	// produced by the approximation.
	Polygon []Point `json:"polygon"`
}

// AspectRatio returns the bounding box width divided by its height.
func (c *PlateCandidate) AspectRatio() float64 {
	return c.BoundingBox.AspectRatio()
}

// MarshalJSON adds the derived aspect_ratio field.
func (c PlateCandidate) MarshalJSON() ([]byte, error) {
	type candidate PlateCandidate
	return json.Marshal(struct {
		candidate
		AspectRatio float64 `json:"aspect_ratio"`
	}{candidate(c), c.BoundingBox.AspectRatio()})
}

func pointsFrom(pts []image.Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p.X, Y: p.Y}
	}
	return out
}

func imagePoints(pts []Point) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = image.Pt(p.X, p.Y)
	}
	return out
}
