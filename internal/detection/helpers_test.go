package detection

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// solidFrame returns a frame filled with a single gray level.
func solidFrame(width, height int, level byte) *imaging.Frame {
	f := imaging.NewFrame(width, height)
	for i := range f.Pix {
		f.Pix[i] = level
	}
	return f
}

// fillRect paints r in f with a single gray level.
func fillRect(f *imaging.Frame, r image.Rectangle, level byte) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := (y*f.Width + x) * f.Channels
			f.Pix[i], f.Pix[i+1], f.Pix[i+2] = level, level, level
		}
	}
}

// fillPolygon paints a filled black polygon on a copy of f.
func fillPolygon(t *testing.T, f *imaging.Frame, pts []image.Point) *imaging.Frame {
	t.Helper()
	m, err := f.ToMat()
	require.NoError(t, err)
	defer m.Close()

	canvas := m.Clone()
	defer canvas.Close()

	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(&canvas, pv, color.RGBA{0, 0, 0, 255})

	out, err := imaging.FrameFromMat(canvas)
	require.NoError(t, err)
	return out
}

// plateFrame is a white 640x480 frame with one black 300x100 rectangle.
func plateFrame() (*imaging.Frame, image.Rectangle) {
	f := solidFrame(640, 480, 255)
	r := image.Rect(170, 190, 470, 290)
	fillRect(f, r, 0)
	return f, r
}
