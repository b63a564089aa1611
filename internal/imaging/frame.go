package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"gocv.io/x/gocv"
)

// Frame is a packed 8-bit color image in BGR channel order.
//
// Pixels are stored row-major with no padding between rows, so the pixel at
// (x, y) starts at Pix[(y*Width+x)*Channels]. This is the layout OpenCV uses
// for CV_8UC3 matrices, which lets a Frame cross into gocv without repacking.
//
// A Frame handed to the detection or enhancement pipelines is treated as
// read-only for the duration of the call and is never retained afterwards.
type Frame struct {
	// Width is the horizontal extent in pixels.
	Width int

	// Height is the vertical extent in pixels.
	Height int

	// Channels is the number of interleaved 8-bit channels. Always 3 for a
	// valid frame.
	Channels int

	// Pix holds Width*Height*Channels bytes, B first.
	Pix []byte
}

// FrameChannels is the channel count of every valid Frame.
const FrameChannels = 3

// NewFrame allocates a zeroed (black) frame of the given size.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: FrameChannels,
		Pix:      make([]byte, width*height*FrameChannels),
	}
}

// Validate reports why a frame cannot be processed, or nil if it can.
//
// A frame is valid when it is non-nil, has positive dimensions, carries
// exactly three channels, and its pixel slice length matches its dimensions.
func (f *Frame) Validate() error {
	if f == nil {
		return errors.New("frame is nil")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame has zero area (%dx%d)", f.Width, f.Height)
	}
	if f.Channels != FrameChannels {
		return fmt.Errorf("frame has %d channels, want %d", f.Channels, FrameChannels)
	}
	if want := f.Width * f.Height * f.Channels; len(f.Pix) != want {
		return fmt.Errorf("frame buffer holds %d bytes, want %d for %dx%d", len(f.Pix), want, f.Width, f.Height)
	}
	return nil
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Channels: f.Channels, Pix: pix}
}

// Crop copies the pixels inside r into a new frame.
//
// The returned frame shares no memory with f. r must be non-empty and lie
// fully inside the frame bounds.
func (f *Frame) Crop(r image.Rectangle) (*Frame, error) {
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v is empty", r)
	}
	if !r.In(f.Bounds()) {
		return nil, fmt.Errorf("crop region %v outside frame bounds %v", r, f.Bounds())
	}

	out := NewFrame(r.Dx(), r.Dy())
	rowBytes := r.Dx() * f.Channels
	for y := 0; y < r.Dy(); y++ {
		src := ((r.Min.Y+y)*f.Width + r.Min.X) * f.Channels
		copy(out.Pix[y*rowBytes:(y+1)*rowBytes], f.Pix[src:src+rowBytes])
	}
	return out, nil
}

// FrameFromImage packs any image.Image into a BGR frame.
//
// The source is first normalised to 8-bit RGBA; alpha is dropped. The frame
// origin corresponds to img.Bounds().Min.
func FrameFromImage(img image.Image) *Frame {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	f := NewFrame(b.Dx(), b.Dy())

	for y := 0; y < f.Height; y++ {
		srcRow := rgba.Pix[y*rgba.Stride:]
		dstRow := f.Pix[y*f.Width*FrameChannels:]
		for x := 0; x < f.Width; x++ {
			s := x * 4
			d := x * FrameChannels
			dstRow[d] = srcRow[s+2]
			dstRow[d+1] = srcRow[s+1]
			dstRow[d+2] = srcRow[s]
		}
	}
	return f
}

// ToImage converts the frame to an opaque RGBA image.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for y := 0; y < f.Height; y++ {
		srcRow := f.Pix[y*f.Width*f.Channels:]
		dstRow := img.Pix[y*img.Stride:]
		for x := 0; x < f.Width; x++ {
			s := x * f.Channels
			d := x * 4
			dstRow[d] = srcRow[s+2]
			dstRow[d+1] = srcRow[s+1]
			dstRow[d+2] = srcRow[s]
			dstRow[d+3] = 0xff
		}
	}
	return img
}

// ToMat wraps the frame pixels in a CV_8UC3 matrix.
//
// The matrix references f.Pix directly; callers must not write through it
// unless they own the frame, and must Close it when done.
func (f *Frame) ToMat() (gocv.Mat, error) {
	if err := f.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap frame in matrix: %w", err)
	}
	return mat, nil
}

// FrameFromMat copies a CV_8UC3 matrix into a new frame.
func FrameFromMat(m gocv.Mat) (*Frame, error) {
	if m.Empty() {
		return nil, errors.New("matrix is empty")
	}
	if m.Type() != gocv.MatTypeCV8UC3 {
		return nil, fmt.Errorf("matrix type %v is not 8-bit 3-channel", m.Type())
	}
	pix, err := matBytes(m)
	if err != nil {
		return nil, err
	}
	return &Frame{Width: m.Cols(), Height: m.Rows(), Channels: FrameChannels, Pix: pix}, nil
}

// GrayImage is a packed single-channel 8-bit image.
//
// It is the output type of edge detection and plate enhancement. Binary
// images use 0 for background and 255 for foreground.
type GrayImage struct {
	Width  int
	Height int
	Pix    []byte
}

// GrayFromMat copies a CV_8UC1 matrix into a new GrayImage.
func GrayFromMat(m gocv.Mat) (*GrayImage, error) {
	if m.Empty() {
		return nil, errors.New("matrix is empty")
	}
	if m.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("matrix type %v is not 8-bit single channel", m.Type())
	}
	pix, err := matBytes(m)
	if err != nil {
		return nil, err
	}
	return &GrayImage{Width: m.Cols(), Height: m.Rows(), Pix: pix}, nil
}

// At returns the value of the pixel at (x, y).
func (g *GrayImage) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// ToImage converts the buffer to an image.Gray.
func (g *GrayImage) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+g.Width], g.Pix[y*g.Width:(y+1)*g.Width])
	}
	return img
}

// matBytes returns a Go-owned copy of the matrix data, compacting ROI views
// into contiguous storage first.
func matBytes(m gocv.Mat) ([]byte, error) {
	if !m.IsContinuous() {
		c := m.Clone()
		defer c.Close()
		m = c
	}
	data := m.ToBytes()
	if want := m.Rows() * m.Cols() * m.Channels(); len(data) != want {
		return nil, fmt.Errorf("matrix holds %d bytes, want %d", len(data), want)
	}
	return data, nil
}
