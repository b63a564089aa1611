package imaging

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewFrame(t *testing.T) {
	f := NewFrame(4, 3)
	if err := f.Validate(); err != nil {
		t.Fatalf("NewFrame produced invalid frame: %v", err)
	}
	if len(f.Pix) != 4*3*FrameChannels {
		t.Errorf("Pix length: got %d, want %d", len(f.Pix), 4*3*FrameChannels)
	}
}

func TestFrame_Validate(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
	}{
		{"nil", nil},
		{"zero width", &Frame{Width: 0, Height: 5, Channels: 3}},
		{"zero height", &Frame{Width: 5, Height: 0, Channels: 3}},
		{"wrong channels", &Frame{Width: 2, Height: 2, Channels: 4, Pix: make([]byte, 16)}},
		{"short buffer", &Frame{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 11)}},
		{"long buffer", &Frame{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 13)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.frame.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestFrame_ImageRoundTrip(t *testing.T) {
	src := createPatternImage(10, 10)
	f := FrameFromImage(src)

	back := f.ToImage()
	for _, p := range []image.Point{{1, 1}, {8, 1}, {1, 8}, {8, 8}} {
		if got, want := back.RGBAAt(p.X, p.Y), src.RGBAAt(p.X, p.Y); got != want {
			t.Errorf("pixel %v: got %v, want %v", p, got, want)
		}
	}
}

func TestFrameFromImage_OffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 15, 10))
	src.Set(5, 5, color.RGBA{0, 0, 255, 255})

	f := FrameFromImage(src)
	if f.Width != 10 || f.Height != 5 {
		t.Fatalf("dimensions: got %dx%d, want 10x5", f.Width, f.Height)
	}
	if f.Pix[0] != 255 {
		t.Errorf("blue channel at origin: got %d, want 255", f.Pix[0])
	}
}

func TestFrame_Crop(t *testing.T) {
	f := FrameFromImage(createPatternImage(20, 20))

	sub, err := f.Crop(image.Rect(10, 0, 20, 10))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if sub.Width != 10 || sub.Height != 10 {
		t.Errorf("dimensions: got %dx%d, want 10x10", sub.Width, sub.Height)
	}
	// Top-right quadrant is green
	if sub.Pix[0] != 0 || sub.Pix[1] != 255 || sub.Pix[2] != 0 {
		t.Errorf("pixel (0,0) BGR: got %v, want [0 255 0]", sub.Pix[:3])
	}

	sub.Pix[1] = 0
	if f.Pix[(0*20+10)*3+1] != 255 {
		t.Error("Crop shares memory with the source frame")
	}
}

func TestFrame_Crop_Invalid(t *testing.T) {
	f := NewFrame(10, 10)
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 0, 5),
		image.Rect(5, 5, 11, 8),
		image.Rect(-1, 0, 4, 4),
	} {
		if _, err := f.Crop(r); err == nil {
			t.Errorf("Crop(%v) should fail", r)
		}
	}
}

func TestFrame_Clone(t *testing.T) {
	f := NewFrame(2, 2)
	c := f.Clone()
	c.Pix[0] = 1
	if f.Pix[0] != 0 {
		t.Error("Clone shares memory with the source frame")
	}
}

func TestFrame_MatRoundTrip(t *testing.T) {
	f := FrameFromImage(createPatternImage(16, 8))

	m, err := f.ToMat()
	if err != nil {
		t.Fatalf("ToMat failed: %v", err)
	}
	defer m.Close()

	if m.Rows() != 8 || m.Cols() != 16 || m.Type() != gocv.MatTypeCV8UC3 {
		t.Fatalf("unexpected matrix: %dx%d type %v", m.Cols(), m.Rows(), m.Type())
	}

	back, err := FrameFromMat(m)
	if err != nil {
		t.Fatalf("FrameFromMat failed: %v", err)
	}
	if string(back.Pix) != string(f.Pix) {
		t.Error("Mat round trip changed pixel data")
	}
}

func TestFrame_ToMat_Invalid(t *testing.T) {
	m, err := (&Frame{Width: 2, Height: 2, Channels: 3}).ToMat()
	defer m.Close()
	if err == nil {
		t.Error("ToMat should fail for a frame without pixels")
	}
}

func TestFrameFromMat_WrongType(t *testing.T) {
	m := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC1)
	defer m.Close()

	if _, err := FrameFromMat(m); err == nil {
		t.Error("FrameFromMat should reject single-channel matrices")
	}
}

func TestGrayFromMat(t *testing.T) {
	m := gocv.NewMatWithSize(3, 5, gocv.MatTypeCV8UC1)
	defer m.Close()
	m.SetUCharAt(1, 2, 200)

	g, err := GrayFromMat(m)
	if err != nil {
		t.Fatalf("GrayFromMat failed: %v", err)
	}
	if g.Width != 5 || g.Height != 3 {
		t.Errorf("dimensions: got %dx%d, want 5x3", g.Width, g.Height)
	}
	if g.At(2, 1) != 200 {
		t.Errorf("At(2,1): got %d, want 200", g.At(2, 1))
	}
	if g.ToImage().GrayAt(2, 1).Y != 200 {
		t.Error("ToImage lost pixel value")
	}
}

func TestGrayFromMat_ROI(t *testing.T) {
	m := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC1)
	defer m.Close()
	m.SetUCharAt(5, 6, 77)

	roi := m.Region(image.Rect(4, 4, 8, 8))
	defer roi.Close()

	g, err := GrayFromMat(roi)
	if err != nil {
		t.Fatalf("GrayFromMat failed: %v", err)
	}
	if g.Width != 4 || g.Height != 4 {
		t.Fatalf("dimensions: got %dx%d, want 4x4", g.Width, g.Height)
	}
	if g.At(2, 1) != 77 {
		t.Errorf("At(2,1): got %d, want 77", g.At(2, 1))
	}
}
