package imaging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// SavedPlate records the files written for one detected plate.
type SavedPlate struct {
	Index         int    `json:"index"`
	OriginalPath  string `json:"original_path"`
	EnhancedPath  string `json:"enhanced_path"`
	AnnotatedPath string `json:"annotated_path,omitempty"`
}

// PlateSaver writes plate crops to a directory with sequential numbering.
//
// The counter belongs to the saver, and the saver belongs to whoever created
// it, so independent scans never share numbering. Files are named
// plate_original_<n>.jpg, plate_enhanced_<n>.jpg and, when an annotated frame
// is supplied, plate_annotated_<n>.jpg. The counter only advances after every
// file of a plate has been written.
//
// PlateSaver is safe for concurrent use.
type PlateSaver struct {
	mu    sync.Mutex
	dir   string
	count int
}

// NewPlateSaver creates dir if needed and returns a saver numbering from 0.
func NewPlateSaver(dir string) (*PlateSaver, error) {
	if dir == "" {
		return nil, errors.New("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &PlateSaver{dir: dir}, nil
}

// Dir returns the output directory.
func (s *PlateSaver) Dir() string {
	return s.dir
}

// Count returns the number of plates saved so far.
func (s *PlateSaver) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Save writes the original crop, its enhanced version and optionally an
// annotated frame. annotated may be nil.
func (s *PlateSaver) Save(original *Frame, enhanced *GrayImage, annotated *Frame) (*SavedPlate, error) {
	if err := original.Validate(); err != nil {
		return nil, fmt.Errorf("cannot save original plate: %w", err)
	}
	if enhanced == nil || enhanced.Width == 0 || enhanced.Height == 0 {
		return nil, errors.New("cannot save empty enhanced plate")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := &SavedPlate{
		Index:        s.count,
		OriginalPath: filepath.Join(s.dir, fmt.Sprintf("plate_original_%d.jpg", s.count)),
		EnhancedPath: filepath.Join(s.dir, fmt.Sprintf("plate_enhanced_%d.jpg", s.count)),
	}

	if err := imaging.Save(original.ToImage(), saved.OriginalPath); err != nil {
		return nil, fmt.Errorf("failed to save original plate: %w", err)
	}
	if err := imaging.Save(enhanced.ToImage(), saved.EnhancedPath); err != nil {
		return nil, fmt.Errorf("failed to save enhanced plate: %w", err)
	}
	if annotated != nil {
		saved.AnnotatedPath = filepath.Join(s.dir, fmt.Sprintf("plate_annotated_%d.jpg", s.count))
		if err := imaging.Save(annotated.ToImage(), saved.AnnotatedPath); err != nil {
			return nil, fmt.Errorf("failed to save annotated frame: %w", err)
		}
	}

	s.count++
	return saved, nil
}
