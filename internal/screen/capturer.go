// Package screen captures every attached display as a raster image.
package screen

import (
	"context"
	"fmt"
	"image"
	"time"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

// DisplayID identifies a monitor within one process run.
type DisplayID string

// Capture is one display's image taken at one instant.
type Capture struct {
	Display DisplayID
	Taken   time.Time
	Image   image.Image
}

// Source produces one Capture per attached display.
type Source interface {
	CaptureAll(ctx context.Context) ([]Capture, error)
}

// backend implements platform-specific raw capture
type backend interface {
	numDisplays() int
	bounds(i int) image.Rectangle
	capture(rect image.Rectangle) (*image.RGBA, error)
}

// Screens is the Source backed by the platform's display APIs.
type Screens struct {
	backend
	now func() time.Time
}

// New creates a Source for the current platform.
func New() *Screens {
	return newScreens(displayBackend{})
}

func newScreens(b backend) *Screens {
	return &Screens{backend: b, now: time.Now}
}

// Available reports a setup error when no display can be captured.
func (s *Screens) Available() error {
	if s.numDisplays() <= 0 {
		return apperr.New(apperr.CodeSetup, "no active displays found")
	}
	return nil
}

// CaptureAll captures every display. It returns all captures or none: a
// failure on any display fails the whole call.
func (s *Screens) CaptureAll(ctx context.Context) ([]Capture, error) {
	n := s.numDisplays()
	if n <= 0 {
		return nil, apperr.New(apperr.CodeCapture, "no active displays found")
	}

	taken := s.now()
	captures := make([]Capture, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Wrap(err, apperr.CodeCapture, "capture cancelled")
		}
		rect := s.bounds(i)
		id := displayID(i, rect)
		img, err := s.capture(rect)
		if err != nil {
			return nil, apperr.Wrapf(err, apperr.CodeCapture, "capture display %d", i).
				WithMetadata("display", string(id))
		}
		captures = append(captures, Capture{Display: id, Taken: taken, Image: img})
	}
	return captures, nil
}

// displayID names a display by index and geometry, e.g. "Display 1 [0,0 1920x1080]".
func displayID(i int, r image.Rectangle) DisplayID {
	return DisplayID(fmt.Sprintf("Display %d [%d,%d %dx%d]", i+1, r.Min.X, r.Min.Y, r.Dx(), r.Dy()))
}
