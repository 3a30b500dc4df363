package screen

import (
	"image"

	"github.com/kbinani/screenshot"
)

// displayBackend captures through kbinani/screenshot (X11, macOS, Windows).
type displayBackend struct{}

func (displayBackend) numDisplays() int { return screenshot.NumActiveDisplays() }

func (displayBackend) bounds(i int) image.Rectangle { return screenshot.GetDisplayBounds(i) }

func (displayBackend) capture(rect image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(rect)
}
