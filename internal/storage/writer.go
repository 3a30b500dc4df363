// Package storage persists captures as PNG files in the storage directory.
package storage

import (
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

// Writer saves, loads and deletes capture files inside one directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer for dir. The directory must already exist; see PrepareDir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the storage directory.
func (w *Writer) Dir() string { return w.dir }

// PrepareDir resolves the storage directory, creating it when missing.
// An empty dir means the working directory. A path naming a regular file is a setup error.
func PrepareDir(dir string) (string, error) {
	if dir == "" {
		return ".", nil
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return "", apperr.Newf(apperr.CodeSetup, "cannot store captures in a file, must be a directory: %s", dir)
	case err == nil:
		return dir, nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", apperr.Wrapf(err, apperr.CodeSetup, "create storage directory %s", dir)
		}
		slog.Info("created storage directory", "dir", dir)
		return dir, nil
	default:
		return "", apperr.Wrapf(err, apperr.CodeSetup, "stat storage directory %s", dir)
	}
}

var unsafeChars = strings.NewReplacer("|", "", `\`, "", ":", "", "/", "")

// Sanitize strips the characters | \ : / from s.
func Sanitize(s string) string {
	return unsafeChars.Replace(s)
}

// FileName derives the capture file name for a display and instant.
func FileName(display string, taken time.Time) string {
	return "monitor-" + Sanitize(display+taken.UTC().Format(time.RFC3339Nano)) + ".png"
}

// Save writes img as PNG and returns its path. It never overwrites an existing file.
func (w *Writer) Save(display string, taken time.Time, img image.Image) (string, error) {
	path := filepath.Join(w.dir, FileName(display, taken))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeWrite, "create capture file").WithMetadata("path", path)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", apperr.Wrap(err, apperr.CodeWrite, "encode capture").WithMetadata("path", path)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", apperr.Wrap(err, apperr.CodeWrite, "flush capture").WithMetadata("path", path)
	}

	if info, err := os.Stat(path); err == nil {
		slog.Debug("capture saved", "path", path, "size", humanize.Bytes(uint64(info.Size())))
	}
	return path, nil
}

// Load decodes a previously saved capture.
func (w *Writer) Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeHash, "open stored capture").WithMetadata("path", path)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeHash, "decode stored capture").WithMetadata("path", path)
	}
	return img, nil
}

// Delete removes a capture file.
func (w *Writer) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return apperr.Wrap(err, apperr.CodeDelete, "delete capture").WithMetadata("path", path)
	}
	return nil
}
