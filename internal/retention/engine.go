package retention

import (
	"context"
	"errors"
	"image"
	"io/fs"
	"time"

	"github.com/GriffinCanCode/sepia/internal/phash"
	"github.com/GriffinCanCode/sepia/internal/screen"
	"github.com/GriffinCanCode/sepia/internal/trace"
)

// NotCompared is the Decision distance when no comparison took place.
const NotCompared = -1

// Writer persists, reloads and removes capture files.
type Writer interface {
	Save(display string, taken time.Time, img image.Image) (string, error)
	Load(path string) (image.Image, error)
	Delete(path string) error
}

// Hasher fingerprints images and measures fingerprint distance.
type Hasher interface {
	Fingerprint(img image.Image) (phash.Fingerprint, error)
	Distance(a, b phash.Fingerprint) (int, error)
}

// Observer receives every decision the engine makes, and every baseline it
// drops because the file vanished.
type Observer interface {
	Observe(Decision)
	Forgot(id screen.DisplayID, path string)
}

// Options configure the retain/discard policy.
type Options struct {
	// Sensitivity is the minimum distance for a capture to count as changed.
	// Zero disables comparison: every capture is retained.
	Sensitivity int
	Observer    Observer
}

// Engine runs the capture, compare and retain pass for every display.
type Engine struct {
	source      screen.Source
	writer      Writer
	hasher      Hasher
	store       *Store
	compare     bool
	sensitivity int
	observer    Observer
}

// New creates an engine with an empty baseline store.
func New(source screen.Source, writer Writer, hasher Hasher, opts Options) *Engine {
	sensitivity := max(opts.Sensitivity, 0)
	return &Engine{
		source:      source,
		writer:      writer,
		hasher:      hasher,
		store:       NewStore(),
		compare:     sensitivity > 0,
		sensitivity: sensitivity,
		observer:    opts.Observer,
	}
}

// Store exposes the baseline store for inspection.
func (e *Engine) Store() *Store { return e.store }

// Sensitivity returns the effective discard threshold.
func (e *Engine) Sensitivity() int { return e.sensitivity }

// Tick captures every display and processes each capture.
// A capture failure is returned untouched and leaves the store unchanged;
// failures while processing one display are reported in its Decision only.
func (e *Engine) Tick(ctx context.Context) ([]Decision, error) {
	captures, err := e.source.CaptureAll(ctx)
	if err != nil {
		return nil, err
	}

	decisions := make([]Decision, 0, len(captures))
	for _, c := range captures {
		d := e.Process(ctx, c)
		if e.observer != nil {
			e.observer.Observe(d)
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// Process persists one capture and retains or discards it against the
// display's baseline.
func (e *Engine) Process(ctx context.Context, c screen.Capture) Decision {
	log := trace.Logger(ctx).With("display", c.Display)
	d := Decision{Display: c.Display, Taken: c.Taken, Distance: NotCompared}

	newPath, err := e.writer.Save(string(c.Display), c.Taken, c.Image)
	if err != nil {
		log.Error("failed to save capture", "error", err)
		return d.fail(err)
	}

	existing, ok := e.store.Get(c.Display)
	if !ok {
		e.store.Put(c.Display, Entry{Path: newPath})
		log.Info("first capture retained as baseline", "path", newPath)
		return d.outcome(FirstSight, newPath, "")
	}

	if !e.compare {
		e.supersede(ctx, c.Display, existing, Entry{Path: newPath})
		log.Info("capture retained", "path", newPath)
		return d.outcome(Retained, newPath, existing.Path)
	}

	base, err := e.baselineFingerprint(c.Display, existing)
	if errors.Is(err, fs.ErrNotExist) {
		// The baseline file is gone; start over from this capture.
		e.store.Put(c.Display, Entry{Path: newPath})
		log.Warn("baseline file missing, capture retained as new baseline", "missing", existing.Path, "path", newPath)
		return d.outcome(FirstSight, newPath, "")
	}
	if err != nil {
		log.Error("failed to fingerprint baseline", "path", existing.Path, "error", err)
		e.remove(ctx, newPath)
		return d.fail(err)
	}

	fp, err := e.hasher.Fingerprint(c.Image)
	if err != nil {
		log.Error("failed to fingerprint capture", "error", err)
		e.remove(ctx, newPath)
		return d.fail(err)
	}
	score, err := e.hasher.Distance(base, fp)
	if err != nil {
		log.Error("failed to compare fingerprints", "error", err)
		e.remove(ctx, newPath)
		return d.fail(err)
	}
	d.Distance = score

	if score < e.sensitivity {
		e.remove(ctx, newPath)
		log.Debug("capture discarded", "distance", score, "sensitivity", e.sensitivity)
		return d.outcome(Discarded, existing.Path, newPath)
	}

	e.supersede(ctx, c.Display, existing, Entry{Path: newPath, Fingerprint: fp})
	log.Info("capture retained", "distance", score, "sensitivity", e.sensitivity, "path", newPath)
	return d.outcome(Retained, newPath, existing.Path)
}

// Forget drops the baseline whose file has vanished from storage, so the
// display's next capture is treated as a first sighting.
func (e *Engine) Forget(ctx context.Context, path string) bool {
	id, ok := e.store.ForgetPath(path)
	if !ok {
		return false
	}
	trace.Logger(ctx).Warn("baseline file removed externally, display will be re-baselined", "display", id, "path", path)
	if e.observer != nil {
		e.observer.Forgot(id, path)
	}
	return true
}

// baselineFingerprint returns the cached fingerprint, computing it from the
// stored file (and caching it) on first use.
func (e *Engine) baselineFingerprint(id screen.DisplayID, entry Entry) (phash.Fingerprint, error) {
	if entry.Fingerprint.Valid() {
		return entry.Fingerprint, nil
	}
	img, err := e.writer.Load(entry.Path)
	if err != nil {
		return phash.Fingerprint{}, err
	}
	fp, err := e.hasher.Fingerprint(img)
	if err != nil {
		return phash.Fingerprint{}, err
	}
	entry.Fingerprint = fp
	e.store.Put(id, entry)
	return fp, nil
}

// supersede installs next as the baseline and deletes the previous file.
func (e *Engine) supersede(ctx context.Context, id screen.DisplayID, prev, next Entry) {
	e.store.Put(id, next)
	if prev.Path != next.Path {
		e.remove(ctx, prev.Path)
	}
}

// remove deletes a file; failure is only a warning.
func (e *Engine) remove(ctx context.Context, path string) {
	if err := e.writer.Delete(path); err != nil {
		trace.Logger(ctx).Warn("failed to delete capture file", "path", path, "error", err)
	}
}
