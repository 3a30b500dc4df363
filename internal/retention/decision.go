package retention

import (
	"time"

	"github.com/GriffinCanCode/sepia/internal/screen"
)

// Outcome is what happened to one capture.
type Outcome int

const (
	FirstSight Outcome = iota // no baseline yet, retained unconditionally
	Retained                  // changed enough, replaced the baseline
	Discarded                 // near-duplicate, deleted
	Failed                    // save or hash failure, baseline untouched
)

var outcomeNames = [...]string{"first_sight", "retained", "discarded", "failed"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Kept reports whether the capture became the display's baseline.
func (o Outcome) Kept() bool {
	return o == FirstSight || o == Retained
}

// Decision records the engine's verdict on one capture.
type Decision struct {
	Display  screen.DisplayID
	Taken    time.Time
	Outcome  Outcome
	Distance int    // NotCompared unless fingerprints were compared
	Path     string // baseline path after the decision
	Removed  string // file deleted by the decision, if any
	Err      error
}

func (d Decision) outcome(o Outcome, path, removed string) Decision {
	d.Outcome, d.Path, d.Removed = o, path, removed
	return d
}

func (d Decision) fail(err error) Decision {
	d.Outcome, d.Err = Failed, err
	return d
}
