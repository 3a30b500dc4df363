// Package retention decides, capture by capture, whether a new screen image
// is kept as the display's baseline or discarded as a near-duplicate.
package retention

import (
	"github.com/GriffinCanCode/sepia/internal/phash"
	"github.com/GriffinCanCode/sepia/internal/screen"
)

// Entry is a display's current baseline: the file on disk and, once known,
// its fingerprint.
type Entry struct {
	Path        string
	Fingerprint phash.Fingerprint // zero until computed
}

// Store maps each display to its baseline. It is owned by one goroutine.
type Store struct {
	entries map[screen.DisplayID]Entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[screen.DisplayID]Entry)}
}

// Get returns the display's baseline, if any.
func (s *Store) Get(id screen.DisplayID) (Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Put installs e as the display's baseline, replacing any previous entry.
func (s *Store) Put(id screen.DisplayID, e Entry) {
	s.entries[id] = e
}

// ForgetPath drops the entry whose baseline file is path and reports the display.
func (s *Store) ForgetPath(path string) (screen.DisplayID, bool) {
	for id, e := range s.entries {
		if e.Path == path {
			delete(s.entries, id)
			return id, true
		}
	}
	return "", false
}

// Len returns the number of displays with a baseline.
func (s *Store) Len() int { return len(s.entries) }

// Snapshot returns display → baseline path, for reporting.
func (s *Store) Snapshot() map[screen.DisplayID]string {
	out := make(map[screen.DisplayID]string, len(s.entries))
	for id, e := range s.entries {
		out[id] = e.Path
	}
	return out
}
