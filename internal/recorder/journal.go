package recorder

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/sepia/internal/retention"
	"github.com/GriffinCanCode/sepia/internal/screen"
)

// Entry is one decision as recorded in the journal.
type Entry struct {
	Time     time.Time         `json:"time"`
	Display  string            `json:"display"`
	Outcome  retention.Outcome `json:"outcome"`
	Distance int               `json:"distance"`
	Path     string            `json:"path,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Counts tallies decisions by outcome.
type Counts struct {
	FirstSight int `json:"first_sight"`
	Retained   int `json:"retained"`
	Discarded  int `json:"discarded"`
	Failed     int `json:"failed"`
}

// Journal keeps the most recent decisions and running totals, and fans
// decisions out to an event channel. It implements retention.Observer.
type Journal struct {
	mu       sync.RWMutex
	entries  []Entry
	maxSize  int
	counts   Counts
	latest   map[string]string // display -> baseline path
	eventsCh chan Entry
	closed   bool
}

// NewJournal creates a journal.
func NewJournal(maxEntries, eventBuffer int) *Journal {
	return &Journal{
		entries:  make([]Entry, 0, maxEntries),
		maxSize:  maxEntries,
		latest:   make(map[string]string),
		eventsCh: make(chan Entry, eventBuffer),
	}
}

// Observe records a decision.
func (j *Journal) Observe(d retention.Decision) {
	e := Entry{
		Time:     d.Taken,
		Display:  string(d.Display),
		Outcome:  d.Outcome,
		Distance: d.Distance,
		Path:     d.Path,
	}
	if d.Err != nil {
		e.Error = d.Err.Error()
	}

	j.mu.Lock()
	j.entries = append(j.entries, e)
	if len(j.entries) > j.maxSize {
		j.entries = j.entries[len(j.entries)-j.maxSize:]
	}
	switch d.Outcome {
	case retention.FirstSight:
		j.counts.FirstSight++
	case retention.Retained:
		j.counts.Retained++
	case retention.Discarded:
		j.counts.Discarded++
	case retention.Failed:
		j.counts.Failed++
	}
	if d.Outcome != retention.Failed {
		j.latest[e.Display] = d.Path
	}
	j.emit(e)
	j.mu.Unlock()
}

// Forgot drops a display whose baseline file was removed from storage.
func (j *Journal) Forgot(id screen.DisplayID, path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.latest[string(id)] == path {
		delete(j.latest, string(id))
	}
}

// Close ends the event stream. Decisions observed afterwards are still
// recorded but no longer emitted.
func (j *Journal) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.closed {
		j.closed = true
		close(j.eventsCh)
	}
}

// emit sends an event (non-blocking); slow consumers miss events.
// Callers hold j.mu.
func (j *Journal) emit(e Entry) {
	if j.closed {
		return
	}
	select {
	case j.eventsCh <- e:
	default:
	}
}

// Events returns the channel of journal entries. It is closed by Close.
func (j *Journal) Events() <-chan Entry {
	return j.eventsCh
}

// Recent returns up to n of the newest entries, oldest first.
func (j *Journal) Recent(n int) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if n <= 0 || n > len(j.entries) {
		n = len(j.entries)
	}
	out := make([]Entry, n)
	copy(out, j.entries[len(j.entries)-n:])
	return out
}

// Counts returns the running totals.
func (j *Journal) Counts() Counts {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.counts
}

// Baselines returns the baseline path each display had after its latest
// decision. It is safe to call from any goroutine.
func (j *Journal) Baselines() map[string]string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make(map[string]string, len(j.latest))
	for k, v := range j.latest {
		out[k] = v
	}
	return out
}
