// Package recorder runs the tick loop: capture, compare, retain, sleep.
package recorder

// Journal configuration constants
const (
	JournalMaxEntries  = 100
	JournalEventBuffer = 100
)
