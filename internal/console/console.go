// Package console prints the recorder's user-facing messages.
package console

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	yellow = lipgloss.Color("11")
	red    = lipgloss.Color("9")
	gray   = lipgloss.Color("8")

	keyStyle = lipgloss.NewStyle().
			Foreground(yellow).
			Bold(true)

	quitStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(gray)
)

// Counts is the per-outcome tally shown in the summary.
type Counts struct {
	FirstSight, Retained, Discarded, Failed int
}

// Hint tells the user which key stops the recorder.
func Hint(w io.Writer, key byte) {
	fmt.Fprintf(w, "Press %s to exit\n", keyStyle.Render(string(key)))
}

// Quitting announces shutdown.
func Quitting(w io.Writer) {
	fmt.Fprintln(w, quitStyle.Render("Quitting....!!"))
}

// Summary prints how long the run took and what happened to its captures.
func Summary(w io.Writer, elapsed time.Duration, ticks int, c Counts) {
	fmt.Fprintf(w, "Elapsed: %s\n", elapsed.Round(time.Millisecond))
	kept := c.FirstSight + c.Retained
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(
		"%s ticks, %s kept, %s discarded, %s failed",
		humanize.Comma(int64(ticks)),
		humanize.Comma(int64(kept)),
		humanize.Comma(int64(c.Discarded)),
		humanize.Comma(int64(c.Failed)),
	)))
}
