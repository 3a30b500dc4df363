// Package quit watches an input stream for the quit key.
package quit

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// DefaultKey requests shutdown.
const DefaultKey = 'q'

// Listener reads single bytes from an input stream until it sees its key.
type Listener struct {
	key       byte
	reqs      chan struct{}
	done      chan struct{}
	requested bool // owned by the polling goroutine
}

// Listen starts reading r in its own goroutine. A read error or EOF stops the
// listener quietly without requesting shutdown.
func Listen(r io.Reader, key byte) *Listener {
	l := &Listener{
		key:  key,
		reqs: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run(r)
	return l
}

func (l *Listener) run(r io.Reader) {
	defer close(l.done)
	buf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			slog.Debug("quit listener stopped", "error", err)
			return
		}
		if buf[0] == l.key {
			slog.Debug("quit key received")
			l.reqs <- struct{}{}
			return
		}
	}
}

// Requested reports, without blocking, whether the quit key has been pressed.
// Once it returns true it keeps returning true.
func (l *Listener) Requested() bool {
	if l.requested {
		return true
	}
	select {
	case <-l.reqs:
		l.requested = true
	default:
	}
	return l.requested
}

// Done is closed when the listener goroutine has exited.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Interactive reports whether f is a terminal a user can type into.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
