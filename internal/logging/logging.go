// Package logging configures the process-wide slog logger.
//
// Records go to the console and to a log file (sepia.log by default), both in
// slog's text format. Every record carries the session id of this run.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

// Options control logger setup.
type Options struct {
	Verbose bool
	File    string    // empty disables file output
	Console io.Writer // defaults to os.Stdout
}

// Logger is the configured logger plus the resources backing it.
type Logger struct {
	*slog.Logger
	Session string
	file    *os.File
}

// New builds the logger. It does not install it as the default; see Install.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	out := console
	var file *os.File
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, apperr.Wrapf(err, apperr.CodeSetup, "create log directory %s", dir)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, apperr.Wrapf(err, apperr.CodeSetup, "open log file %s", opts.File)
		}
		file = f
		out = io.MultiWriter(console, f)
	}

	session := uuid.NewString()
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger:  slog.New(handler).With("session", session),
		Session: session,
		file:    file,
	}, nil
}

// Install makes l the slog default.
func (l *Logger) Install() {
	slog.SetDefault(l.Logger)
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
