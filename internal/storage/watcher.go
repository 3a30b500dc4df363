package storage

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

// RemovedBuffer bounds the backlog of vanished-file notifications.
const RemovedBuffer = 256

// Watcher reports capture files that disappear from the storage directory
// (removed or renamed away by something other than the recorder).
type Watcher struct {
	fs      *fsnotify.Watcher
	removed chan string
	done    chan struct{}
}

// Watch starts watching dir.
func Watch(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeSetup, "create storage watcher")
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, apperr.Wrapf(err, apperr.CodeSetup, "watch storage directory %s", dir)
	}

	w := &Watcher{
		fs:      fw,
		removed: make(chan string, RemovedBuffer),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Removed delivers paths of vanished capture files. The channel closes when the watcher stops.
func (w *Watcher) Removed() <-chan string { return w.removed }

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.removed)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if filepath.Ext(ev.Name) != ".png" {
				continue
			}
			select {
			case w.removed <- filepath.Clean(ev.Name):
			default:
				slog.Warn("storage watcher backlog full, dropping notification", "path", ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("storage watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
