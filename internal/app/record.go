package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/sepia/internal/config"
	"github.com/GriffinCanCode/sepia/internal/console"
	"github.com/GriffinCanCode/sepia/internal/control"
	"github.com/GriffinCanCode/sepia/internal/logging"
	"github.com/GriffinCanCode/sepia/internal/monitor"
	"github.com/GriffinCanCode/sepia/internal/phash"
	"github.com/GriffinCanCode/sepia/internal/quit"
	"github.com/GriffinCanCode/sepia/internal/recorder"
	"github.com/GriffinCanCode/sepia/internal/retention"
	"github.com/GriffinCanCode/sepia/internal/screen"
	"github.com/GriffinCanCode/sepia/internal/storage"
	"github.com/GriffinCanCode/sepia/internal/trace"
)

// displays is the capture source plus its setup check.
type displays interface {
	screen.Source
	Available() error
}

// environment is what the recorder touches outside the config.
type environment struct {
	displays    displays
	stdin       io.Reader
	stdout      io.Writer
	interactive bool
}

func defaultEnvironment() environment {
	return environment{
		displays:    screen.New(),
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		interactive: quit.Interactive(os.Stdin),
	}
}

// newEngine builds the retention engine the config describes, writing into dir.
func newEngine(cfg *config.Config, src screen.Source, dir string, obs retention.Observer) (*retention.Engine, *phash.Hasher, error) {
	hasher, err := phash.New(phash.Kind(cfg.HashKind))
	if err != nil {
		return nil, nil, err
	}
	engine := retention.New(src, storage.NewWriter(dir), hasher, retention.Options{
		Sensitivity: cfg.EffectiveSensitivity(),
		Observer:    obs,
	})
	return engine, hasher, nil
}

// runRecord sets everything up, runs the capture loop until it is stopped,
// and prints the run summary.
func runRecord(ctx context.Context, cfg *config.Config, env environment) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.New(logging.Options{Verbose: cfg.Verbose, File: cfg.LogFile, Console: env.stdout})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	logger.Install()

	ctx = trace.WithContext(ctx, trace.New())
	log := trace.Logger(ctx)

	dir, err := storage.PrepareDir(cfg.Dir)
	if err != nil {
		return err
	}
	if err := env.displays.Available(); err != nil {
		return err
	}
	journal := recorder.NewJournal(recorder.JournalMaxEntries, recorder.JournalEventBuffer)
	engine, hasher, err := newEngine(cfg, env.displays, dir, journal)
	if err != nil {
		return err
	}

	opts := recorder.Options{
		Interval: cfg.Interval(),
		Quit:     quit.Listen(env.stdin, quit.DefaultKey),
		Journal:  journal,
	}

	watcher, err := storage.Watch(dir)
	if err != nil {
		log.Warn("baseline watcher unavailable, externally deleted baselines will not be noticed", "error", err)
	} else {
		defer func() { _ = watcher.Close() }()
		opts.Removed = watcher.Removed()
	}

	surfaces, stopSurfaces := context.WithCancel(ctx)
	defer stopSurfaces()

	if cfg.GRPCAddr != "" {
		ctl := control.New()
		opts.Lifecycle = ctl
		go func() {
			if err := ctl.Serve(surfaces, cfg.GRPCAddr); err != nil {
				log.Error("control server error", "addr", cfg.GRPCAddr, "error", err)
			}
		}()
	}
	if cfg.MonitorAddr != "" {
		mon := monitor.New(journal, logger.Session)
		go func() {
			if err := mon.Serve(surfaces, cfg.MonitorAddr); err != nil {
				log.Error("monitor server error", "addr", cfg.MonitorAddr, "error", err)
			}
		}()
	}

	if env.interactive {
		console.Hint(env.stdout, quit.DefaultKey)
	}
	log.Info("recording started",
		"dir", dir,
		"interval", cfg.Interval(),
		"motion_triggered", cfg.MotionTriggered,
		"sensitivity", engine.Sensitivity(),
		"hash", hasher.Kind())

	summary, err := recorder.New(engine, opts).Run(ctx)
	if err != nil {
		return err
	}

	console.Quitting(env.stdout)
	console.Summary(env.stdout, summary.Elapsed, summary.Ticks, console.Counts{
		FirstSight: summary.Counts.FirstSight,
		Retained:   summary.Counts.Retained,
		Discarded:  summary.Counts.Discarded,
		Failed:     summary.Counts.Failed,
	})
	return nil
}
