package recorder

import (
	"context"
	"time"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
	"github.com/GriffinCanCode/sepia/internal/retention"
	"github.com/GriffinCanCode/sepia/internal/trace"
)

// QuitSignal is polled once per tick boundary.
type QuitSignal interface {
	Requested() bool
}

// Lifecycle is told when the loop starts and stops.
type Lifecycle interface {
	Started()
	Stopped(err error)
}

// Summary describes a finished run.
type Summary struct {
	Elapsed time.Duration
	Ticks   int
	Counts  Counts
}

// Options configure a Recorder.
type Options struct {
	Interval time.Duration
	Quit     QuitSignal
	// Removed delivers baseline files that vanished from storage; may be nil.
	Removed <-chan string
	// Journal's event stream is closed when Run returns.
	Journal   *Journal
	Lifecycle Lifecycle
}

// Recorder owns the engine and drives it on a fixed interval.
type Recorder struct {
	engine    *retention.Engine
	interval  time.Duration
	quit      QuitSignal
	removed   <-chan string
	journal   *Journal
	lifecycle Lifecycle
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// New creates a recorder. The engine's observer should be opts.Journal for
// the summary counts to be populated.
func New(engine *retention.Engine, opts Options) *Recorder {
	journal := opts.Journal
	if journal == nil {
		journal = NewJournal(JournalMaxEntries, JournalEventBuffer)
	}
	return &Recorder{
		engine:    engine,
		interval:  opts.Interval,
		quit:      opts.Quit,
		removed:   opts.Removed,
		journal:   journal,
		lifecycle: opts.Lifecycle,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// Journal returns the recorder's decision journal.
func (r *Recorder) Journal() *Journal { return r.journal }

// Run ticks until it is told to stop or a tick fails fatally. Quit is only
// observed between ticks; a tick in progress always completes. A fatal
// error (a capture failure) is returned as the run's error; other tick
// errors are logged and the next tick proceeds.
func (r *Recorder) Run(ctx context.Context) (Summary, error) {
	start := r.now()
	log := trace.Logger(ctx)
	if r.lifecycle != nil {
		r.lifecycle.Started()
	}

	var (
		ticks  int
		runErr error
	)
	for {
		if r.quit != nil && r.quit.Requested() {
			log.Info("quit requested, stopping")
			break
		}
		if ctx.Err() != nil {
			log.Info("interrupted, stopping")
			break
		}

		r.drainRemoved(ctx)

		ticks++
		if err := r.tick(ctx, ticks); err != nil {
			if ctx.Err() != nil {
				break
			}
			if apperr.IsFatal(err) {
				runErr = err
				break
			}
			log.Warn("tick failed, continuing", "tick", ticks, "error", err)
		}

		if err := r.sleep(ctx, r.interval); err != nil {
			break
		}
	}

	r.journal.Close()
	if r.lifecycle != nil {
		r.lifecycle.Stopped(runErr)
	}
	return Summary{Elapsed: r.now().Sub(start), Ticks: ticks, Counts: r.journal.Counts()}, runErr
}

func (r *Recorder) tick(ctx context.Context, n int) error {
	ctx, span := trace.StartSpan(ctx, "tick")
	span.SetAttr("tick", n)

	log := trace.Logger(ctx)
	decisions, err := r.engine.Tick(ctx)
	span.End()
	if err != nil {
		span.SetAttr("error", err.Error())
		log.Error("tick failed", "tick", n, "error", err)
		return err
	}

	kept := 0
	for _, d := range decisions {
		if d.Outcome.Kept() {
			kept++
		}
	}
	span.SetAttr("displays", len(decisions))
	span.SetAttr("kept", kept)
	log.Debug("tick complete", "span", span)
	return nil
}

// drainRemoved forgets baselines whose files disappeared since the last tick.
func (r *Recorder) drainRemoved(ctx context.Context) {
	if r.removed == nil {
		return
	}
	for {
		select {
		case path, ok := <-r.removed:
			if !ok {
				r.removed = nil
				return
			}
			r.engine.Forget(ctx, path)
		default:
			return
		}
	}
}

// sleepCtx pauses for d; only ctx cancellation cuts it short.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
