package seedgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/level"
)

// ErrUnknownLevel is reported for jobs whose level is not in the catalog.
var ErrUnknownLevel = errors.New("unknown level")

// ErrPanicked is reported for jobs whose simulation panicked.
var ErrPanicked = errors.New("simulation panicked")

// Levels resolves level descriptors. *level.Catalog implements it.
type Levels interface {
	Lookup(d level.Descriptor) (*level.Level, bool)
}

// Job is one (level, seed) simulation.
type Job struct {
	Level level.Descriptor
	Seed  int32
}

// Run is the outcome of one job.
type Run struct {
	Job    Job
	Events []event.Event
	Result Result
	// Err is the job's own failure. Other jobs are unaffected.
	Err error
}

// RunBatch simulates jobs concurrently with at most workers goroutines and
// returns the runs in job order. Simulations share nothing but the read-only
// levels. Only cancellation of ctx fails the batch.
func RunBatch(ctx context.Context, levels Levels, jobs []Job, workers int) ([]Run, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	runs := make([]Run, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runs[i] = runJob(levels, job)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("running batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("running batch: %w", err)
	}
	return runs, nil
}

func runJob(levels Levels, job Job) (run Run) {
	run.Job = job
	lvl, ok := levels.Lookup(job.Level)
	if !ok {
		run.Err = fmt.Errorf("%s: %w", job.Level, ErrUnknownLevel)
		return run
	}

	rec := event.NewRecorder(64)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("simulation panicked", "level", job.Level, "seed", job.Seed, "panic", r)
			run.Err = fmt.Errorf("%s seed %d: %w: %v", job.Level, job.Seed, ErrPanicked, r)
			run.Events = rec.Events()
		}
	}()

	run.Result, run.Err = Simulate(lvl, job.Seed, rec)
	run.Events = rec.Events()
	return run
}
