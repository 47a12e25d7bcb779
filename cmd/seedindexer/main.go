// Seed indexer: replays level generation for selected expeditions.
//
// Usage:
//
//	seedindexer -level R1A1 -seed 732336958   # one expedition, events to stdout
//	seedindexer -batch < jobs.txt             # "LEVEL SEED" lines, one digest line per job
//	seedindexer                               # serve: read selections from stdin until EOF or signal
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gtfoseed/internal/config"
	"github.com/udisondev/gtfoseed/internal/db"
	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/hub"
	"github.com/udisondev/gtfoseed/internal/indexer"
	"github.com/udisondev/gtfoseed/internal/level"
	"github.com/udisondev/gtfoseed/internal/seedgen"
)

const ConfigPath = "config/seedindexer.yaml"

type options struct {
	configPath string
	level      string
	seed       int
	batch      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", ConfigPath, "config file")
	flag.StringVar(&opts.level, "level", "", "level to generate once, e.g. R1A1")
	flag.IntVar(&opts.seed, "seed", 0, "session seed for -level")
	flag.BoolVar(&opts.batch, "batch", false, "read LEVEL SEED lines from stdin and print one digest per job")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfgPath := opts.configPath
	if p := os.Getenv("SEEDGEN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadIndexer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// logs go to stderr; stdout carries the event stream
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	catalog, err := level.Open(cfg.LevelsPath)
	if err != nil {
		return fmt.Errorf("loading levels: %w", err)
	}
	ix := indexer.New(catalog)

	switch {
	case opts.level != "":
		return runOnce(ix, cfg.Format, opts, os.Stdout)
	case opts.batch:
		return runBatch(ctx, catalog, cfg.Workers, os.Stdin, os.Stdout)
	default:
		return serve(ctx, cfg, ix, os.Stdin, os.Stdout)
	}
}

func runOnce(ix *indexer.Indexer, format event.Format, opts options, out io.Writer) error {
	exp, err := indexer.ParseExpedition(fmt.Sprintf("%s %d", opts.level, opts.seed))
	if err != nil {
		return err
	}

	w := &eventWriter{out: out, format: format}
	ix.Handle(exp, w)
	return w.err
}

func runBatch(ctx context.Context, levels seedgen.Levels, workers int, in io.Reader, out io.Writer) error {
	var jobs []seedgen.Job
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		exp, err := indexer.ParseExpedition(sc.Text())
		if err != nil {
			return err
		}
		jobs = append(jobs, seedgen.Job{Level: exp.Level, Seed: exp.Seed})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading jobs: %w", err)
	}

	runs, err := seedgen.RunBatch(ctx, levels, jobs, workers)
	if err != nil {
		return err
	}

	for _, r := range runs {
		if r.Err != nil {
			fmt.Fprintf(out, "%s %d error %v\n", r.Job.Level, r.Job.Seed, r.Err)
			continue
		}
		digest, err := event.Digest(r.Events)
		if err != nil {
			return fmt.Errorf("digesting %s/%d: %w", r.Job.Level, r.Job.Seed, err)
		}
		fmt.Fprintf(out, "%s %d %x events=%d overflows=%d\n",
			r.Job.Level, r.Job.Seed, digest, len(r.Events), r.Result.Overflows)
	}
	return nil
}

func serve(ctx context.Context, cfg config.Indexer, ix *indexer.Indexer, in io.Reader, out io.Writer) error {
	opts := hub.Options{PollInterval: cfg.PollInterval, QueueSize: cfg.QueueSize}

	if cfg.StoreRuns {
		database, err := db.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		opts.Observer = db.NewRunRepository(database.Pool())
	}

	h := hub.New(ix, opts)
	w := &eventWriter{out: out, format: cfg.Format}
	if _, err := h.Subscribe(hub.Subscriber{Format: cfg.Format, Deliver: w.write}); err != nil {
		return fmt.Errorf("subscribing stdout: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting hub", "interval", cfg.PollInterval, "format", cfg.Format)
		if err := h.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("hub: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			exp, err := indexer.ParseExpedition(sc.Text())
			if err != nil {
				slog.Warn("ignoring selection", "error", err)
				continue
			}
			if err := h.Submit(exp); err != nil {
				slog.Warn("dropping selection", "expedition", exp, "error", err)
			}
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("reading selections: %w", err)
		}
		// drain what is still queued before stopping the hub
		h.Poll(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return w.err
}

// eventWriter writes events to out: JSON one per line, binary back to back.
// It is an event.Sink for one-shot runs and a hub delivery target otherwise.
type eventWriter struct {
	out    io.Writer
	format event.Format
	err    error
}

func (w *eventWriter) Emit(e event.Event) {
	p, err := event.Encode(w.format, e)
	if err != nil {
		w.fail(err)
		return
	}
	w.write(p)
}

func (w *eventWriter) write(p []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.out.Write(p); err != nil {
		w.fail(err)
		return
	}
	if w.format == event.FormatJSON {
		if _, err := io.WriteString(w.out, "\n"); err != nil {
			w.fail(err)
		}
	}
}

func (w *eventWriter) fail(err error) {
	if w.err == nil {
		w.err = fmt.Errorf("writing events: %w", err)
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
