// Package indexer is the entry point for selected expeditions: it resolves
// the level, runs the simulation and brackets its output with lifecycle
// events.
package indexer

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/level"
	"github.com/udisondev/gtfoseed/internal/seedgen"
)

// Expedition is a selected level together with the session seed.
type Expedition struct {
	Level level.Descriptor
	Seed  int32
}

// String formats the expedition for logs.
func (e Expedition) String() string {
	return fmt.Sprintf("%s/%d", e.Level, e.Seed)
}

// selectToken is the optional leading token of a tokenized selection line.
const selectToken = "SelectExpedition"

// ParseExpedition parses a tokenized selection: "LEVEL SEED", optionally
// preceded by SelectExpedition, e.g. "SelectExpedition R1A1 732336958".
func ParseExpedition(line string) (Expedition, error) {
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == selectToken {
		fields = fields[1:]
	}
	if len(fields) != 2 {
		return Expedition{}, fmt.Errorf("parsing expedition %q: want level and seed", line)
	}

	d, err := level.ParseDescriptor(fields[0])
	if err != nil {
		return Expedition{}, fmt.Errorf("parsing expedition %q: %w", line, err)
	}
	seed, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return Expedition{}, fmt.Errorf("parsing expedition %q: seed: %w", line, err)
	}
	return Expedition{Level: d, Seed: int32(seed)}, nil
}

// Outcome describes how an expedition was handled.
type Outcome uint8

const (
	// Generated means the simulation ran to the end.
	Generated Outcome = iota
	// UnknownLevel means the level is not in the catalog and only the
	// lifecycle markers were emitted.
	UnknownLevel
	// Failed means the simulation stopped on malformed data.
	Failed
)

var outcomeNames = [...]string{"generated", "unknown_level", "failed"}

// String returns the outcome name.
func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Report is the summary of one handled expedition.
type Report struct {
	Expedition Expedition
	Outcome    Outcome
	Result     seedgen.Result
	Err        error
}

// Indexer handles expeditions against a level catalog.
// It is safe for concurrent use.
type Indexer struct {
	levels seedgen.Levels
}

// New creates an indexer over levels.
func New(levels seedgen.Levels) *Indexer {
	return &Indexer{levels: levels}
}

// Handle simulates exp and writes its events to sink, starting with
// GenerationStart and ending with GenerationEnd. An unknown level produces
// only the two markers. A failed simulation keeps the events produced so far
// and adds ProcessFailed before GenerationEnd.
func (ix *Indexer) Handle(exp Expedition, sink event.Sink) (rep Report) {
	rep.Expedition = exp
	name := exp.Level.String()

	sink.Emit(event.GenerationStart(name))
	defer sink.Emit(event.GenerationEnd())

	lvl, ok := ix.levels.Lookup(exp.Level)
	if !ok {
		slog.Warn("no level data", "level", name, "seed", exp.Seed)
		rep.Outcome = UnknownLevel
		return rep
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("simulation panicked", "level", name, "seed", exp.Seed, "panic", r)
			sink.Emit(event.ProcessFailed())
			rep.Outcome = Failed
			rep.Err = fmt.Errorf("simulating %s: panic: %v", exp, r)
		}
	}()

	res, err := seedgen.Simulate(lvl, exp.Seed, sink)
	rep.Result = res
	if err != nil {
		slog.Warn("simulation failed", "level", name, "seed", exp.Seed, "error", err)
		sink.Emit(event.ProcessFailed())
		rep.Outcome = Failed
		rep.Err = err
		return rep
	}

	slog.Info("expedition generated",
		"level", name,
		"seed", exp.Seed,
		"draws", res.Draws,
		"overflows", res.Overflows)
	rep.Outcome = Generated
	return rep
}

// Record handles exp into a fresh recorder and returns its events.
func (ix *Indexer) Record(exp Expedition) ([]event.Event, Report) {
	rec := event.NewRecorder(64)
	rep := ix.Handle(exp, rec)
	return rec.Events(), rep
}
