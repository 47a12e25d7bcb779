package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gtfoseed/internal/config"
	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/indexer"
	"github.com/udisondev/gtfoseed/internal/level"
)

func newIndexer(t *testing.T) (*indexer.Indexer, *level.Catalog) {
	t.Helper()
	catalog, err := level.Default()
	require.NoError(t, err)
	return indexer.New(catalog), catalog
}

func TestRunOnce_JSON(t *testing.T) {
	ix, _ := newIndexer(t)
	var out bytes.Buffer

	require.NoError(t, runOnce(ix, event.FormatJSON, options{level: "R1A1", seed: 5}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, `{"GenerationStart":"R1A1"}`, lines[0])
	assert.Equal(t, `"GenerationEnd"`, lines[len(lines)-1])
}

func TestRunOnce_Binary(t *testing.T) {
	ix, _ := newIndexer(t)
	var out bytes.Buffer

	require.NoError(t, runOnce(ix, event.FormatBinary, options{level: "R2B1", seed: 5}, &out))

	events, err := event.DecodeAll(out.Bytes())
	require.NoError(t, err)
	want, _ := ix.Record(indexer.Expedition{Level: level.Descriptor{Rundown: level.R2, Tier: 1}, Seed: 5})
	assert.Equal(t, want, events)
}

func TestRunOnce_BadLevel(t *testing.T) {
	ix, _ := newIndexer(t)
	assert.Error(t, runOnce(ix, event.FormatJSON, options{level: "nope"}, &bytes.Buffer{}))
}

func TestRunBatch(t *testing.T) {
	_, catalog := newIndexer(t)
	in := strings.NewReader("R1A1 1\n\nR8E1 2\nSelectExpedition R6D4 3\n")
	var out bytes.Buffer

	require.NoError(t, runBatch(context.Background(), catalog, 2, in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "R1A1 1 "))
	assert.Contains(t, lines[1], "unknown level")
	assert.True(t, strings.HasPrefix(lines[2], "R6D4 3 "))
}

func TestRunBatch_BadLine(t *testing.T) {
	_, catalog := newIndexer(t)
	err := runBatch(context.Background(), catalog, 1, strings.NewReader("R1A1\n"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestServe(t *testing.T) {
	ix, _ := newIndexer(t)
	cfg := config.DefaultIndexer()
	cfg.PollInterval = 5 * time.Millisecond

	in := strings.NewReader("SelectExpedition R1A1 10\ngarbage\nR1B1 11\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, serve(ctx, cfg, ix, in, &out))

	var starts []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if strings.HasPrefix(line, `{"GenerationStart"`) {
			starts = append(starts, line)
		}
	}
	assert.Equal(t, []string{`{"GenerationStart":"R1A1"}`, `{"GenerationStart":"R1B1"}`}, starts)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}
