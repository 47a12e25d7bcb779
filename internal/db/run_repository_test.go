package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/indexer"
	"github.com/udisondev/gtfoseed/internal/level"
	"github.com/udisondev/gtfoseed/internal/testutil"
)

func recordRun(t *testing.T, name string, seed int32) ([]event.Event, indexer.Report) {
	t.Helper()
	catalog, err := level.Default()
	require.NoError(t, err)
	d, err := level.ParseDescriptor(name)
	require.NoError(t, err)
	return indexer.New(catalog).Record(indexer.Expedition{Level: d, Seed: seed})
}

func TestRunRepository_SaveAndLoad(t *testing.T) {
	repo := NewRunRepository(testutil.SetupTestDB(t))
	ctx := testutil.ContextWithTimeout(t, testutil.DefaultTimeout)

	events, rep := recordRun(t, "R1A1", 4242)
	id, err := repo.SaveRun(ctx, rep, events)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	rec, err := repo.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "R1A1", rec.Level)
	assert.Equal(t, int32(4242), rec.Seed)
	assert.Equal(t, indexer.Generated.String(), rec.Outcome)
	assert.Equal(t, rep.Result.Draws, rec.Draws)
	assert.Equal(t, rep.Result.BuildDraws, rec.BuildDraws)
	assert.Equal(t, rep.Result.Overflows, rec.Overflows)
	assert.Empty(t, rec.Error)

	digest, err := event.Digest(events)
	require.NoError(t, err)
	assert.Equal(t, digest, rec.Digest)

	stored, err := repo.LoadEvents(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, events, stored)
}

func TestRunRepository_FindRuns(t *testing.T) {
	repo := NewRunRepository(testutil.SetupTestDB(t))
	ctx := testutil.ContextWithTimeout(t, testutil.DefaultTimeout)

	events, rep := recordRun(t, "R2B1", 7)
	require.NoError(t, repo.ObserveRun(ctx, rep, events))
	_, err := repo.SaveRun(ctx, rep, events)
	require.NoError(t, err)

	runs, err := repo.FindRuns(ctx, "R2B1", 7)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, runs[0].Digest, runs[1].Digest, "identical runs have identical digests")

	none, err := repo.FindRuns(ctx, "R2B1", 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRunRepository_FailedAndUnknown(t *testing.T) {
	repo := NewRunRepository(testutil.SetupTestDB(t))
	ctx := testutil.ContextWithTimeout(t, testutil.DefaultTimeout)

	events, rep := recordRun(t, "R8E1", 1)
	require.Equal(t, indexer.UnknownLevel, rep.Outcome)
	id, err := repo.SaveRun(ctx, rep, events)
	require.NoError(t, err)

	rec, err := repo.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "unknown_level", rec.Outcome)

	stored, err := repo.LoadEvents(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []event.Event{event.GenerationStart("R8E1"), event.GenerationEnd()}, stored)

	rep.Outcome = indexer.Failed
	rep.Err = testutil.ErrSimulated
	id, err = repo.SaveRun(ctx, rep, nil)
	require.NoError(t, err)
	rec, err = repo.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, testutil.ErrSimulated.Error(), rec.Error)
	stored, err = repo.LoadEvents(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRunRepository_NotFound(t *testing.T) {
	repo := NewRunRepository(testutil.SetupTestDB(t))
	ctx := context.Background()

	_, err := repo.LoadRun(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, repo.DeleteRun(ctx, uuid.New()), ErrRunNotFound)
}

func TestRunRepository_Delete(t *testing.T) {
	repo := NewRunRepository(testutil.SetupTestDB(t))
	ctx := testutil.ContextWithTimeout(t, testutil.DefaultTimeout)

	events, rep := recordRun(t, "R1B1", 3)
	id, err := repo.SaveRun(ctx, rep, events)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRun(ctx, id))
	stored, err := repo.LoadEvents(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
