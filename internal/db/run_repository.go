package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gtfoseed/internal/event"
	"github.com/udisondev/gtfoseed/internal/indexer"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the stored summary of one handled expedition.
type RunRecord struct {
	ID         uuid.UUID
	Level      string
	Seed       int32
	Outcome    string
	Draws      int
	BuildDraws int
	Overflows  int
	// Digest is the blake2b-256 over the binary encoding of the run's events.
	Digest    [32]byte
	Error     string
	CreatedAt time.Time
}

// RunRepository stores runs and their event streams.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores the report and its events in one transaction and returns
// the new run id. Events are stored in their binary encoding.
func (r *RunRepository) SaveRun(ctx context.Context, rep indexer.Report, events []event.Event) (uuid.UUID, error) {
	digest, err := event.Digest(events)
	if err != nil {
		return uuid.Nil, fmt.Errorf("digesting events: %w", err)
	}

	rows := make([][]any, 0, len(events))
	for i, e := range events {
		payload, err := event.MarshalBinary(e)
		if err != nil {
			return uuid.Nil, fmt.Errorf("encoding event %d: %w", i, err)
		}
		rows = append(rows, []any{nil, int32(i), e.Kind.String(), payload})
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generating run id: %w", err)
	}
	for _, row := range rows {
		row[0] = id
	}

	var errText string
	if rep.Err != nil {
		errText = rep.Err.Error()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "run", id, "error", err)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, level, seed, outcome, draws, build_draws, overflows, digest, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, rep.Expedition.Level.String(), rep.Expedition.Seed, rep.Outcome.String(),
		rep.Result.Draws, rep.Result.BuildDraws, rep.Result.Overflows, digest[:], errText,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting run %s: %w", rep.Expedition, err)
	}

	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"run_events"},
			[]string{"run_id", "seq", "kind", "payload"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("copying events of run %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Debug("run stored", "id", id, "expedition", rep.Expedition, "events", len(events))
	return id, nil
}

// ObserveRun stores every handled expedition; it lets the repository serve
// as the hub's run observer.
func (r *RunRepository) ObserveRun(ctx context.Context, rep indexer.Report, events []event.Event) error {
	_, err := r.SaveRun(ctx, rep, events)
	return err
}

const runColumns = `id, level, seed, outcome, draws, build_draws, overflows, digest, error, created_at`

func scanRun(row pgx.Row) (RunRecord, error) {
	var (
		rec    RunRecord
		digest []byte
	)
	err := row.Scan(&rec.ID, &rec.Level, &rec.Seed, &rec.Outcome,
		&rec.Draws, &rec.BuildDraws, &rec.Overflows, &digest, &rec.Error, &rec.CreatedAt)
	if err != nil {
		return rec, err
	}
	if len(digest) != len(rec.Digest) {
		return rec, fmt.Errorf("run %s: digest has %d bytes", rec.ID, len(digest))
	}
	copy(rec.Digest[:], digest)
	return rec, nil
}

// LoadRun returns the run with id.
func (r *RunRepository) LoadRun(ctx context.Context, id uuid.UUID) (RunRecord, error) {
	rec, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("loading run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("loading run %s: %w", id, err)
	}
	return rec, nil
}

// FindRuns returns the runs of level and seed, oldest first.
func (r *RunRepository) FindRuns(ctx context.Context, level string, seed int32) ([]RunRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+runColumns+` FROM runs WHERE level = $1 AND seed = $2 ORDER BY created_at, id`,
		level, seed)
	if err != nil {
		return nil, fmt.Errorf("querying runs of %s/%d: %w", level, seed, err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return out, nil
}

// LoadEvents returns the events of run id in emission order.
func (r *RunRepository) LoadEvents(ctx context.Context, id uuid.UUID) ([]event.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT payload FROM run_events WHERE run_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("querying events of run %s: %w", id, err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		e, _, err := event.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding event %d of run %s: %w", len(events), id, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return events, nil
}

// DeleteRun removes a run and its events.
func (r *RunRepository) DeleteRun(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting run %s: %w", id, ErrRunNotFound)
	}
	return nil
}
