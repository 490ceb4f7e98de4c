package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/playperu/handover/internal/handover"
)

// completed_at is written as fixed-width UTC text so it sorts lexically. The
// driver reads it back as a timestamp, which database/sql renders in
// RFC 3339 with trailing zeros trimmed, so scanRun parses RFC3339Nano.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, grp, participant, completed_at, failures, average, fastest, slowest, tier)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.Group), run.Participant, run.CompletedAt.UTC().Format(timeLayout),
		run.Failures, run.Average, run.Fastest, run.Slowest, string(run.Tier))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, rec := range run.Reactions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reactions (run_id, position, scenario, seconds)
			VALUES (?, ?, ?, ?)
		`, run.ID, i, rec.Scenario, rec.Seconds)
		if err != nil {
			return fmt.Errorf("inserting reaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, grp, participant, completed_at, failures, average, fastest, slowest, tier
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, err
	}

	reactions, err := s.reactions(ctx, `WHERE run_id = ?`, id)
	if err != nil {
		return Run{}, err
	}
	run.Reactions = reactions[run.ID]
	if run.Reactions == nil {
		run.Reactions = []handover.ReactionRecord{}
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, group handover.Group) ([]Run, error) {
	runs, err := s.runs(ctx, group)
	if err != nil {
		return nil, err
	}

	reactions, err := s.reactions(ctx, `
		JOIN runs ON runs.id = reactions.run_id
		WHERE ? = '' OR runs.grp = ?
	`, string(group), string(group))
	if err != nil {
		return nil, err
	}
	for i := range runs {
		runs[i].Reactions = reactions[runs[i].ID]
		if runs[i].Reactions == nil {
			runs[i].Reactions = []handover.ReactionRecord{}
		}
	}
	return runs, nil
}

// runs drains its rows before returning; an in-memory database has a single
// connection.
func (s *SQLiteStore) runs(ctx context.Context, group handover.Group) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, grp, participant, completed_at, failures, average, fastest, slowest, tier
		FROM runs
		WHERE ? = '' OR grp = ?
		ORDER BY completed_at, id
	`, string(group), string(group))
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// reactions loads reaction rows matching filter, grouped by run in order.
func (s *SQLiteStore) reactions(ctx context.Context, filter string, args ...any) (map[string][]handover.ReactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reactions.run_id, reactions.scenario, reactions.seconds
		FROM reactions
	`+filter+`
		ORDER BY reactions.run_id, reactions.position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reactions: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]handover.ReactionRecord)
	for rows.Next() {
		var runID string
		var rec handover.ReactionRecord
		if err := rows.Scan(&runID, &rec.Scenario, &rec.Seconds); err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		out[runID] = append(out[runID], rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		group, tier string
		completedAt string
	)
	err := row.Scan(&run.ID, &group, &run.Participant, &completedAt,
		&run.Failures, &run.Average, &run.Fastest, &run.Slowest, &tier)
	if err != nil {
		return Run{}, err
	}
	run.Group = handover.Group(group)
	run.Tier = handover.Tier(tier)

	run.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing completed_at %q: %w", completedAt, err)
	}
	return run, nil
}
