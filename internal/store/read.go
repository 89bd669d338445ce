package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/term"
)

// ReadTerm returns the term stored under hash.
func (s *Store) ReadTerm(ctx context.Context, hash string) (term.Term, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM terms WHERE hash = ?`, hash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read term %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read term %s: %w", hash, err)
	}

	t, err := term.Unmarshal([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("read term %s: %w", hash, err)
	}
	return t, nil
}

const runColumns = `seq, id, term_hash, engine, fell_back, status, error, rewrites, stats, engine_version, started_at, finished_at`

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ReadRuns returns the most recent runs, newest first. A limit of zero
// or less returns every run.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

// ReadRunsForTerm returns every run of the term with the given hash, in
// the order they were written.
func (s *Store) ReadRunsForTerm(ctx context.Context, hash string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE term_hash = ?
		ORDER BY seq ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query runs for term: %w", err)
	}
	return collectRuns(rows)
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r                 Run
		stats             string
		started, finished string
	)
	err := row.Scan(
		&r.Seq,
		&r.ID,
		&r.TermHash,
		&r.Engine,
		&r.FellBack,
		&r.Status,
		&r.Error,
		&r.Rewrites,
		&stats,
		&r.EngineVersion,
		&started,
		&finished,
	)
	if err != nil {
		return Run{}, err
	}

	if r.Stats, err = unmarshalStats(stats); err != nil {
		return Run{}, err
	}
	if r.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if r.FinishedAt, err = parseTime(finished); err != nil {
		return Run{}, err
	}
	return r, nil
}
