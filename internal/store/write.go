package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/strata/internal/term"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteTerm stores t under its content hash and returns the hash.
// Writing the same term twice is a no-op.
func (s *Store) WriteTerm(ctx context.Context, t term.Term) (string, error) {
	return writeTerm(ctx, s.db, t)
}

func writeTerm(ctx context.Context, db execer, t term.Term) (string, error) {
	body, err := term.MarshalCanonical(t)
	if err != nil {
		return "", fmt.Errorf("write term: %w", err)
	}
	hash, err := term.Hash(t)
	if err != nil {
		return "", fmt.Errorf("write term: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO terms (hash, body, format_version)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, string(body), term.FormatVersion)
	if err != nil {
		return "", fmt.Errorf("write term: %w", err)
	}
	return hash, nil
}

// WriteRun appends a run record. The referenced term must already be
// stored (foreign key constraint). Duplicate run IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	return writeRun(ctx, s.db, r)
}

func writeRun(ctx context.Context, db execer, r Run) error {
	if r.Status != StatusOK && r.Status != StatusFailed {
		return fmt.Errorf("write run: invalid status %q", r.Status)
	}

	stats, err := marshalStats(r.Stats)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs
		(id, term_hash, engine, fell_back, status, error, rewrites, stats, engine_version, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.TermHash,
		r.Engine,
		r.FellBack,
		r.Status,
		r.Error,
		r.Rewrites,
		stats,
		r.EngineVersion,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// Record stores t and a run referencing it in one transaction.
// r.TermHash is filled in from t.
func (s *Store) Record(ctx context.Context, t term.Term, r Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	hash, err := writeTerm(ctx, tx, t)
	if err != nil {
		return err
	}
	r.TermHash = hash
	if err := writeRun(ctx, tx, r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
