package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/term"
	"github.com/roach88/strata/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a successful run with minimal required fields.
func createTestRun(id, termHash string, clock *testutil.DeterministicClock) Run {
	return Run{
		ID:            id,
		TermHash:      termHash,
		Engine:        "sequential",
		Status:        StatusOK,
		Rewrites:      1,
		Stats:         net.Stats{Slots: 4, Live: 1, Deltas: 1, Freed: 2},
		EngineVersion: term.EngineVersion,
		StartedAt:     clock.Now(),
		FinishedAt:    clock.Now().Add(time.Millisecond),
	}
}

// verifyPragma checks that a pragma is set to the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
