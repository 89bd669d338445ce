package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/strata/internal/net"
)

// ErrNotFound is returned when a term or run does not exist.
var ErrNotFound = errors.New("not found")

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one journaled pipeline run.
type Run struct {
	// Seq is assigned by the store on write and ignored on input.
	Seq int64

	ID       string
	TermHash string

	// Engine names the engine that produced the result.
	Engine string

	// FellBack is set when the accelerated engine failed and the
	// sequential engine finished the run.
	FellBack bool

	Status string
	Error  string

	Rewrites int
	Stats    net.Stats

	EngineVersion string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

const timeLayout = time.RFC3339Nano

func marshalStats(s net.Stats) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}
	return string(data), nil
}

func unmarshalStats(data string) (net.Stats, error) {
	var s net.Stats
	if data == "" || data == "{}" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return net.Stats{}, fmt.Errorf("unmarshal stats: %w", err)
	}
	return s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
