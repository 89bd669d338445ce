package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_Text(t *testing.T) {
	out, err := execute(t, "reduce", "testdata/program")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Reduced in 1 rewrite(s) on sequential")
	assert.Contains(t, out, `Result:    \x0. x0`)
	assert.NotContains(t, out, "Verified")
}

func TestReduce_JSON(t *testing.T) {
	for _, engineName := range []string{"sequential", "accelerated"} {
		t.Run(engineName, func(t *testing.T) {
			out, err := execute(t, "--format", "json", "reduce", "testdata/program", "--engine", engineName, "--verify")
			require.NoError(t, err)

			resp, result := decodeResponse[ReduceResult](t, out)
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, result.RunID, resp.RunID)
			assert.NotEmpty(t, result.RunID)
			assert.Equal(t, engineName, result.Engine)
			assert.False(t, result.FellBack)
			assert.Equal(t, 1, result.Rewrites)
			assert.Equal(t, `\x0. x0`, result.Result)
			assert.True(t, result.Verified)
			assert.Equal(t, 1, result.Stats.Live)
		})
	}
}

func TestReduce_FlagsOverrideConfig(t *testing.T) {
	out, err := execute(t, "--config", "testdata/accelerated.toml", "--format", "json",
		"reduce", "testdata/program", "--engine", "sequential", "--verify=false")
	require.NoError(t, err)

	_, result := decodeResponse[ReduceResult](t, out)
	assert.Equal(t, "sequential", result.Engine)
	assert.False(t, result.Verified)
}

func TestReduce_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
		wantExit int
	}{
		{"bad engine", []string{"reduce", "testdata/program", "--engine", "gpu"}, ErrCodeGeneric, ExitCommandError},
		{"negative budget", []string{"reduce", "testdata/program", "--max-steps=-1"}, ErrCodeConfig, ExitCommandError},
		{"budget on accelerated engine", []string{"reduce", "testdata/program", "--engine", "accelerated", "--max-steps", "5"}, ErrCodeConfig, ExitCommandError},
		{"not stratified", []string{"reduce", "testdata/rejected.cue", "--entry", "twice"}, ErrCodeCheck, ExitFailure},
		{"missing program", []string{"reduce", "testdata/none.cue"}, ErrCodeNotFound, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)

			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
		})
	}
}

func TestReduce_JournalAndHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "reduce", "testdata/program", "--db", db)
	require.NoError(t, err)
	_, err = execute(t, "reduce", "testdata/program", "--db", db, "--engine", "accelerated")
	require.NoError(t, err)
	_, err = execute(t, "reduce", "testdata/rejected.cue", "--entry", "twice", "--db", db)
	require.Error(t, err)

	out, err := execute(t, "--format", "json", "history", "--db", db)
	require.NoError(t, err)

	_, history := decodeResponse[HistoryResult](t, out)
	require.Len(t, history.Runs, 3)

	// Newest first.
	assert.Equal(t, "failed", history.Runs[0].Status)
	assert.Contains(t, history.Runs[0].Error, "AFFINE_REUSED")
	assert.Equal(t, "accelerated", history.Runs[1].Engine)
	assert.Equal(t, "ok", history.Runs[1].Status)
	assert.Equal(t, 1, history.Runs[1].Rewrites)
	assert.Equal(t, 1, history.Runs[1].Live)
	assert.Equal(t, "sequential", history.Runs[2].Engine)
	assert.Equal(t, history.Runs[1].TermHash, history.Runs[2].TermHash)

	out, err = execute(t, "--format", "json", "history", "--db", db, "--term", history.Runs[2].TermHash, "--limit", "0")
	require.NoError(t, err)
	_, byTerm := decodeResponse[HistoryResult](t, out)
	require.Len(t, byTerm.Runs, 2)
	assert.Equal(t, "sequential", byTerm.Runs[0].Engine)

	out, err = execute(t, "history", "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "failed")
	assert.NotContains(t, out, "accelerated")
}

func TestHistory_Errors(t *testing.T) {
	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeJournal)

	out, err := execute(t, "history", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}
