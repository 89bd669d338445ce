package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/term"
)

func TestCompile_Text(t *testing.T) {
	out, err := execute(t, "compile", "testdata/program")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled")
	assert.Contains(t, out, "Agents:  3 (3 delta, 0 zeta, 0 eraser)")
	assert.Contains(t, out, "Redexes: 1")
}

func TestCompile_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "compile", "testdata/program", "--dump")
	require.NoError(t, err)

	resp, result := decodeResponse[CompileResult](t, out)
	assert.Equal(t, "ok", resp.Status)

	want := term.MustHash(term.App(term.Ref("id"), term.Ref("id")))
	assert.Equal(t, want, result.TermHash)
	assert.Equal(t, 3, result.Stats.Deltas)
	assert.Equal(t, 1, result.Stats.Active)
	assert.Contains(t, result.Dump, "delta")
	assert.Contains(t, result.Dump, "active [")
}

func TestCompile_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.txt")

	_, err := execute(t, "compile", "testdata/program", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "freed []")
}

func TestCompile_EntryOverride(t *testing.T) {
	out, err := execute(t, "--format", "json", "compile", "testdata/program", "--entry", "k")
	require.NoError(t, err)

	_, result := decodeResponse[CompileResult](t, out)
	assert.Equal(t, term.MustHash(term.Ref("k")), result.TermHash)
	assert.Equal(t, 0, result.Stats.Active)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
		wantExit int
	}{
		{"unknown entry", []string{"compile", "testdata/program", "--entry", "nope"}, ErrCodeNoEntry, ExitCommandError},
		{"no entry", []string{"compile", "testdata/library.cue"}, ErrCodeNoEntry, ExitCommandError},
		{"not stratified", []string{"compile", "testdata/rejected.cue", "--entry", "user"}, ErrCodeCheck, ExitFailure},
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
