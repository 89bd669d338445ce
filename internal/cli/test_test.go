package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

func TestTest_HarnessScenarios(t *testing.T) {
	out, err := execute(t, "test", harnessScenarios)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ identity_chain")
	assert.Contains(t, out, "✓ shared_identity")
	assert.Contains(t, out, "✓ affine_violation")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTest_FilterJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", harnessScenarios, "--filter", "identity*")
	require.NoError(t, err)

	resp, result := decodeResponse[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "identity_chain", result.Scenarios[0].Name)
}

func TestTest_GoldenUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	scenario := `
name: lone_identity
description: "an identity in normal form"
entry: {lambda: {body: {variable: 0}}}
expect:
  rewrites: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lone_identity.yaml"), []byte(scenario), 0644))

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")

	golden := filepath.Join(dir, "golden", "lone_identity.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"lone_identity"`)

	_, err = execute(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte(`{}`), 0644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `
name: wrong_count
description: "expects a rewrite that never happens"
entry: {lambda: {body: {variable: 0}}}
expect:
  rewrites: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_count.yaml"), []byte(scenario), 0644))

	out, err := execute(t, "--format", "json", "test", dir)

	require.Error(t, err)
	resp, result := decodeResponse[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTest, resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
}

func TestTest_Errors(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
