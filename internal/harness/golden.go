package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/strata/internal/term"
)

// Snapshot captures what every engine did with a scenario.
// It is serialized as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Runs         []EngineRun `json:"runs"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Only fields that are stable across engines and machines are
// kept: arena layout and slot counts differ between engines.
func (s *Snapshot) toCanonicalMap() map[string]any {
	runs := make([]any, len(s.Runs))
	for i, run := range s.Runs {
		m := map[string]any{
			"engine":    run.Engine,
			"outcome":   run.Outcome,
			"fell_back": run.FellBack,
			"rewrites":  run.Rewrites,
			"live":      run.Stats.Live,
		}
		if run.Error != "" {
			m["error"] = run.Error
		}
		if run.Result != "" {
			m["result"] = run.Result
		}
		runs[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"runs":          runs,
	}
}

// Marshal renders the snapshot as canonical JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return term.MarshalCanonicalValue(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Runs: result.Runs}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
