package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/strata/internal/engine"
)

// Scenario defines a reduction scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is a CUE or JSON program path, resolved relative to the
	// scenario file by LoadScenario.
	Program string `yaml:"program,omitempty"`

	// Definitions are merged over the program's definitions.
	Definitions map[string]any `yaml:"definitions,omitempty"`

	// Entry overrides the program's entry term.
	Entry any `yaml:"entry,omitempty"`

	// Engines lists the engines to run. Default: sequential, accelerated.
	Engines []string `yaml:"engines,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect specifies the expected run outcome. Unset fields are not checked.
type Expect struct {
	// Outcome defaults to "ok".
	Outcome string `yaml:"outcome,omitempty"`

	// Error is the expected error code for failed outcomes.
	Error string `yaml:"error,omitempty"`

	Rewrites *int `yaml:"rewrites,omitempty"`

	// Result is the expected read-back term, compared up to annotations.
	Result any `yaml:"result,omitempty"`

	Live *int `yaml:"live,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Program != "" && !filepath.IsAbs(scenario.Program) {
		scenario.Program = filepath.Join(filepath.Dir(path), scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid,
// and fills in defaults.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program == "" && s.Entry == nil {
		return fmt.Errorf("program or entry is required")
	}
	if s.Program != "" {
		if _, err := os.Stat(s.Program); os.IsNotExist(err) {
			return fmt.Errorf("program not found: %s", s.Program)
		}
	}

	if len(s.Engines) == 0 {
		s.Engines = []string{string(engine.ModeSequential), string(engine.ModeAccelerated)}
	}
	for i, name := range s.Engines {
		if _, err := engine.ParseMode(name); err != nil {
			return fmt.Errorf("engines[%d]: %w", i, err)
		}
	}

	switch s.Expect.Outcome {
	case "":
		s.Expect.Outcome = OutcomeOK
	case OutcomeOK, OutcomeCheckFailed, OutcomeCompileFailed, OutcomeReduceFailed, OutcomeVerifyFailed:
	default:
		return fmt.Errorf("expect.outcome: unknown outcome %q", s.Expect.Outcome)
	}
	if s.Expect.Outcome == OutcomeOK && s.Expect.Error != "" {
		return fmt.Errorf("expect.error given for outcome %q", OutcomeOK)
	}
	return nil
}
