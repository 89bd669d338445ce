// Package config loads reduction settings from TOML.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/strata/internal/accel"
	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/term"
)

// Config holds the reduction settings.
type Config struct {
	Engine engine.Mode

	// MaxSteps bounds sequential rewrites. Zero runs to normal form. The
	// accelerated engine has no bound, so Validate rejects both together.
	MaxSteps int

	// NormalizeSteps is the quota of term normalisation.
	NormalizeSteps int

	Verify bool

	// Journal is the SQLite journal path. Empty disables journaling.
	Journal string

	Accelerator AcceleratorConfig
}

// AcceleratorConfig configures the host backend.
type AcceleratorConfig struct {
	// Workers bounds concurrent workgroups. Zero uses GOMAXPROCS.
	Workers int

	// MaxAgents bounds the agent arena. Zero leaves it unbounded.
	MaxAgents int
}

type fileConfig struct {
	Engine         string `toml:"engine"`
	MaxSteps       int    `toml:"max_steps"`
	NormalizeSteps int    `toml:"normalize_steps"`
	Verify         bool   `toml:"verify"`
	Journal        string `toml:"journal"`
	Accelerator    struct {
		Workers   int `toml:"workers"`
		MaxAgents int `toml:"max_agents"`
	} `toml:"accelerator"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Engine:         engine.ModeSequential,
		NormalizeSteps: term.DefaultMaxSteps,
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default; unknown keys are an error.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return fromFile(raw, meta)
}

// Parse is Load for in-memory TOML.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return fromFile(raw, meta)
}

func fromFile(raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	cfg := Default()
	if meta.IsDefined("engine") {
		mode, err := engine.ParseMode(strings.TrimSpace(raw.Engine))
		if err != nil {
			return Config{}, fmt.Errorf("config engine: %w", err)
		}
		cfg.Engine = mode
	}
	if meta.IsDefined("max_steps") {
		cfg.MaxSteps = raw.MaxSteps
	}
	if meta.IsDefined("normalize_steps") {
		cfg.NormalizeSteps = raw.NormalizeSteps
	}
	if meta.IsDefined("verify") {
		cfg.Verify = raw.Verify
	}
	if meta.IsDefined("journal") {
		cfg.Journal = strings.TrimSpace(raw.Journal)
	}
	if meta.IsDefined("accelerator", "workers") {
		cfg.Accelerator.Workers = raw.Accelerator.Workers
	}
	if meta.IsDefined("accelerator", "max_agents") {
		cfg.Accelerator.MaxAgents = raw.Accelerator.MaxAgents
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := engine.ParseMode(string(c.Engine)); err != nil {
		return fmt.Errorf("config engine: %w", err)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("config max_steps must not be negative, got %d", c.MaxSteps)
	}
	if c.MaxSteps > 0 && c.Engine == engine.ModeAccelerated {
		return fmt.Errorf("config max_steps applies to the sequential engine only; the accelerated engine runs to normal form")
	}
	if c.NormalizeSteps < 0 {
		return fmt.Errorf("config normalize_steps must not be negative, got %d", c.NormalizeSteps)
	}
	if c.Accelerator.Workers < 0 {
		return fmt.Errorf("config accelerator.workers must not be negative, got %d", c.Accelerator.Workers)
	}
	if c.Accelerator.MaxAgents < 0 {
		return fmt.Errorf("config accelerator.max_agents must not be negative, got %d", c.Accelerator.MaxAgents)
	}
	return nil
}

// EngineOptions translates the settings into engine options. The journal
// is opened by the caller.
func (c Config) EngineOptions(logger *slog.Logger) []engine.EngineOption {
	workers, maxAgents := c.Accelerator.Workers, c.Accelerator.MaxAgents
	return []engine.EngineOption{
		engine.WithMode(c.Engine),
		engine.WithMaxSteps(c.MaxSteps),
		engine.WithNormalizeSteps(c.NormalizeSteps),
		engine.WithVerify(c.Verify),
		engine.WithLogger(logger),
		engine.WithBackend(func() (accel.Backend, error) {
			return accel.NewHostBackend(
				accel.WithWorkers(workers),
				accel.WithMaxAgents(maxAgents),
				accel.WithHostLogger(logger),
			)
		}),
	}
}
