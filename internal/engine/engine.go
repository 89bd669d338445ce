package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/strata/internal/accel"
	"github.com/roach88/strata/internal/compiler"
	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/stratify"
	"github.com/roach88/strata/internal/term"
)

// Mode selects the reduction engine.
type Mode string

const (
	ModeSequential  Mode = "sequential"
	ModeAccelerated Mode = "accelerated"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeAccelerated:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown engine %q (want %q or %q)", s, ModeSequential, ModeAccelerated)
	}
}

// BackendFactory opens a fresh accelerator backend for one run.
type BackendFactory func() (accel.Backend, error)

// Journal records runs. *store.Store implements it.
type Journal interface {
	Record(ctx context.Context, t term.Term, r store.Run) error
}

// Engine runs terms through the pipeline.
//
// Thread-safety: an Engine holds no per-run state and may run terms from
// several goroutines, provided its RunIDGenerator, Clock and Journal are
// safe for concurrent use.
type Engine struct {
	mode           Mode
	maxSteps       int
	normalizeSteps int
	verify         bool
	backend        BackendFactory
	logger         *slog.Logger
	runIDs         RunIDGenerator
	clock          Clock
	journal        Journal
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMode selects the reduction engine. Default: ModeSequential.
func WithMode(m Mode) EngineOption {
	return func(e *Engine) {
		e.mode = m
	}
}

// WithBackend sets how accelerated runs open their backend.
// Default: a HostBackend with GOMAXPROCS workers.
func WithBackend(f BackendFactory) EngineOption {
	return func(e *Engine) {
		e.backend = f
	}
}

// WithMaxSteps bounds the rewrites of the sequential engine, including a
// sequential fallback. The accelerated engine always runs to normal form.
// Zero, the default, runs to normal form.
func WithMaxSteps(maxSteps int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithNormalizeSteps sets the step quota of term normalisation used by
// verification. Default: term.DefaultMaxSteps.
func WithNormalizeSteps(steps int) EngineOption {
	return func(e *Engine) {
		e.normalizeSteps = steps
	}
}

// WithVerify compares every read-back result with the term's normal form.
func WithVerify(verify bool) EngineOption {
	return func(e *Engine) {
		e.verify = verify
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRunIDGenerator sets the run ID source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithClock sets the clock used to stamp journal rows.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithJournal records every run in j.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// New creates an Engine.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		mode:           ModeSequential,
		normalizeSteps: term.DefaultMaxSteps,
		logger:         slog.Default(),
		runIDs:         UUIDv7Generator{},
		clock:          SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend == nil {
		logger := e.logger
		e.backend = func() (accel.Backend, error) {
			return accel.NewHostBackend(accel.WithHostLogger(logger))
		}
	}
	return e
}

// Result is the outcome of a successful run.
type Result struct {
	RunID string

	// Engine is the engine that produced Net.
	Engine Mode

	// FellBack is set when the accelerated engine failed and the
	// sequential engine produced the result. Fallback holds the reason.
	FellBack bool
	Fallback string

	Rewrites int

	// Net is the reduced net.
	Net *net.Net

	// Term is Net read back, or nil when the net holds agents other
	// than abstractions and applications.
	Term term.Term

	// Verified is set when Term was compared against the normal form of
	// the input and matched.
	Verified bool
}

// Run checks, compiles and reduces t.
func (e *Engine) Run(ctx context.Context, t term.Term, defs term.Definitions) (*Result, error) {
	res := &Result{RunID: e.runIDs.Generate(), Engine: e.mode}
	started := e.clock.Now()
	logger := e.logger.With("run", res.RunID)

	err := e.run(ctx, logger, t, defs, res)
	if jerr := e.record(ctx, t, res, err, started); jerr != nil {
		return nil, jerr
	}
	if err != nil {
		logger.Info("run failed", "error", err)
		return nil, err
	}

	logger.Info("run finished",
		"engine", res.Engine,
		"fell_back", res.FellBack,
		"rewrites", res.Rewrites,
		"live", res.Net.Live())
	return res, nil
}

func (e *Engine) run(ctx context.Context, logger *slog.Logger, t term.Term, defs term.Definitions, res *Result) error {
	s, err := stratify.Check(t, defs)
	if err != nil {
		return &RunError{Code: ErrCodeCheck, RunID: res.RunID, Err: err}
	}
	logger.Debug("term checked")

	n, err := compiler.CompileNet(s)
	if err != nil {
		return &RunError{Code: ErrCodeCompile, RunID: res.RunID, Err: err}
	}
	logger.Debug("term compiled", "agents", n.Live(), "redexes", len(n.Active))

	if err := e.reduce(ctx, logger, n, res); err != nil {
		return &RunError{Code: ErrCodeReduce, RunID: res.RunID, Err: err}
	}

	back, err := compiler.ReadBack(res.Net)
	if err != nil {
		logger.Debug("result not read back", "error", err)
		return nil
	}
	res.Term = back

	if e.verify {
		if err := e.verifyResult(s, back); err != nil {
			return &RunError{Code: ErrCodeVerify, RunID: res.RunID, Err: err}
		}
		res.Verified = true
	}
	return nil
}

// reduce leaves n untouched when the accelerated engine runs, so the
// fallback starts from the compiled net.
func (e *Engine) reduce(ctx context.Context, logger *slog.Logger, n *net.Net, res *Result) error {
	if e.mode == ModeAccelerated {
		out, rewrites, err := e.reduceAccelerated(ctx, logger, n)
		if err == nil {
			res.Net, res.Rewrites = out, rewrites
			return nil
		}
		if !accel.IsAcceleratedError(err) {
			return err
		}
		logger.Warn("accelerated engine failed, falling back to sequential", "error", err)
		res.Engine = ModeSequential
		res.FellBack = true
		res.Fallback = err.Error()
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	rewrites, err := n.ReduceBounded(e.maxSteps)
	if err != nil {
		return err
	}
	res.Net, res.Rewrites = n, rewrites
	return nil
}

func (e *Engine) reduceAccelerated(ctx context.Context, logger *slog.Logger, n *net.Net) (*net.Net, int, error) {
	backend, err := e.backend()
	if err != nil {
		if !accel.IsAcceleratedError(err) {
			err = &accel.Error{Code: accel.ErrCodeNoSuitableDevice, Err: err}
		}
		return nil, 0, err
	}
	a, err := accel.New(n, backend, accel.WithLogger(logger))
	if err != nil {
		if cerr := backend.Close(); cerr != nil {
			logger.Debug("close backend", "error", cerr)
		}
		return nil, 0, err
	}
	defer a.Close()

	rewrites, err := a.ReduceAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	logger.Debug("accelerated reduction done", "rounds", a.Rounds())

	out, err := a.IntoNet()
	if err != nil {
		return nil, 0, err
	}
	return out, rewrites, nil
}

// verifyResult compares the read-back result with the normal form of the
// checked term. Both sides are compared in their runtime shape.
func (e *Engine) verifyResult(s *stratify.Stratified, back term.Term) error {
	if err := s.Normalize(term.WithMaxSteps(e.normalizeSteps)); err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	want := term.Erase(s.Term())
	if !term.Equal(want, term.Erase(back)) {
		return fmt.Errorf("net reduced to %s, normal form is %s", term.String(back), term.String(want))
	}
	return nil
}

func (e *Engine) record(ctx context.Context, t term.Term, res *Result, runErr error, started time.Time) error {
	if e.journal == nil || t == nil {
		return nil
	}

	r := store.Run{
		ID:            res.RunID,
		Engine:        string(res.Engine),
		FellBack:      res.FellBack,
		Status:        store.StatusOK,
		Rewrites:      res.Rewrites,
		EngineVersion: term.EngineVersion,
		StartedAt:     started,
		FinishedAt:    e.clock.Now(),
	}
	if res.Net != nil {
		r.Stats = res.Net.Stats()
	}
	if runErr != nil {
		r.Status = store.StatusFailed
		r.Error = runErr.Error()
	}

	if err := e.journal.Record(ctx, t, r); err != nil {
		return fmt.Errorf("journal run %s: %w", res.RunID, err)
	}
	return nil
}

// Reduce runs a precompiled net on the configured engine without
// journaling. n is reduced in place by the sequential engine; the
// accelerated engine leaves it untouched and returns a new net.
func (e *Engine) Reduce(ctx context.Context, n *net.Net) (*Result, error) {
	res := &Result{RunID: e.runIDs.Generate(), Engine: e.mode}
	if err := e.reduce(ctx, e.logger.With("run", res.RunID), n, res); err != nil {
		return nil, &RunError{Code: ErrCodeReduce, RunID: res.RunID, Err: err}
	}
	return res, nil
}

var _ Journal = (*store.Store)(nil)
