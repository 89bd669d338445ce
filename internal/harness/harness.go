package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/strata/internal/accel"
	"github.com/roach88/strata/internal/compiler"
	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/loader"
	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/stratify"
	"github.com/roach88/strata/internal/term"
	"github.com/roach88/strata/internal/testutil"
)

// RunID is the fixed run ID of every harness run.
const RunID = "harness-run"

// Option configures a harness run.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	backend engine.BackendFactory
}

// WithLogger sets the logger handed to the engines. Default: discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBackend sets the accelerator backend factory.
func WithBackend(f engine.BackendFactory) Option {
	return func(o *options) {
		o.backend = f
	}
}

// Run executes a scenario on each of its engines and checks expectations
// and cross-engine agreement.
//
// The returned error reports a scenario that could not be set up. Assertion
// failures are collected in Result.Errors.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	o := &options{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(o)
	}

	entry, defs, err := resolve(s)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for _, name := range s.Engines {
		mode, err := engine.ParseMode(name)
		if err != nil {
			return nil, err
		}
		run, err := runEngine(ctx, mode, entry, defs, o)
		if err != nil {
			return nil, fmt.Errorf("engine %s: %w", mode, err)
		}
		result.Runs = append(result.Runs, *run)
	}

	for _, run := range result.Runs {
		for _, e := range assertExpect(s.Expect, run) {
			result.AddError(e.Error())
		}
	}
	for _, e := range assertAgreement(result.Runs) {
		result.AddError(e.Error())
	}
	return result, nil
}

// resolve builds the entry term and definitions of s.
func resolve(s *Scenario) (term.Term, term.MapDefinitions, error) {
	defs := term.MapDefinitions{}
	var entry term.Term

	if s.Program != "" {
		prog, err := loader.Load(s.Program)
		if err != nil {
			return nil, nil, fmt.Errorf("load program: %w", err)
		}
		for name, body := range prog.Definitions {
			defs[name] = body
		}
		entry = prog.Entry
	}

	names := make([]string, 0, len(s.Definitions))
	for name := range s.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := term.FromValue(s.Definitions[name])
		if err != nil {
			return nil, nil, fmt.Errorf("definitions.%s: %w", name, err)
		}
		defs[name] = body
	}

	if s.Entry != nil {
		t, err := term.FromValue(s.Entry)
		if err != nil {
			return nil, nil, fmt.Errorf("entry: %w", err)
		}
		entry = t
	}
	if entry == nil {
		return nil, nil, fmt.Errorf("scenario %s has no entry term", s.Name)
	}
	return entry, defs, nil
}

// runEngine runs the entry on one engine against a fresh in-memory journal
// and checks that the journal saw the run.
func runEngine(ctx context.Context, mode engine.Mode, entry term.Term, defs term.Definitions, o *options) (*EngineRun, error) {
	journal, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer journal.Close()

	engOpts := []engine.EngineOption{
		engine.WithMode(mode),
		engine.WithVerify(true),
		engine.WithLogger(o.logger),
		engine.WithRunIDGenerator(engine.NewFixedGenerator(RunID)),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithJournal(journal),
	}
	if o.backend != nil {
		engOpts = append(engOpts, engine.WithBackend(o.backend))
	}
	eng := engine.New(engOpts...)

	run := &EngineRun{Engine: string(mode), Outcome: OutcomeOK}
	res, runErr := eng.Run(ctx, entry, defs)

	recorded, err := journal.ReadRun(ctx, RunID)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	if runErr != nil {
		run.Outcome, run.Error = classify(runErr)
		run.Stats = recorded.Stats
		return run, nil
	}

	run.FellBack = res.FellBack
	run.Rewrites = res.Rewrites
	run.Net = res.Net
	run.Stats = res.Net.Stats()
	if res.Term != nil {
		run.Term = res.Term
		run.Result = term.String(res.Term)
	}
	if recorded.Rewrites != res.Rewrites {
		return nil, fmt.Errorf("journal recorded %d rewrites, engine returned %d", recorded.Rewrites, res.Rewrites)
	}
	return run, nil
}

// classify maps a run error to an outcome and the most specific error code
// found in its chain.
func classify(err error) (outcome, code string) {
	var runErr *engine.RunError
	if !errors.As(err, &runErr) {
		return OutcomeReduceFailed, err.Error()
	}
	switch runErr.Code {
	case engine.ErrCodeCheck:
		outcome = OutcomeCheckFailed
	case engine.ErrCodeCompile:
		outcome = OutcomeCompileFailed
	case engine.ErrCodeVerify:
		outcome = OutcomeVerifyFailed
	default:
		outcome = OutcomeReduceFailed
	}

	var serr *stratify.Error
	var cerr *compiler.CompileError
	var aerr *accel.Error
	switch {
	case errors.As(err, &serr):
		return outcome, string(serr.Code)
	case errors.As(err, &cerr):
		return outcome, string(cerr.Code)
	case errors.As(err, &aerr):
		return outcome, string(aerr.Code)
	case net.IsStepsExceededError(err) || term.IsStepsExceededError(err):
		return outcome, "STEPS_EXCEEDED"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcome, "CANCELLED"
	default:
		return outcome, string(runErr.Code)
	}
}
