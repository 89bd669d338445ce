package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/term"
)

// ReduceOptions holds flags for the reduce command. Flags that are set
// override the config file.
type ReduceOptions struct {
	*RootOptions
	ProgramOptions
	Engine   string
	Verify   bool
	MaxSteps int
	Database string
}

// ReduceResult describes a finished run.
type ReduceResult struct {
	RunID    string    `json:"run_id"`
	Engine   string    `json:"engine"`
	FellBack bool      `json:"fell_back"`
	Fallback string    `json:"fallback,omitempty"`
	Rewrites int       `json:"rewrites"`
	Result   string    `json:"result,omitempty"`
	Verified bool      `json:"verified"`
	Stats    net.Stats `json:"stats"`
}

// NewReduceCommand creates the reduce command.
func NewReduceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReduceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reduce <program>",
		Short: "Reduce the entry term to normal form",
		Long: `Check, compile and reduce the entry term of a program.

The accelerated engine falls back to the sequential one if its backend
fails. Runs are recorded in the journal when --db or the config's journal
key names one.

Examples:
  strata reduce ./program
  strata reduce ./program --engine accelerated --verify
  strata reduce ./program.cue --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "reduction engine (sequential|accelerated)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "compare the result with the normalised term")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "rewrite budget of the sequential engine (0 = unbounded; not allowed with --engine accelerated)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run journal")

	return cmd
}

func runReduce(opts *ReduceOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg := opts.Config
	flags := cmd.Flags()
	if flags.Changed("engine") {
		mode, err := engine.ParseMode(opts.Engine)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		cfg.Engine = mode
	}
	if flags.Changed("verify") {
		cfg.Verify = opts.Verify
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = opts.MaxSteps
	}
	if flags.Changed("db") {
		cfg.Journal = opts.Database
	}
	if err := cfg.Validate(); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	prog, entry, err := loadProgram(formatter, path, opts.ProgramOptions)
	if err != nil {
		return err
	}

	engOpts := cfg.EngineOptions(opts.Logger(formatter.GetErrWriter()))
	if cfg.Journal != "" {
		st, err := store.Open(cfg.Journal)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, fmt.Sprintf("failed to open journal: %v", err), nil)
		}
		defer st.Close()
		engOpts = append(engOpts, engine.WithJournal(st))
		formatter.VerboseLog("Recording runs in %s", cfg.Journal)
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := engine.New(engOpts...).Run(ctx, entry, prog.Definitions)
	if err != nil {
		return formatter.Fail(ExitFailure, runErrorCode(err), err.Error(), nil)
	}

	result := ReduceResult{
		RunID:    res.RunID,
		Engine:   string(res.Engine),
		FellBack: res.FellBack,
		Fallback: res.Fallback,
		Rewrites: res.Rewrites,
		Verified: res.Verified,
		Stats:    res.Net.Stats(),
	}
	if res.Term != nil {
		result.Result = term.String(res.Term)
	}

	if formatter.Format == "json" {
		return writeJSON(formatter.Writer, CLIResponse{Status: "ok", Data: result, RunID: result.RunID})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Reduced in %d rewrite(s) on %s\n", result.Rewrites, result.Engine)
	if result.FellBack {
		fmt.Fprintf(w, "  Fell back: %s\n", result.Fallback)
	}
	if result.Result != "" {
		fmt.Fprintf(w, "  Result:    %s\n", result.Result)
	} else {
		fmt.Fprintf(w, "  Result:    net with %d agent(s), not a term\n", result.Stats.Live)
	}
	if result.Verified {
		fmt.Fprintln(w, "  Verified:  matches the normal form")
	}
	formatter.VerboseLog("Run %s", result.RunID)
	return nil
}

// runErrorCode maps a pipeline failure to a CLI error code.
func runErrorCode(err error) string {
	var runErr *engine.RunError
	if !errors.As(err, &runErr) {
		return ErrCodeGeneric
	}
	switch runErr.Code {
	case engine.ErrCodeCheck:
		return ErrCodeCheck
	case engine.ErrCodeCompile:
		return ErrCodeCompile
	case engine.ErrCodeVerify:
		return ErrCodeVerify
	default:
		return ErrCodeReduce
	}
}
