package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/compiler"
	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/stratify"
	"github.com/roach88/strata/internal/term"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	ProgramOptions
	Output string // net dump file path
	Dump   bool   // include the net dump in the output
}

// CompileResult describes a compiled net.
type CompileResult struct {
	TermHash string    `json:"term_hash"`
	Stats    net.Stats `json:"stats"`
	Dump     string    `json:"dump,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <program>",
		Short: "Compile the entry term to an interaction net",
		Long: `Check the entry term of a program and compile it to an interaction net.

Prints agent counts and the number of initial redexes. The net itself is
printed with --dump or written with --output.

Examples:
  strata compile ./program
  strata compile ./program --entry twice --dump
  strata compile ./program.cue -o net.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the net dump to a file")
	cmd.Flags().BoolVar(&opts.Dump, "dump", false, "print the net dump")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	prog, entry, err := loadProgram(formatter, path, opts.ProgramOptions)
	if err != nil {
		return err
	}

	s, err := stratify.Check(entry, prog.Definitions)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCheck, err.Error(), nil)
	}
	n, err := compiler.CompileNet(s)
	if err != nil {
		code := ErrCodeCompile
		var cerr *compiler.CompileError
		if errors.As(err, &cerr) {
			return formatter.Fail(ExitFailure, code, err.Error(), map[string]string{"code": string(cerr.Code)})
		}
		return formatter.Fail(ExitFailure, code, err.Error(), nil)
	}

	hash, err := term.Hash(entry)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	result := CompileResult{TermHash: hash, Stats: n.Stats()}
	dump := net.Dump(n)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(dump), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("failed to write output: %v", err), nil)
		}
		formatter.VerboseLog("Wrote net dump to %s", opts.Output)
	}
	if opts.Dump {
		result.Dump = dump
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %s\n", shortHash(hash))
	fmt.Fprintf(w, "  Agents:  %d (%d delta, %d zeta, %d eraser)\n",
		result.Stats.Live, result.Stats.Deltas, result.Stats.Zetas, result.Stats.Erasers)
	fmt.Fprintf(w, "  Redexes: %d\n", result.Stats.Active)
	if opts.Dump {
		fmt.Fprintln(w)
		fmt.Fprint(w, dump)
	}
	return nil
}

// shortHash trims a content hash for display.
func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
