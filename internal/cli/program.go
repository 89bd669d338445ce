package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/loader"
	"github.com/roach88/strata/internal/term"
)

// ProgramOptions selects the program and its entry term.
type ProgramOptions struct {
	// Entry names a definition to use as the entry term instead of the
	// program's own entry.
	Entry string
}

func (o *ProgramOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Entry, "entry", "", "definition to use as the entry term")
}

// loadProgram loads path and resolves the entry term. Failures are reported
// through f.
func loadProgram(f *OutputFormatter, path string, opts ProgramOptions) (*loader.Program, term.Term, error) {
	prog, err := loader.Load(path)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	f.VerboseLog("Loaded %d definition(s) from %d file(s) in %s", len(prog.Definitions), prog.Files, path)

	if opts.Entry != "" {
		if _, ok := prog.Definitions.Get(opts.Entry); !ok {
			return nil, nil, f.Fail(ExitCommandError, ErrCodeNoEntry, fmt.Sprintf("no definition named %q", opts.Entry), nil)
		}
		return prog, term.Ref(opts.Entry), nil
	}

	entry, err := prog.RequireEntry()
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeNoEntry, err.Error(), nil)
	}
	return prog, entry, nil
}

// loadErrorCode maps a loader error to a CLI error code.
func loadErrorCode(err error) string {
	var le *loader.LoadError
	if !errors.As(err, &le) {
		return ErrCodeGeneric
	}
	switch le.Code {
	case loader.ErrCodeNotFound:
		return ErrCodeNotFound
	case loader.ErrCodeNoEntry:
		return ErrCodeNoEntry
	default:
		return ErrCodeLoad
	}
}
