package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/compiler"
	"github.com/roach88/strata/internal/loader"
	"github.com/roach88/strata/internal/stratify"
	"github.com/roach88/strata/internal/term"
)

// CheckIssue is one stratification failure.
type CheckIssue struct {
	// Definition is where the violation is, or "entry".
	Definition string `json:"definition"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// CheckResult holds the outcome of checking a program.
type CheckResult struct {
	Valid       bool         `json:"valid"`
	Definitions int          `json:"definitions"`
	Entry       bool         `json:"entry"`
	Issues      []CheckIssue `json:"issues,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <program>",
		Short: "Check that every definition is stratified",
		Long: `Check every definition of a program, and its entry term if it has one,
against the affine and box-level rules, and look for definitions that
refer to themselves.

All violations are reported, at most one per definition.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	prog, err := loader.Load(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}

	result := checkProgram(prog, formatter)
	if len(result.Issues) > 0 {
		return outputCheckIssues(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d definition(s) stratified\n", result.Definitions)
	return nil
}

// checkProgram checks each definition, then the entry. A violation inside a
// definition is reported once, against that definition, even when other
// definitions reach it.
func checkProgram(prog *loader.Program, formatter *OutputFormatter) CheckResult {
	result := CheckResult{Definitions: len(prog.Definitions), Entry: prog.Entry != nil}
	seen := make(map[CheckIssue]bool)

	add := func(where string, err error) {
		issue := CheckIssue{Definition: where, Code: ErrCodeGeneric, Message: err.Error()}
		var serr *stratify.Error
		if errors.As(err, &serr) {
			issue.Code = string(serr.Code)
			issue.Name = serr.Name
			if serr.Definition != "" {
				issue.Definition = serr.Definition
			}
		}
		if !seen[issue] {
			seen[issue] = true
			result.Issues = append(result.Issues, issue)
		}
	}

	for _, name := range prog.Definitions.Names() {
		formatter.VerboseLog("Checking definition: %s", name)
		if _, err := stratify.Check(term.Ref(name), prog.Definitions); err != nil {
			add(name, err)
		}
	}
	for _, cycle := range compiler.AnalyzeCycles(prog.Definitions) {
		result.Issues = append(result.Issues, CheckIssue{
			Definition: cycle.Path[0],
			Code:       string(compiler.ErrCodeRecursiveReference),
			Name:       cycle.Path[0],
			Message:    cycle.Message,
		})
	}
	if prog.Entry != nil {
		formatter.VerboseLog("Checking entry")
		if _, err := stratify.Check(prog.Entry, prog.Definitions); err != nil {
			add("entry", err)
		}
	}

	result.Valid = len(result.Issues) == 0
	return result
}

func outputCheckIssues(formatter *OutputFormatter, result CheckResult) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("check failed with %d issue(s)", len(result.Issues)))

	if formatter.Format == "json" {
		first := result.Issues[0]
		if err := writeJSON(formatter.Writer, CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeCheck, Message: first.Message},
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Check failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range result.Issues {
		fmt.Fprintf(formatter.Writer, "%s\n  %s\n\n", issue.Definition, issue.Message)
	}
	return exitErr
}
