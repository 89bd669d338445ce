package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	TermHash string // optional - only runs of this term
}

// HistoryRun is one journal row.
type HistoryRun struct {
	Seq        int64  `json:"seq"`
	ID         string `json:"id"`
	TermHash   string `json:"term_hash"`
	Engine     string `json:"engine"`
	FellBack   bool   `json:"fell_back"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Rewrites   int    `json:"rewrites"`
	Live       int    `json:"live"`
	DurationMS int64  `json:"duration_ms"`
	StartedAt  string `json:"started_at"`
}

// HistoryResult holds the listed runs.
type HistoryResult struct {
	Runs []HistoryRun `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled runs",
		Long: `List runs recorded in a journal, newest first.

With --term, lists every run of one term in the order they were recorded.

Examples:
  strata history --db ./runs.db
  strata history --db ./runs.db --limit 5 --format json
  strata history --db ./runs.db --term 3f2a...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite run journal (default: config journal)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = all)")
	cmd.Flags().StringVar(&opts.TermHash, "term", "", "only list runs of this term hash")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := contextOrBackground(cmd.Context())

	path := opts.Database
	if path == "" {
		path = opts.Config.Journal
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, "no journal: pass --db or set journal in the config", nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, fmt.Sprintf("failed to open journal: %v", err), nil)
	}
	defer st.Close()

	runs, err := readHistory(ctx, st, opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeJournal, fmt.Sprintf("failed to read journal: %v", err), nil)
	}

	result := HistoryResult{Runs: make([]HistoryRun, len(runs))}
	for i, r := range runs {
		result.Runs[i] = HistoryRun{
			Seq:        r.Seq,
			ID:         r.ID,
			TermHash:   r.TermHash,
			Engine:     r.Engine,
			FellBack:   r.FellBack,
			Status:     r.Status,
			Error:      r.Error,
			Rewrites:   r.Rewrites,
			Live:       r.Stats.Live,
			DurationMS: r.Duration().Milliseconds(),
			StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputHistoryText(formatter, result)
}

func readHistory(ctx context.Context, st *store.Store, opts *HistoryOptions) ([]store.Run, error) {
	if opts.TermHash == "" {
		return st.ReadRuns(ctx, opts.Limit)
	}
	runs, err := st.ReadRunsForTerm(ctx, opts.TermHash)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[len(runs)-opts.Limit:]
	}
	return runs, nil
}

func outputHistoryText(formatter *OutputFormatter, result HistoryResult) error {
	if len(result.Runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tTERM\tENGINE\tSTATUS\tREWRITES\tLIVE\tSTARTED")
	for _, r := range result.Runs {
		engine := r.Engine
		if r.FellBack {
			engine += " (fallback)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Seq, r.ID, shortHash(r.TermHash), engine, r.Status, r.Rewrites, r.Live, r.StartedAt)
	}
	return tw.Flush()
}
