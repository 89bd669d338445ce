package harness

import (
	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/term"
)

// Outcomes of a run.
const (
	OutcomeOK            = "ok"
	OutcomeCheckFailed   = "check_failed"
	OutcomeCompileFailed = "compile_failed"
	OutcomeReduceFailed  = "reduce_failed"
	OutcomeVerifyFailed  = "verify_failed"
)

// EngineRun is what one engine did with the scenario.
type EngineRun struct {
	Engine   string `json:"engine"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
	FellBack bool   `json:"fell_back"`
	Rewrites int    `json:"rewrites"`

	// Result is the read-back term rendered with term.String, or empty.
	Result string `json:"result,omitempty"`

	Stats net.Stats `json:"stats"`

	// Net is the reduced net and Term its read-back; nil for failed runs.
	Net  *net.Net  `json:"-"`
	Term term.Term `json:"-"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every expectation and agreement check held.
	Pass bool `json:"pass"`

	Runs []EngineRun `json:"runs"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Runs:   []EngineRun{},
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
