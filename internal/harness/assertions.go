package harness

import (
	"fmt"

	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/term"
)

// AssertionError describes a failed expectation.
type AssertionError struct {
	Type     string // "outcome", "error", "rewrites", "result", "live", "agreement"
	Engine   string
	Expected any
	Actual   any
	Message  string
}

func (e *AssertionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s assertion failed on %s: %s", e.Type, e.Engine, e.Message)
	}
	return fmt.Sprintf("%s assertion failed on %s: expected %v, got %v", e.Type, e.Engine, e.Expected, e.Actual)
}

// assertExpect checks one engine run against the scenario's expectations.
func assertExpect(want Expect, run EngineRun) []*AssertionError {
	var errs []*AssertionError
	fail := func(kind string, expected, actual any) {
		errs = append(errs, &AssertionError{Type: kind, Engine: run.Engine, Expected: expected, Actual: actual})
	}

	if run.Outcome != want.Outcome {
		fail("outcome", want.Outcome, fmt.Sprintf("%s (%s)", run.Outcome, run.Error))
		return errs
	}
	if want.Error != "" && run.Error != want.Error {
		fail("error", want.Error, run.Error)
	}
	if run.Outcome != OutcomeOK {
		return errs
	}

	if want.Rewrites != nil && run.Rewrites != *want.Rewrites {
		fail("rewrites", *want.Rewrites, run.Rewrites)
	}
	if want.Live != nil && run.Stats.Live != *want.Live {
		fail("live", *want.Live, run.Stats.Live)
	}
	if want.Result != nil {
		if err := assertResult(want.Result, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// assertResult compares the read-back term with the expected one in
// runtime shape, so annotations and erased parts do not matter.
func assertResult(expected any, run EngineRun) *AssertionError {
	want, err := term.FromValue(expected)
	if err != nil {
		return &AssertionError{Type: "result", Engine: run.Engine, Message: fmt.Sprintf("invalid expected term: %v", err)}
	}
	if run.Term == nil {
		return &AssertionError{Type: "result", Engine: run.Engine, Expected: term.String(want), Actual: "no read-back term"}
	}
	if !term.Equal(term.Erase(want), term.Erase(run.Term)) {
		return &AssertionError{Type: "result", Engine: run.Engine, Expected: term.String(want), Actual: run.Result}
	}
	return nil
}

// assertAgreement checks every run against the first one.
func assertAgreement(runs []EngineRun) []*AssertionError {
	if len(runs) < 2 {
		return nil
	}
	base := runs[0]
	var errs []*AssertionError
	for _, run := range runs[1:] {
		fail := func(msg string, args ...any) {
			errs = append(errs, &AssertionError{
				Type:    "agreement",
				Engine:  run.Engine,
				Message: fmt.Sprintf("disagrees with %s: ", base.Engine) + fmt.Sprintf(msg, args...),
			})
		}
		if run.Outcome != base.Outcome || run.Error != base.Error {
			fail("outcome %s/%s vs %s/%s", run.Outcome, run.Error, base.Outcome, base.Error)
			continue
		}
		if run.Outcome != OutcomeOK {
			continue
		}
		if run.Rewrites != base.Rewrites {
			fail("%d rewrites vs %d", run.Rewrites, base.Rewrites)
		}
		if !net.Equivalent(run.Net, base.Net) {
			fail("nets are not equivalent")
		}
	}
	return errs
}
