package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/term"
)

// RunErrorCode identifies the pipeline stage that failed.
type RunErrorCode string

const (
	// ErrCodeCheck indicates the term is not stratified.
	ErrCodeCheck RunErrorCode = "CHECK_FAILED"

	// ErrCodeCompile indicates the term could not be lowered to a net.
	ErrCodeCompile RunErrorCode = "COMPILE_FAILED"

	// ErrCodeReduce indicates reduction did not reach normal form.
	ErrCodeReduce RunErrorCode = "REDUCE_FAILED"

	// ErrCodeVerify indicates the reduced net disagrees with the
	// normalised term.
	ErrCodeVerify RunErrorCode = "VERIFY_FAILED"
)

// RunError is a pipeline failure.
type RunError struct {
	Code RunErrorCode

	// RunID identifies the failed run.
	RunID string

	Err error
}

func (e *RunError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s (run=%s): %v", e.Code, e.RunID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// IsCheckError returns true if the run failed stratification.
func IsCheckError(err error) bool {
	return hasCode(err, ErrCodeCheck)
}

// IsCompileError returns true if the run failed compilation.
func IsCompileError(err error) bool {
	return hasCode(err, ErrCodeCompile)
}

// IsVerifyError returns true if the reduced result disagreed with the
// normalised term.
func IsVerifyError(err error) bool {
	return hasCode(err, ErrCodeVerify)
}

// IsQuotaError returns true if the run exceeded a step budget, either the
// rewrite budget of the sequential engine or the normalisation quota.
func IsQuotaError(err error) bool {
	var ne *net.StepsExceededError
	if errors.As(err, &ne) {
		return true
	}
	var te *term.StepsExceededError
	return errors.As(err, &te)
}

func hasCode(err error, code RunErrorCode) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
