package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/term"
)

// Code categorizes compile failures.
type Code string

const (
	// ErrCodeTypedTerm indicates a type-level term (Universe, Function,
	// Wrap) that escaped elaboration.
	ErrCodeTypedTerm Code = "TYPED_TERM"

	// ErrCodeUnboundVariable indicates a variable with no enclosing binder.
	ErrCodeUnboundVariable Code = "UNBOUND_VARIABLE"

	// ErrCodeErasedVariable indicates a runtime use of an erased binder.
	ErrCodeErasedVariable Code = "ERASED_VARIABLE"

	// ErrCodeUndefinedReference indicates a name missing from the definitions.
	ErrCodeUndefinedReference Code = "UNDEFINED_REFERENCE"

	// ErrCodeRecursiveReference indicates a definition that expands into
	// itself and so has no finite net.
	ErrCodeRecursiveReference Code = "RECURSIVE_REFERENCE"

	// ErrCodeReadBack indicates a net that does not read back as a term.
	ErrCodeReadBack Code = "READ_BACK"
)

// CompileError reports a term that could not be turned into a net, or a
// net that could not be turned back into a term.
type CompileError struct {
	Code    Code
	Message string

	// Name is the reference involved, if any.
	Name string

	// Term is the offending subterm, if any.
	Term term.Term
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Name != "" {
		msg += fmt.Sprintf(" (%s)", e.Name)
	}
	if e.Term != nil {
		msg += ": " + term.String(e.Term)
	}
	return msg
}

// IsTypedTermError returns true if err is a TYPED_TERM compile error.
func IsTypedTermError(err error) bool {
	return hasCode(err, ErrCodeTypedTerm)
}

// IsUnboundVariableError returns true if err is an UNBOUND_VARIABLE compile error.
func IsUnboundVariableError(err error) bool {
	return hasCode(err, ErrCodeUnboundVariable)
}

// IsErasedVariableError returns true if err is an ERASED_VARIABLE compile error.
func IsErasedVariableError(err error) bool {
	return hasCode(err, ErrCodeErasedVariable)
}

// IsRecursiveReferenceError returns true if err is a RECURSIVE_REFERENCE compile error.
func IsRecursiveReferenceError(err error) bool {
	return hasCode(err, ErrCodeRecursiveReference)
}

// IsReadBackError returns true if err is a READ_BACK error.
func IsReadBackError(err error) bool {
	return hasCode(err, ErrCodeReadBack)
}

func hasCode(err error, code Code) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
