package stratify

import (
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/term"
)

// Code categorizes stratification failures.
type Code string

const (
	// ErrCodeAffineReused indicates a lambda body uses its binder more than once.
	ErrCodeAffineReused Code = "AFFINE_REUSED"

	// ErrCodeAffineUsedInBox indicates a lambda binder used under a box.
	ErrCodeAffineUsedInBox Code = "AFFINE_USED_IN_BOX"

	// ErrCodeDupNonUnitBoxMultiplicity indicates a duplicated binding used
	// at a box level other than one.
	ErrCodeDupNonUnitBoxMultiplicity Code = "DUP_NON_UNIT_BOX_MULTIPLICITY"

	// ErrCodeUndefinedReference indicates a name missing from the definitions.
	ErrCodeUndefinedReference Code = "UNDEFINED_REFERENCE"
)

// Error is a usage-discipline violation found by Check.
//
// Terms carry no binder names, so Name is synthesized from the binder's
// nesting level inside the definition being checked ("x0" is the
// outermost binder). For ErrCodeUndefinedReference, Name is the missing
// reference and Term is nil.
type Error struct {
	Code Code

	// Name identifies the offending binder or reference.
	Name string

	// Definition is the reference whose body contained the violation,
	// or empty for the checked term itself.
	Definition string

	// Term is the offending subterm.
	Term term.Term
}

// Error implements the error interface.
func (e *Error) Error() string {
	where := ""
	if e.Definition != "" {
		where = fmt.Sprintf(" (in %s)", e.Definition)
	}
	switch e.Code {
	case ErrCodeAffineReused:
		return fmt.Sprintf("%s: binder %s used more than once%s: %s", e.Code, e.Name, where, term.String(e.Term))
	case ErrCodeAffineUsedInBox:
		return fmt.Sprintf("%s: binder %s used inside a box%s: %s", e.Code, e.Name, where, term.String(e.Term))
	case ErrCodeDupNonUnitBoxMultiplicity:
		return fmt.Sprintf("%s: duplicated binding %s must be used at box level 1%s: %s", e.Code, e.Name, where, term.String(e.Term))
	case ErrCodeUndefinedReference:
		return fmt.Sprintf("%s: %q is not defined%s", e.Code, e.Name, where)
	default:
		return fmt.Sprintf("%s: %s%s", e.Code, e.Name, where)
	}
}

// IsAffineReused returns true if err is an AFFINE_REUSED stratification error.
func IsAffineReused(err error) bool {
	return hasCode(err, ErrCodeAffineReused)
}

// IsAffineUsedInBox returns true if err is an AFFINE_USED_IN_BOX stratification error.
func IsAffineUsedInBox(err error) bool {
	return hasCode(err, ErrCodeAffineUsedInBox)
}

// IsDupNonUnitBoxMultiplicity returns true if err is a
// DUP_NON_UNIT_BOX_MULTIPLICITY stratification error.
func IsDupNonUnitBoxMultiplicity(err error) bool {
	return hasCode(err, ErrCodeDupNonUnitBoxMultiplicity)
}

// IsUndefinedReference returns true if err is an UNDEFINED_REFERENCE
// stratification error.
func IsUndefinedReference(err error) bool {
	return hasCode(err, ErrCodeUndefinedReference)
}

// IsStratificationError returns true if err wraps any *Error.
func IsStratificationError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

func hasCode(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
