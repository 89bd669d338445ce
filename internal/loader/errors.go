package loader

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for program loading.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeNoFiles      = "NO_FILES"
	ErrCodeLoadFailed   = "LOAD_FAILED"
	ErrCodeBuildFailed  = "BUILD_FAILED"
	ErrCodeDecodeFailed = "DECODE_FAILED"
	ErrCodeNoEntry      = "NO_ENTRY"
)

// LoadError represents an error that occurred while loading a program.
type LoadError struct {
	Code    string
	Message string

	// Field is the program field at fault, e.g. "definitions.id".
	Field string

	// Pos is the CUE source position if available.
	Pos token.Pos
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// HasCode returns true if err is a LoadError with the given code.
func HasCode(err error, code string) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// fromCUE converts a CUE error to a LoadError carrying the position of
// its first error.
func fromCUE(code string, err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
