// Package stratify enforces the affine, box-levelled usage discipline that a
// term must satisfy before it can be compiled to an interaction net.
//
// The only way to obtain a *Stratified is Check. Downstream packages accept
// *Stratified rather than term.Term, so an unchecked term cannot reach the
// compiler.
package stratify

import (
	"fmt"

	"github.com/roach88/strata/internal/term"
)

// Stratified is a term that passed Check, paired with the definitions it
// was checked against.
type Stratified struct {
	term term.Term
	defs term.Definitions
}

// Term returns the checked term.
func (s *Stratified) Term() term.Term {
	return s.term
}

// IntoTerm returns the checked term and detaches it from s.
// s must not be used afterwards.
func (s *Stratified) IntoTerm() term.Term {
	t := s.term
	s.term = nil
	s.defs = nil
	return t
}

// Definitions returns the definitions the term was checked against.
func (s *Stratified) Definitions() term.Definitions {
	return s.defs
}

// Normalize reduces the checked term in place.
//
// On error the term is left unchanged.
func (s *Stratified) Normalize(opts ...term.NormalizeOption) error {
	normal, err := term.Normalize(s.term, s.defs, opts...)
	if err != nil {
		return err
	}
	s.term = normal
	return nil
}

type visit uint8

const (
	unvisited visit = iota
	inProgress
	checked
)

type checker struct {
	defs term.Definitions

	// Reference bodies are checked once per Check call. A reference met
	// while its own body is being checked is accepted here; the compiler
	// rejects the cycle.
	seen map[string]visit

	definition string
}

// Check validates t against the stratification discipline:
//
//   - a lambda body uses its binder at most once, and never inside a box
//   - a duplicate body uses its binding only at box level exactly one
//   - every reference resolves, and its body is itself stratified
//
// The first violation found is returned as an *Error.
func Check(t term.Term, defs term.Definitions) (*Stratified, error) {
	if t == nil {
		return nil, fmt.Errorf("stratify: nil term")
	}
	if defs == nil {
		defs = term.MapDefinitions{}
	}
	c := &checker{
		defs: defs,
		seen: make(map[string]visit),
	}
	if err := c.check(t, 0); err != nil {
		return nil, err
	}
	return &Stratified{term: t, defs: defs}, nil
}

func (c *checker) check(t term.Term, depth int) error {
	switch t := t.(type) {
	case term.Lambda:
		if term.Uses(t.Body, 0) > 1 {
			return c.fail(ErrCodeAffineReused, binderName(depth), t)
		}
		if !atLevel(t.Body, 0, 0, 0) {
			return c.fail(ErrCodeAffineUsedInBox, binderName(depth), t)
		}
		return c.check(t.Body, depth+1)
	case term.Duplicate:
		if !atLevel(t.Body, 1, 0, 0) {
			return c.fail(ErrCodeDupNonUnitBoxMultiplicity, binderName(depth), t)
		}
		if err := c.check(t.Expression, depth); err != nil {
			return err
		}
		return c.check(t.Body, depth+1)
	case term.Apply:
		if err := c.check(t.Function, depth); err != nil {
			return err
		}
		return c.check(t.Argument, depth)
	case term.Put:
		return c.check(t.Term, depth)
	case term.Wrap:
		return c.check(t.Term, depth)
	case term.Annotation:
		return c.check(t.Expression, depth)
	case term.Function:
		if err := c.check(t.ArgumentType, depth); err != nil {
			return err
		}
		return c.check(t.ReturnType, depth+1)
	case term.Reference:
		return c.reference(t)
	default:
		// Variable, Universe
		return nil
	}
}

func (c *checker) reference(r term.Reference) error {
	if c.seen[r.Name] != unvisited {
		return nil
	}
	body, ok := c.defs.Get(r.Name)
	if !ok {
		return &Error{Code: ErrCodeUndefinedReference, Name: r.Name, Definition: c.definition}
	}

	c.seen[r.Name] = inProgress
	outer := c.definition
	c.definition = r.Name
	err := c.check(body, 0)
	c.definition = outer
	if err != nil {
		return err
	}
	c.seen[r.Name] = checked
	return nil
}

func (c *checker) fail(code Code, name string, t term.Term) error {
	return &Error{Code: code, Name: name, Definition: c.definition, Term: t}
}

func binderName(depth int) string {
	return fmt.Sprintf("x%d", depth)
}

// atLevel reports whether every runtime occurrence of the variable at depth
// sits under exactly target boxes, counting from where the walk started.
func atLevel(t term.Term, target, depth, level int) bool {
	switch t := t.(type) {
	case term.Variable:
		return int(t.Index) != depth || level == target
	case term.Lambda:
		return atLevel(t.Body, target, depth+1, level)
	case term.Apply:
		if t.Erased {
			return atLevel(t.Function, target, depth, level)
		}
		return atLevel(t.Function, target, depth, level) &&
			atLevel(t.Argument, target, depth, level)
	case term.Put:
		return atLevel(t.Term, target, depth, level+1)
	case term.Wrap:
		return atLevel(t.Term, target, depth, level)
	case term.Annotation:
		return atLevel(t.Expression, target, depth, level)
	case term.Duplicate:
		return atLevel(t.Expression, target, depth, level) &&
			atLevel(t.Body, target, depth+1, level)
	case term.Function:
		return atLevel(t.ArgumentType, target, depth, level) &&
			atLevel(t.ReturnType, target, depth+1, level)
	default:
		return true
	}
}
