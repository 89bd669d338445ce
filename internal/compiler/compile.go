// Package compiler turns stratified terms into interaction nets and reads
// normal nets back into terms.
package compiler

import (
	"fmt"

	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/stratify"
	"github.com/roach88/strata/internal/term"
)

type binder struct {
	port   net.Port
	erased bool
}

type compiler[N any] struct {
	b    net.Builder[N]
	defs term.Definitions

	// binders[len-1] is the innermost open binder.
	binders []binder

	// expanding holds the references currently being inlined.
	expanding map[string]bool
}

// Compile emits s into b and returns the built net.
//
// Each binder gets a slot holding the port its value flows out of. The
// first use of a variable takes that port directly; every further use
// threads a Zeta fan in front of it. A binder left unused when its scope
// closes is capped with an Eraser. References are expanded afresh at each
// use site.
func Compile[N any](s *stratify.Stratified, b net.Builder[N]) (N, error) {
	var zero N
	if s == nil {
		return zero, fmt.Errorf("compile: nil stratified term")
	}
	c := &compiler[N]{
		b:         b,
		defs:      s.Definitions(),
		expanding: make(map[string]bool),
	}
	entry, err := c.compile(s.Term())
	if err != nil {
		return zero, err
	}
	return b.Build(entry)
}

// CompileNet compiles s into an in-memory net.
func CompileNet(s *stratify.Stratified) (*net.Net, error) {
	return Compile[*net.Net](s, net.NewBuilder())
}

func (c *compiler[N]) compile(t term.Term) (net.Port, error) {
	switch t := t.(type) {
	case term.Variable:
		return c.variable(t)
	case term.Put:
		return c.compile(t.Term)
	case term.Annotation:
		return c.compile(t.Expression)
	case term.Reference:
		return c.reference(t)
	case term.Lambda:
		if t.Erased {
			c.push(binder{erased: true})
			body, err := c.compile(t.Body)
			c.pop()
			return body, err
		}
		principal, left, right := c.b.Add(net.Delta)
		c.push(binder{port: left})
		body, err := c.compile(t.Body)
		if err != nil {
			return 0, err
		}
		c.b.Connect(right, body)
		c.close(c.pop(), body)
		return principal, nil
	case term.Duplicate:
		expression, err := c.compile(t.Expression)
		if err != nil {
			return 0, err
		}
		c.push(binder{port: expression})
		body, err := c.compile(t.Body)
		if err != nil {
			return 0, err
		}
		c.close(c.pop(), body)
		return body, nil
	case term.Apply:
		if t.Erased {
			return c.compile(t.Function)
		}
		principal, left, right := c.b.Add(net.Delta)
		function, err := c.compile(t.Function)
		if err != nil {
			return 0, err
		}
		c.b.Connect(principal, function)
		argument, err := c.compile(t.Argument)
		if err != nil {
			return 0, err
		}
		c.b.Connect(left, argument)
		return right, nil
	default:
		return 0, &CompileError{
			Code:    ErrCodeTypedTerm,
			Message: "type-level term reached the compiler",
			Term:    t,
		}
	}
}

func (c *compiler[N]) variable(v term.Variable) (net.Port, error) {
	if int(v.Index) >= len(c.binders) {
		return 0, &CompileError{
			Code:    ErrCodeUnboundVariable,
			Message: fmt.Sprintf("variable %d has %d enclosing binders", v.Index, len(c.binders)),
			Term:    v,
		}
	}
	slot := &c.binders[len(c.binders)-1-int(v.Index)]
	if slot.erased {
		return 0, &CompileError{
			Code:    ErrCodeErasedVariable,
			Message: "erased binder used at runtime",
			Term:    v,
		}
	}

	ptr := slot.port
	target := c.b.Follow(ptr)
	if c.b.IsRoot(target) || target == ptr {
		return ptr, nil
	}

	principal, left, right := c.b.Add(net.Zeta)
	c.b.Connect(principal, ptr)
	c.b.Connect(left, target)
	slot.port = right
	return right, nil
}

func (c *compiler[N]) reference(r term.Reference) (net.Port, error) {
	if c.expanding[r.Name] {
		return 0, &CompileError{
			Code:    ErrCodeRecursiveReference,
			Message: "definition refers to itself",
			Name:    r.Name,
		}
	}
	var body term.Term
	var ok bool
	if c.defs != nil {
		body, ok = c.defs.Get(r.Name)
	}
	if !ok {
		return 0, &CompileError{
			Code:    ErrCodeUndefinedReference,
			Message: "reference is not defined",
			Name:    r.Name,
		}
	}

	// Definitions are closed: they see none of the use site's binders.
	outer := c.binders
	c.binders = nil
	c.expanding[r.Name] = true
	port, err := c.compile(body)
	delete(c.expanding, r.Name)
	c.binders = outer
	return port, err
}

func (c *compiler[N]) push(b binder) {
	c.binders = append(c.binders, b)
}

func (c *compiler[N]) pop() binder {
	b := c.binders[len(c.binders)-1]
	c.binders = c.binders[:len(c.binders)-1]
	return b
}

// close caps an unused binder with an Eraser. A binder whose port is the
// scope's own result is in use even though nothing is attached yet.
func (c *compiler[N]) close(b binder, result net.Port) {
	if b.erased || b.port == result || c.b.Follow(b.port) != b.port {
		return
	}
	eraser, _, _ := c.b.Add(net.Eraser)
	c.b.Connect(eraser, b.port)
}
