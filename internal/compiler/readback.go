package compiler

import (
	"fmt"

	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/term"
)

// ReadBack recovers the term denoted by a net made of Delta agents only,
// typically a net in normal form. A Delta reached at its principal port
// is an abstraction whose Left port is the bound variable; a Delta reached
// at its Right port is an application. Nets containing fans, or erasers on
// a value path, are rejected.
func ReadBack(n *net.Net) (term.Term, error) {
	r := &reader{
		n:       n,
		binders: make(map[net.Index]int),
		budget:  4 * len(n.Agents),
	}
	return r.read(n.Follow(net.RootPort), 0)
}

type reader struct {
	n       *net.Net
	binders map[net.Index]int
	budget  int
}

func (r *reader) read(p net.Port, depth int) (term.Term, error) {
	if r.budget--; r.budget < 0 {
		return nil, readBackError("net is cyclic")
	}
	if r.n.IsRoot(p) {
		return nil, readBackError("value path leads back to the interface")
	}

	slot := p.Slot()
	agent := r.n.Agents[slot]
	if agent.Type != net.Delta {
		return nil, readBackError(fmt.Sprintf("cannot read %s agent at %s", agent.Type, p))
	}

	switch p.Role() {
	case net.Principal:
		if _, open := r.binders[slot]; open {
			return nil, readBackError(fmt.Sprintf("abstraction %s reached twice", p))
		}
		r.binders[slot] = depth
		body, err := r.read(r.n.Follow(net.MakePort(slot, net.Right)), depth+1)
		if err != nil {
			return nil, err
		}
		return term.Lam(body), nil
	case net.Left:
		level, ok := r.binders[slot]
		if !ok || level >= depth {
			return nil, readBackError(fmt.Sprintf("variable %s is not bound by an enclosing abstraction", p))
		}
		return term.Var(uint(depth - 1 - level)), nil
	default:
		function, err := r.read(r.n.Follow(net.MakePort(slot, net.Principal)), depth)
		if err != nil {
			return nil, err
		}
		argument, err := r.read(r.n.Follow(net.MakePort(slot, net.Left)), depth)
		if err != nil {
			return nil, err
		}
		return term.App(function, argument), nil
	}
}

func readBackError(msg string) error {
	return &CompileError{Code: ErrCodeReadBack, Message: msg}
}
