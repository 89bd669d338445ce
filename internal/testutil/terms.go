package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/strata/internal/term"
)

// Prelude returns a small set of closed, stratified definitions.
func Prelude() term.MapDefinitions {
	return term.MapDefinitions{
		"id":    term.Lam(term.Var(0)),
		"k":     term.Lam(term.Lam(term.Var(1))),
		"ks":    term.Lam(term.Lam(term.Var(0))),
		"apply": term.Lam(term.Lam(term.App(term.Var(1), term.Var(0)))),
		"flip":  term.Lam(term.Lam(term.Lam(term.App(term.App(term.Var(2), term.Var(0)), term.Var(1))))),
		"boxed": term.Put{Term: term.Lam(term.Var(0))},
	}
}

// IdentityChain returns id applied to itself n times, left-nested:
// ((id id) id) ... id. It reduces to id in exactly n rewrites.
func IdentityChain(n int) term.Term {
	var t term.Term = term.Ref("id")
	for i := 0; i < n; i++ {
		t = term.App(t, term.Ref("id"))
	}
	return t
}

// SharedIdentity returns dup f = !id; !(f (f ... f)) with uses occurrences
// of f, which reduces to id through a chain of fans.
func SharedIdentity(uses int) term.Term {
	var body term.Term = term.Var(0)
	for i := 1; i < uses; i++ {
		body = term.App(term.Var(0), body)
	}
	return term.Duplicate{
		Expression: term.Ref("boxed"),
		Body:       term.Put{Term: body},
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
