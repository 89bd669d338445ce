package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/stratify"
	"github.com/roach88/strata/internal/term"
)

func compileTerm(t *testing.T, in term.Term, defs term.Definitions) (*net.Net, error) {
	t.Helper()
	s, err := stratify.Check(in, defs)
	require.NoError(t, err)
	return CompileNet(s)
}

func mustCompile(t *testing.T, in term.Term, defs term.Definitions) *net.Net {
	t.Helper()
	n, err := compileTerm(t, in, defs)
	require.NoError(t, err)
	return n
}

func TestCompileIdentity(t *testing.T) {
	n := mustCompile(t, term.Lam(term.Var(0)), nil)

	assert.Equal(t, net.Stats{Slots: 2, Live: 1, Deltas: 1}, n.Stats())
	entry := n.Follow(net.RootPort)
	assert.Equal(t, net.MakePort(1, net.Principal), entry)
	assert.Equal(t, net.MakePort(1, net.Right), n.Follow(net.MakePort(1, net.Left)))
}

func TestCompileFanOut(t *testing.T) {
	reused := term.Lam(term.App(term.Var(0), term.Var(0)))
	_, err := stratify.Check(reused, nil)
	require.Error(t, err)
	assert.True(t, stratify.IsAffineReused(err))

	erasedArgument := term.Lam(term.Apply{Function: term.Var(0), Argument: term.Var(0), Erased: true})
	n := mustCompile(t, erasedArgument, nil)

	assert.Zero(t, n.Stats().Zetas, "erased argument must not allocate a fan")
}

func TestCompileIdentityRoundTrip(t *testing.T) {
	values := []term.Term{
		term.Lam(term.Var(0)),
		term.Lam(term.Lam(term.Var(1))),
		term.Lam(term.Lam(term.App(term.Var(1), term.Var(0)))),
	}

	for _, value := range values {
		t.Run(term.String(value), func(t *testing.T) {
			n := mustCompile(t, term.App(term.Lam(term.Var(0)), value), nil)

			assert.Equal(t, 1, n.Reduce(), "one annihilation between the two deltas")

			out, err := ReadBack(n)
			require.NoError(t, err)
			assert.True(t, term.Equal(value, out), "got %s", term.String(out))
		})
	}
}

func TestCompileDuplicatedIdentity(t *testing.T) {
	// dup f = !id; !(f f)
	in := term.Duplicate{
		Expression: term.Put{Term: term.Ref("id")},
		Body:       term.Put{Term: term.App(term.Var(0), term.Var(0))},
	}
	n := mustCompile(t, in, term.MapDefinitions{"id": term.Lam(term.Var(0))})

	assert.Equal(t, 1, n.Stats().Zetas)
	assert.Len(t, n.Active, 1, "the stale application redex is dropped at build")

	// commute fan through id, annihilate the two fan copies, apply
	assert.Equal(t, 3, n.Reduce())

	out, err := ReadBack(n)
	require.NoError(t, err)
	assert.True(t, term.Equal(term.Lam(term.Var(0)), out), "got %s", term.String(out))
}

func TestCompileThreeUsesChainFans(t *testing.T) {
	in := term.Duplicate{
		Expression: term.Put{Term: term.Ref("id")},
		Body:       term.Put{Term: term.App(term.App(term.Var(0), term.Var(0)), term.Var(0))},
	}
	n := mustCompile(t, in, term.MapDefinitions{"id": term.Lam(term.Var(0))})

	assert.Equal(t, 2, n.Stats().Zetas)

	n.Reduce()
	out, err := ReadBack(n)
	require.NoError(t, err)
	assert.True(t, term.Equal(term.Lam(term.Var(0)), out), "got %s", term.String(out))
}

func TestCompileCapsUnusedBinders(t *testing.T) {
	n := mustCompile(t, term.Lam(term.Lam(term.Var(1))), nil)

	s := n.Stats()
	assert.Equal(t, 2, s.Deltas)
	assert.Equal(t, 1, s.Erasers)
	assert.Empty(t, n.Active)

	out, err := ReadBack(n)
	require.NoError(t, err)
	assert.True(t, term.Equal(term.Lam(term.Lam(term.Var(1))), out))
}

func TestCompileUnusedDuplicateErasesValue(t *testing.T) {
	in := term.Duplicate{
		Expression: term.Put{Term: term.Lam(term.Var(0))},
		Body:       term.Lam(term.Var(0)),
	}
	n := mustCompile(t, in, nil)

	require.Len(t, n.Active, 1, "eraser meets the discarded lambda")
	n.Reduce()

	out, err := ReadBack(n)
	require.NoError(t, err)
	assert.True(t, term.Equal(term.Lam(term.Var(0)), out))
	assert.Equal(t, 1, n.Stats().Deltas, "only the result lambda survives")
}

func TestCompileTransparentForms(t *testing.T) {
	in := term.Annotation{
		Expression: term.Put{Term: term.Lambda{Body: term.Lam(term.Var(0)), Erased: true}},
		Type:       term.Universe{},
	}
	n := mustCompile(t, in, nil)

	assert.Equal(t, net.Stats{Slots: 2, Live: 1, Deltas: 1}, n.Stats())
}

func TestCompileErasedApplyDropsArgument(t *testing.T) {
	in := term.Apply{Function: term.Lam(term.Var(0)), Argument: term.Universe{}, Erased: true}

	n := mustCompile(t, in, nil)

	assert.Equal(t, 1, n.Stats().Deltas)
}

func TestCompileExpandsReferencesAfresh(t *testing.T) {
	defs := term.MapDefinitions{"id": term.Lam(term.Var(0))}

	n := mustCompile(t, term.App(term.Ref("id"), term.Ref("id")), defs)

	assert.Equal(t, 3, n.Stats().Deltas)
	assert.Equal(t, 1, n.Reduce())
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		term  term.Term
		defs  term.MapDefinitions
		check func(error) bool
	}{
		{"universe", term.Universe{}, nil, IsTypedTermError},
		{"function type", term.Lam(term.Function{ArgumentType: term.Universe{}, ReturnType: term.Universe{}}), nil, IsTypedTermError},
		{"wrap", term.Wrap{Term: term.Lam(term.Var(0))}, nil, IsTypedTermError},
		{"free variable", term.Var(0), nil, IsUnboundVariableError},
		{"erased binder used", term.Lambda{Body: term.Var(0), Erased: true}, nil, IsErasedVariableError},
		{"recursive definition", term.Ref("loop"), term.MapDefinitions{"loop": term.Lam(term.App(term.Ref("loop"), term.Var(0)))}, IsRecursiveReferenceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileTerm(t, tt.term, tt.defs)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestCompileTypedTermCarriesSubterm(t *testing.T) {
	_, err := compileTerm(t, term.Lam(term.Wrap{Term: term.Var(0)}), nil)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, term.Wrap{Term: term.Var(0)}, ce.Term)
}

func TestCompileTotalityOnStratifiedTerms(t *testing.T) {
	defs := term.MapDefinitions{
		"id":    term.Lam(term.Var(0)),
		"k":     term.Lam(term.Lam(term.Var(1))),
		"apply": term.Lam(term.Lam(term.App(term.Var(1), term.Var(0)))),
		"boxed": term.Put{Term: term.Lam(term.Var(0))},
	}
	terms := []term.Term{
		term.App(term.App(term.Ref("k"), term.Ref("id")), term.Ref("k")),
		term.App(term.App(term.Ref("apply"), term.Ref("id")), term.Ref("k")),
		term.Duplicate{Expression: term.Ref("boxed"), Body: term.Put{Term: term.App(term.Var(0), term.Var(0))}},
		term.Lam(term.Lam(term.App(term.Var(0), term.Var(1)))),
	}

	for _, in := range terms {
		t.Run(term.String(in), func(t *testing.T) {
			n := mustCompile(t, in, defs)
			_, err := n.ReduceBounded(1000)
			require.NoError(t, err)
			assert.Empty(t, n.Active)
		})
	}
}

func TestReadBackAgreesWithNormalize(t *testing.T) {
	defs := term.MapDefinitions{
		"id":    term.Lam(term.Var(0)),
		"k":     term.Lam(term.Lam(term.Var(1))),
		"apply": term.Lam(term.Lam(term.App(term.Var(1), term.Var(0)))),
	}
	in := term.App(term.App(term.Ref("apply"), term.Ref("k")), term.Ref("id"))

	n := mustCompile(t, in, defs)
	n.Reduce()
	got, err := ReadBack(n)
	require.NoError(t, err)

	want, err := term.Normalize(in, defs)
	require.NoError(t, err)
	assert.True(t, term.Equal(want, got), "got %s want %s", term.String(got), term.String(want))
}

func TestReadBackRejectsFans(t *testing.T) {
	n := net.New()
	p, _, _ := n.Add(net.Zeta)
	n.Connect(net.RootPort, p)

	_, err := ReadBack(n)

	require.Error(t, err)
	assert.True(t, IsReadBackError(err))
}
