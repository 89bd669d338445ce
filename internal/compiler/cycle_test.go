package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/stratify"
	"github.com/roach88/strata/internal/term"
)

// calls returns a definition applying each named reference to the identity.
func calls(names ...string) term.Term {
	var t term.Term = term.Lam(term.Var(0))
	for _, name := range names {
		t = term.App(term.Ref(name), t)
	}
	return t
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	warnings := AnalyzeCycles(nil)
	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	defs := term.MapDefinitions{
		"id":    term.Lam(term.Var(0)),
		"twice": calls("id", "id"),
		"main":  calls("twice", "id"),
	}

	assert.Empty(t, AnalyzeCycles(defs))
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	defs := term.MapDefinitions{
		"loop": calls("loop"),
		"id":   term.Lam(term.Var(0)),
	}

	warnings := AnalyzeCycles(defs)

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"loop", "loop"}, warnings[0].Path)
	assert.Equal(t, "definition refers to itself: loop → loop", warnings[0].Message)
}

func TestAnalyzeCycles_TwoNodeCycle(t *testing.T) {
	defs := term.MapDefinitions{
		"even": calls("odd"),
		"odd":  calls("even"),
	}

	warnings := AnalyzeCycles(defs)

	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"even", "odd", "even"}, warnings[0].Path)
	assert.Equal(t, "recursive definitions: even → odd → even", warnings[0].Message)
}

func TestAnalyzeCycles_MultipleIndependentCycles(t *testing.T) {
	defs := term.MapDefinitions{
		"a":    calls("b"),
		"b":    calls("c"),
		"c":    calls("a"),
		"x":    calls("x"),
		"main": calls("a", "x"),
	}

	warnings := AnalyzeCycles(defs)

	require.Len(t, warnings, 2)
	assert.Equal(t, []string{"a", "b", "c", "a"}, warnings[0].Path)
	assert.Equal(t, []string{"x", "x"}, warnings[1].Path)
}

func TestAnalyzeCycles_IgnoresUndefinedReferences(t *testing.T) {
	defs := term.MapDefinitions{
		"f": calls("missing"),
	}

	assert.Empty(t, AnalyzeCycles(defs))
}

func TestAnalyzeCycles_AgreesWithCompile(t *testing.T) {
	defs := term.MapDefinitions{
		"even": calls("odd"),
		"odd":  calls("even"),
	}
	require.NotEmpty(t, AnalyzeCycles(defs))

	s, err := stratify.Check(term.Ref("even"), defs)
	require.NoError(t, err)
	_, err = CompileNet(s)
	assert.True(t, IsRecursiveReferenceError(err))
}
