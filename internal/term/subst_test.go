package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShift(t *testing.T) {
	// \. x0 ^0  -- the inner variable 1 is free
	in := Lam(App(Var(0), Var(1)))

	got := Shift(in, 0, 2)

	assert.True(t, Equal(Lam(App(Var(0), Var(3))), got))
}

func TestShiftZeroIsIdentity(t *testing.T) {
	in := Lam(Var(4))
	assert.Equal(t, in, Shift(in, 0, 0))
}

func TestIndexChild(t *testing.T) {
	assert.Equal(t, Index(1), Index(0).Child())
	assert.Equal(t, Lam(Var(3)), Shift(Lam(Var(2)), Index(0).Child(), 1))
}

func TestSubstituteTopReplacesInnermost(t *testing.T) {
	got := SubstituteTop(App(Var(0), Var(1)), Ref("id"))

	assert.True(t, Equal(App(Ref("id"), Var(0)), got), "got %s", String(got))
}

func TestSubstituteShiftsReplacementUnderBinders(t *testing.T) {
	// (\. x1) with x1 being the substituted variable, replacement is free ^0
	body := Lam(Var(1))

	got := SubstituteTop(body, Var(0))

	// Under one binder, the free replacement must now read as index 1.
	assert.True(t, Equal(Lam(Var(1)), got), "got %s", String(got))
}

func TestSubstituteClosesGap(t *testing.T) {
	body := Lam(App(Var(2), Var(1)))

	got := SubstituteTop(body, Ref("r"))

	assert.True(t, Equal(Lam(App(Var(1), Ref("r"))), got), "got %s", String(got))
}

func TestSubstituteAtDepth(t *testing.T) {
	got := Substitute(App(Var(0), Var(1)), 1, Ref("r"))

	assert.True(t, Equal(App(Var(0), Ref("r")), got), "got %s", String(got))
}

func TestSubstituteThroughDuplicateAndFunction(t *testing.T) {
	in := Duplicate{
		Expression: Var(0),
		Body:       Function{ArgumentType: Var(1), ReturnType: Var(2)},
	}

	got := SubstituteTop(in, Ref("r"))

	want := Duplicate{
		Expression: Ref("r"),
		Body:       Function{ArgumentType: Ref("r"), ReturnType: Ref("r")},
	}
	assert.True(t, Equal(want, got), "got %s", String(got))
}

func TestUses(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want int
	}{
		{"variable", Var(0), 1},
		{"other variable", Var(1), 0},
		{"twice", App(Var(0), Var(0)), 2},
		{"erased argument ignored", Apply{Function: Var(0), Argument: Var(0), Erased: true}, 1},
		{"under lambda", Lam(Var(1)), 1},
		{"shadowed", Lam(Var(0)), 0},
		{"in box", Put{Term: Var(0)}, 1},
		{"in duplicate body", Duplicate{Expression: Var(0), Body: Var(1)}, 2},
		{"annotation type ignored", Annotation{Expression: Var(0), Type: Var(0)}, 1},
		{"reference", Ref("x"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Uses(tt.term, 0))
		})
	}
}

func TestClosed(t *testing.T) {
	assert.True(t, Closed(Lam(Var(0))))
	assert.True(t, Closed(Ref("x")))
	assert.False(t, Closed(Lam(Var(1))))
	assert.False(t, Closed(Var(0)))
}
