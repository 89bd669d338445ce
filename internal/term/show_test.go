package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{Lam(Var(0)), `\x0. x0`},
		{Lam(Lam(App(Var(1), Var(0)))), `\x0. \x1. (x0 x1)`},
		{Lambda{Body: Var(0), Erased: true}, `\x0'. x0`},
		{Apply{Function: Ref("f"), Argument: Universe{}, Erased: true}, `(f '*)`},
		{Duplicate{Expression: Put{Term: Ref("a")}, Body: Var(0)}, `dup x0 = !a; x0`},
		{Var(2), `^2`},
		{Function{ArgumentType: Universe{}, ReturnType: Wrap{Term: Var(0)}}, `(x0: *) -> [x0]`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, String(tt.term))
		})
	}
}
