package term

import (
	"errors"
	"fmt"
)

// NormalizationError reports a reference that could not be expanded.
type NormalizationError struct {
	Name string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize: undefined reference %q", e.Name)
}

// IsNormalizationError returns true if err wraps a NormalizationError.
func IsNormalizationError(err error) bool {
	var ne *NormalizationError
	return errors.As(err, &ne)
}

// NormalizeOption configures Normalize.
type NormalizeOption func(*normalizer)

// WithMaxSteps sets the step quota. Zero disables the quota.
func WithMaxSteps(maxSteps int) NormalizeOption {
	return func(n *normalizer) {
		n.quota = NewQuotaEnforcer(maxSteps)
	}
}

type normalizer struct {
	defs  Definitions
	quota *QuotaEnforcer
}

// Normalize reduces t to normal form in normal order.
//
// A step is one of: beta reduction of an applied lambda, elimination of a
// duplicated box, or expansion of a reference. Annotations are erased. The
// result contains no references.
func Normalize(t Term, defs Definitions, opts ...NormalizeOption) (Term, error) {
	n := &normalizer{
		defs:  defs,
		quota: NewQuotaEnforcer(DefaultMaxSteps),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n.normal(t)
}

func (n *normalizer) normal(t Term) (Term, error) {
	t, err := n.whnf(t)
	if err != nil {
		return nil, err
	}

	switch t := t.(type) {
	case Lambda:
		body, err := n.normal(t.Body)
		if err != nil {
			return nil, err
		}
		return Lambda{Body: body, Erased: t.Erased}, nil
	case Apply:
		function, err := n.normal(t.Function)
		if err != nil {
			return nil, err
		}
		argument, err := n.normal(t.Argument)
		if err != nil {
			return nil, err
		}
		return Apply{Function: function, Argument: argument, Erased: t.Erased}, nil
	case Put:
		inner, err := n.normal(t.Term)
		if err != nil {
			return nil, err
		}
		return Put{Term: inner}, nil
	case Duplicate:
		expression, err := n.normal(t.Expression)
		if err != nil {
			return nil, err
		}
		body, err := n.normal(t.Body)
		if err != nil {
			return nil, err
		}
		return Duplicate{Expression: expression, Body: body}, nil
	case Function:
		argumentType, err := n.normal(t.ArgumentType)
		if err != nil {
			return nil, err
		}
		returnType, err := n.normal(t.ReturnType)
		if err != nil {
			return nil, err
		}
		return Function{ArgumentType: argumentType, ReturnType: returnType, Erased: t.Erased}, nil
	case Wrap:
		inner, err := n.normal(t.Term)
		if err != nil {
			return nil, err
		}
		return Wrap{Term: inner}, nil
	default:
		return t, nil
	}
}

// whnf reduces t until its head is no longer a redex.
func (n *normalizer) whnf(t Term) (Term, error) {
	for {
		switch cur := t.(type) {
		case Apply:
			function, err := n.whnf(cur.Function)
			if err != nil {
				return nil, err
			}
			lam, ok := function.(Lambda)
			if !ok {
				return Apply{Function: function, Argument: cur.Argument, Erased: cur.Erased}, nil
			}
			if err := n.quota.Check(); err != nil {
				return nil, err
			}
			t = SubstituteTop(lam.Body, cur.Argument)
		case Duplicate:
			expression, err := n.whnf(cur.Expression)
			if err != nil {
				return nil, err
			}
			box, ok := expression.(Put)
			if !ok {
				return Duplicate{Expression: expression, Body: cur.Body}, nil
			}
			if err := n.quota.Check(); err != nil {
				return nil, err
			}
			t = SubstituteTop(cur.Body, box.Term)
		case Reference:
			if n.defs == nil {
				return nil, &NormalizationError{Name: cur.Name}
			}
			def, ok := n.defs.Get(cur.Name)
			if !ok {
				return nil, &NormalizationError{Name: cur.Name}
			}
			if err := n.quota.Check(); err != nil {
				return nil, err
			}
			t = def
		case Annotation:
			t = cur.Expression
		default:
			return t, nil
		}
	}
}
