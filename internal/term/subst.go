package term

// Shift adds amount to every variable whose index is at least cutoff.
// Negative amounts close gaps; callers must not shift a variable below zero.
func Shift(t Term, cutoff Index, amount int) Term {
	if amount == 0 {
		return t
	}
	switch t := t.(type) {
	case Variable:
		if t.Index >= cutoff {
			return Variable{Index: Index(int(t.Index) + amount)}
		}
		return t
	case Lambda:
		return Lambda{Body: Shift(t.Body, cutoff.Child(), amount), Erased: t.Erased}
	case Apply:
		return Apply{
			Function: Shift(t.Function, cutoff, amount),
			Argument: Shift(t.Argument, cutoff, amount),
			Erased:   t.Erased,
		}
	case Put:
		return Put{Term: Shift(t.Term, cutoff, amount)}
	case Duplicate:
		return Duplicate{
			Expression: Shift(t.Expression, cutoff, amount),
			Body:       Shift(t.Body, cutoff.Child(), amount),
		}
	case Function:
		return Function{
			ArgumentType: Shift(t.ArgumentType, cutoff, amount),
			ReturnType:   Shift(t.ReturnType, cutoff.Child(), amount),
			Erased:       t.Erased,
		}
	case Annotation:
		return Annotation{
			Checked:    t.Checked,
			Expression: Shift(t.Expression, cutoff, amount),
			Type:       Shift(t.Type, cutoff, amount),
		}
	case Wrap:
		return Wrap{Term: Shift(t.Term, cutoff, amount)}
	default:
		// Reference, Universe: closed
		return t
	}
}

// Substitute replaces the variable at depth with replacement.
//
// Free variables of replacement are shifted up by the number of binders
// crossed on the way down; variables above depth are decremented to close
// the gap left by the removed binder.
func Substitute(t Term, depth Index, replacement Term) Term {
	return substitute(t, depth, replacement, 0)
}

// SubstituteTop replaces the innermost free variable.
func SubstituteTop(t Term, replacement Term) Term {
	return Substitute(t, 0, replacement)
}

func substitute(t Term, depth Index, replacement Term, crossed Index) Term {
	switch t := t.(type) {
	case Variable:
		target := depth + crossed
		switch {
		case t.Index == target:
			return Shift(replacement, 0, int(crossed))
		case t.Index > target:
			return Variable{Index: t.Index - 1}
		default:
			return t
		}
	case Lambda:
		return Lambda{Body: substitute(t.Body, depth, replacement, crossed.Child()), Erased: t.Erased}
	case Apply:
		return Apply{
			Function: substitute(t.Function, depth, replacement, crossed),
			Argument: substitute(t.Argument, depth, replacement, crossed),
			Erased:   t.Erased,
		}
	case Put:
		return Put{Term: substitute(t.Term, depth, replacement, crossed)}
	case Duplicate:
		return Duplicate{
			Expression: substitute(t.Expression, depth, replacement, crossed),
			Body:       substitute(t.Body, depth, replacement, crossed.Child()),
		}
	case Function:
		return Function{
			ArgumentType: substitute(t.ArgumentType, depth, replacement, crossed),
			ReturnType:   substitute(t.ReturnType, depth, replacement, crossed.Child()),
			Erased:       t.Erased,
		}
	case Annotation:
		return Annotation{
			Checked:    t.Checked,
			Expression: substitute(t.Expression, depth, replacement, crossed),
			Type:       substitute(t.Type, depth, replacement, crossed),
		}
	case Wrap:
		return Wrap{Term: substitute(t.Term, depth, replacement, crossed)}
	default:
		return t
	}
}

// Uses counts the runtime occurrences of the variable at depth inside t.
// Arguments of erased applications and annotation types never reach a net
// and are not counted.
func Uses(t Term, depth Index) int {
	switch t := t.(type) {
	case Variable:
		if t.Index == depth {
			return 1
		}
		return 0
	case Lambda:
		return Uses(t.Body, depth.Child())
	case Apply:
		if t.Erased {
			return Uses(t.Function, depth)
		}
		return Uses(t.Function, depth) + Uses(t.Argument, depth)
	case Put:
		return Uses(t.Term, depth)
	case Duplicate:
		return Uses(t.Expression, depth) + Uses(t.Body, depth.Child())
	case Function:
		return Uses(t.ArgumentType, depth) + Uses(t.ReturnType, depth.Child())
	case Annotation:
		return Uses(t.Expression, depth)
	case Wrap:
		return Uses(t.Term, depth)
	default:
		return 0
	}
}

// Closed reports whether t has no free variables.
func Closed(t Term) bool {
	return freeAbove(t, 0)
}

func freeAbove(t Term, depth Index) bool {
	switch t := t.(type) {
	case Variable:
		return t.Index < depth
	case Lambda:
		return freeAbove(t.Body, depth.Child())
	case Apply:
		return freeAbove(t.Function, depth) && freeAbove(t.Argument, depth)
	case Put:
		return freeAbove(t.Term, depth)
	case Duplicate:
		return freeAbove(t.Expression, depth) && freeAbove(t.Body, depth.Child())
	case Function:
		return freeAbove(t.ArgumentType, depth) && freeAbove(t.ReturnType, depth.Child())
	case Annotation:
		return freeAbove(t.Expression, depth) && freeAbove(t.Type, depth)
	case Wrap:
		return freeAbove(t.Term, depth)
	default:
		return true
	}
}
