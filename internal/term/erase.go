package term

// Erase returns the runtime shape of t: boxes and annotations are
// dropped, erased applications keep only their function, erased lambdas
// are removed with their binder, and duplications are inlined into their
// body. This is the shape a compiled net reads back as.
//
// t must not use an erased binder outside erased positions.
func Erase(t Term) Term {
	switch t := t.(type) {
	case Lambda:
		body := Erase(t.Body)
		if t.Erased {
			return Shift(body, 0, -1)
		}
		return Lambda{Body: body}
	case Apply:
		if t.Erased {
			return Erase(t.Function)
		}
		return Apply{Function: Erase(t.Function), Argument: Erase(t.Argument)}
	case Put:
		return Erase(t.Term)
	case Annotation:
		return Erase(t.Expression)
	case Duplicate:
		// A dup allocates no agent; its binding is the expression itself.
		return SubstituteTop(Erase(t.Body), Erase(t.Expression))
	default:
		return t
	}
}
