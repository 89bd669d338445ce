package term

// Equal reports whether a and b are the same term up to consistent renaming
// of bound variables.
//
// Both terms are walked in lock-step. De Bruijn indices already identify a
// binder by its distance, so two variables under the same number of binders
// are equal exactly when their indices are. Annotations are transparent: an
// annotated expression equals the bare expression.
func Equal(a, b Term) bool {
	return equalAt(a, b, 0)
}

func equalAt(a, b Term, depth Index) bool {
	if ann, ok := a.(Annotation); ok {
		return equalAt(ann.Expression, b, depth)
	}
	if ann, ok := b.(Annotation); ok {
		return equalAt(a, ann.Expression, depth)
	}

	switch a := a.(type) {
	case Variable:
		b, ok := b.(Variable)
		return ok && a.Index == b.Index
	case Lambda:
		b, ok := b.(Lambda)
		return ok && a.Erased == b.Erased && equalAt(a.Body, b.Body, depth.Child())
	case Apply:
		b, ok := b.(Apply)
		return ok && a.Erased == b.Erased &&
			equalAt(a.Function, b.Function, depth) &&
			equalAt(a.Argument, b.Argument, depth)
	case Put:
		b, ok := b.(Put)
		return ok && equalAt(a.Term, b.Term, depth)
	case Duplicate:
		b, ok := b.(Duplicate)
		return ok && equalAt(a.Expression, b.Expression, depth) &&
			equalAt(a.Body, b.Body, depth.Child())
	case Reference:
		b, ok := b.(Reference)
		return ok && a.Name == b.Name
	case Universe:
		_, ok := b.(Universe)
		return ok
	case Function:
		b, ok := b.(Function)
		return ok && a.Erased == b.Erased &&
			equalAt(a.ArgumentType, b.ArgumentType, depth) &&
			equalAt(a.ReturnType, b.ReturnType, depth.Child())
	case Wrap:
		b, ok := b.(Wrap)
		return ok && equalAt(a.Term, b.Term, depth)
	default:
		return false
	}
}
