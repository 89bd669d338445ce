package term

import "slices"

// References returns the distinct reference names occurring in t, sorted.
func References(t Term) []string {
	seen := make(map[string]bool)
	collectReferences(t, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func collectReferences(t Term, seen map[string]bool) {
	switch t := t.(type) {
	case Reference:
		seen[t.Name] = true
	case Lambda:
		collectReferences(t.Body, seen)
	case Apply:
		collectReferences(t.Function, seen)
		collectReferences(t.Argument, seen)
	case Put:
		collectReferences(t.Term, seen)
	case Duplicate:
		collectReferences(t.Expression, seen)
		collectReferences(t.Body, seen)
	case Function:
		collectReferences(t.ArgumentType, seen)
		collectReferences(t.ReturnType, seen)
	case Annotation:
		collectReferences(t.Expression, seen)
		collectReferences(t.Type, seen)
	case Wrap:
		collectReferences(t.Term, seen)
	}
}
