package term

import "slices"

// Definitions resolves reference names to their defining terms.
//
// Implementations must be referentially stable for as long as any value
// derived from them (a checked term, a compiled net) is in use.
type Definitions interface {
	Get(name string) (Term, bool)
}

// MapDefinitions is an in-memory Definitions backed by a map.
type MapDefinitions map[string]Term

// Get implements Definitions.
func (d MapDefinitions) Get(name string) (Term, bool) {
	t, ok := d[name]
	return t, ok
}

// Names returns the defined names in sorted order.
func (d MapDefinitions) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
