package term

// Index counts the binders crossed from a variable occurrence outward to
// its binder. Index 0 is the innermost binder.
type Index uint

// Child returns the index seen from inside one more binder.
func (i Index) Child() Index {
	return i + 1
}

// Term is a sealed interface over the term variants.
// Only the types in this file implement it.
type Term interface {
	term() // Sealed
}

// Variable references a binder by de Bruijn index.
type Variable struct {
	Index Index
}

// Lambda abstracts over one variable. An erased lambda exists only at the
// type level and is never materialised in a net.
type Lambda struct {
	Body   Term
	Erased bool
}

// Apply applies Function to Argument. An erased application discards its
// argument at runtime.
type Apply struct {
	Function Term
	Argument Term
	Erased   bool
}

// Put introduces a box.
type Put struct {
	Term Term
}

// Duplicate eliminates a box: Body sees the unpacked Expression as its
// innermost binder.
type Duplicate struct {
	Expression Term
	Body       Term
}

// Reference names a top-level definition.
type Reference struct {
	Name string
}

// Universe is the type of types.
type Universe struct{}

// Function is a (possibly erased) function type. ReturnType opens a binder
// for the argument.
type Function struct {
	ArgumentType Term
	ReturnType   Term
	Erased       bool
}

// Annotation ascribes Type to Expression.
type Annotation struct {
	Checked    bool
	Expression Term
	Type       Term
}

// Wrap is the box type former.
type Wrap struct {
	Term Term
}

func (Variable) term()   {}
func (Lambda) term()     {}
func (Apply) term()      {}
func (Put) term()        {}
func (Duplicate) term()  {}
func (Reference) term()  {}
func (Universe) term()   {}
func (Function) term()   {}
func (Annotation) term() {}
func (Wrap) term()       {}

// IsTyped reports whether t is one of the type-level variants that must be
// elaborated away before compilation.
func IsTyped(t Term) bool {
	switch t.(type) {
	case Universe, Function, Wrap:
		return true
	default:
		return false
	}
}

// Var is shorthand for Variable{Index: Index(i)}.
func Var(i uint) Variable {
	return Variable{Index: Index(i)}
}

// Lam is shorthand for a non-erased lambda.
func Lam(body Term) Lambda {
	return Lambda{Body: body}
}

// App is shorthand for a non-erased application.
func App(function, argument Term) Apply {
	return Apply{Function: function, Argument: argument}
}

// Ref is shorthand for Reference{Name: name}.
func Ref(name string) Reference {
	return Reference{Name: name}
}
