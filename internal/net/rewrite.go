package net

// Interact rewrites the redex containing slot. It reports false, and
// leaves the net untouched, if slot is not part of a redex.
func (n *Net) Interact(slot Index) bool {
	other, ok := n.Redex(slot)
	if !ok {
		return false
	}
	if n.Agents[slot].Type == n.Agents[other].Type {
		n.annihilate(slot, other)
	} else {
		n.commute(slot, other)
	}
	return true
}

// annihilate joins the i-th auxiliary neighbour of a with the i-th
// auxiliary neighbour of b, then frees both agents.
//
// Each step reads the current edges, so an auxiliary port of a or b that
// was rewired by an earlier step acts as a relay for the later one. This
// covers edges between the two agents and loops on a single agent.
func (n *Net) annihilate(a, b Index) {
	arity := n.Agents[a].Type.Arity()
	for i := 0; i < arity; i++ {
		x := n.Follow(MakePort(a, Aux(i)))
		y := n.Follow(MakePort(b, Aux(i)))
		n.Connect(x, y)
	}
	n.free(a)
	n.free(b)
}

// commute copies a once per auxiliary port of b and b once per auxiliary
// port of a. Copy a'j takes b's place on b's j-th auxiliary edge and copy
// b'i takes a's place on a's i-th auxiliary edge; the copies are
// cross-wired a'j.aux(i) -- b'i.aux(j).
//
// An Eraser has no auxiliary ports, so meeting it makes no copies of the
// other agent and sends one eraser down each of its auxiliary edges.
func (n *Net) commute(a, b Index) {
	ta, tb := n.Agents[a].Type, n.Agents[b].Type
	na, nb := ta.Arity(), tb.Arity()

	ca := make([]Index, nb)
	for j := range ca {
		ca[j] = n.alloc(ta)
	}
	cb := make([]Index, na)
	for i := range cb {
		cb[i] = n.alloc(tb)
	}

	for j := 0; j < nb; j++ {
		for i := 0; i < na; i++ {
			n.Connect(MakePort(ca[j], Aux(i)), MakePort(cb[i], Aux(j)))
		}
	}

	// Same relay argument as annihilate: edges between a and b, or loops
	// on one of them, resolve through ports already rewired above.
	for j := 0; j < nb; j++ {
		n.Connect(MakePort(ca[j], Principal), n.Follow(MakePort(b, Aux(j))))
	}
	for i := 0; i < na; i++ {
		n.Connect(MakePort(cb[i], Principal), n.Follow(MakePort(a, Aux(i))))
	}

	n.free(a)
	n.free(b)
}
