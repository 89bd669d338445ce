package net

// Net is an interaction net held in an agent arena.
//
// Agents is indexed by slot. Freed lists dead slots available for reuse,
// most recently freed last. Active is the work list: each entry names one
// agent of a (possibly stale) redex.
type Net struct {
	Agents []Agent
	Freed  []Index
	Active []Index

	// maxSlots caps the arena below MaxSlots when positive.
	maxSlots int
}

// New returns a net holding only the Root agent.
func New() *Net {
	return &Net{
		Agents: []Agent{newAgent(Root, 0)},
	}
}

// Add allocates an agent of type t and returns its three ports. Freed
// slots are reused before the arena grows.
func (n *Net) Add(t AgentType) (principal, left, right Port) {
	slot := n.alloc(t)
	return MakePort(slot, Principal), MakePort(slot, Left), MakePort(slot, Right)
}

func (n *Net) alloc(t AgentType) Index {
	if k := len(n.Freed); k > 0 {
		slot := n.Freed[k-1]
		n.Freed = n.Freed[:k-1]
		n.Agents[slot] = newAgent(t, slot)
		return slot
	}
	if len(n.Agents) >= n.capacity() {
		// reduce checks room before every rewrite; only a builder adding
		// past the limit gets here.
		panic("net: agent arena exhausted")
	}
	slot := Index(len(n.Agents))
	n.Agents = append(n.Agents, newAgent(t, slot))
	return slot
}

func (n *Net) capacity() int {
	if n.maxSlots > 0 && n.maxSlots < MaxSlots {
		return n.maxSlots
	}
	return MaxSlots
}

// room is the number of agents that can be allocated without growing past
// the arena limit.
func (n *Net) room() int {
	return len(n.Freed) + n.capacity() - len(n.Agents)
}

func (n *Net) free(slot Index) {
	n.Agents[slot] = Agent{Type: Free}
	n.Freed = append(n.Freed, slot)
}

// Connect joins a and b with one edge. Any previous edge on either port is
// replaced on that side only; callers rewire the old far ends themselves.
// Joining two principal ports of live agents records a redex.
func (n *Net) Connect(a, b Port) {
	n.Agents[a.Slot()].Ports[a.Role()] = b
	n.Agents[b.Slot()].Ports[b.Role()] = a

	if a.IsPrincipal() && b.IsPrincipal() && a.Slot() != b.Slot() &&
		n.Agents[a.Slot()].Type.Live() && n.Agents[b.Slot()].Type.Live() {
		n.Active = append(n.Active, a.Slot())
	}
}

// Follow returns the far end of p, or p itself if p is unconnected.
func (n *Net) Follow(p Port) Port {
	return n.Agents[p.Slot()].Ports[p.Role()]
}

// IsRoot reports whether p is the net's interface port.
func (n *Net) IsRoot(p Port) bool {
	return p == RootPort
}

// Redex returns the partner of slot if slot currently forms a redex.
func (n *Net) Redex(slot Index) (Index, bool) {
	if int(slot) >= len(n.Agents) {
		return 0, false
	}
	a := n.Agents[slot]
	if !a.Type.Live() {
		return 0, false
	}
	p := a.Ports[Principal]
	other := p.Slot()
	if !p.IsPrincipal() || other == slot || int(other) >= len(n.Agents) {
		return 0, false
	}
	b := n.Agents[other]
	if !b.Type.Live() || b.Ports[Principal] != MakePort(slot, Principal) {
		return 0, false
	}
	return other, true
}

// Live returns the number of live agents, Root excluded.
func (n *Net) Live() int {
	count := 0
	for _, a := range n.Agents {
		if a.Type.Live() {
			count++
		}
	}
	return count
}

// CompactActive rewrites Active to hold exactly one entry per current
// redex, in first-seen order.
func (n *Net) CompactActive() {
	seen := make(map[Index]bool, len(n.Active))
	kept := n.Active[:0]
	for _, slot := range n.Active {
		other, ok := n.Redex(slot)
		if !ok || seen[slot] || seen[other] {
			continue
		}
		seen[slot] = true
		seen[other] = true
		kept = append(kept, slot)
	}
	n.Active = kept
}

// Clone returns a deep copy of n.
func (n *Net) Clone() *Net {
	return &Net{
		Agents: append([]Agent(nil), n.Agents...),
		Freed:  append([]Index(nil), n.Freed...),
		Active: append([]Index(nil), n.Active...),

		maxSlots: n.maxSlots,
	}
}
