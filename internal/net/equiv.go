package net

import (
	"fmt"
	"strings"
)

// Canonical renders the part of n reachable from the interface with slots
// renumbered in breadth-first order from Root. Two nets with the same
// canonical form are indistinguishable from the interface, whatever their
// arena layout.
func Canonical(n *Net) string {
	ids := map[Index]int{0: 0}
	order := []Index{0}

	var sb strings.Builder
	for k := 0; k < len(order); k++ {
		slot := order[k]
		a := n.Agents[slot]
		fmt.Fprintf(&sb, "%d %s", k, a.Type)

		ports := 1 + a.Type.Arity()
		if a.Type == Free {
			ports = 0
		}
		for r := 0; r < ports; r++ {
			self := MakePort(slot, Role(r))
			far := a.Ports[r]
			if far == self {
				fmt.Fprintf(&sb, " %s=-", Role(r))
				continue
			}
			id, ok := ids[far.Slot()]
			if !ok {
				id = len(order)
				ids[far.Slot()] = id
				order = append(order, far.Slot())
			}
			fmt.Fprintf(&sb, " %s=%d.%s", Role(r), id, far.Role())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equivalent reports whether a and b look the same from their interfaces.
func Equivalent(a, b *Net) bool {
	return Canonical(a) == Canonical(b)
}
