package net

import (
	"fmt"
	"strings"
)

// Stats summarises the arena.
type Stats struct {
	Slots   int `json:"slots"`
	Live    int `json:"live"`
	Deltas  int `json:"deltas"`
	Zetas   int `json:"zetas"`
	Erasers int `json:"erasers"`
	Freed   int `json:"freed"`
	Active  int `json:"active"`
}

// Stats counts the agents of n by tag.
func (n *Net) Stats() Stats {
	s := Stats{
		Slots:  len(n.Agents),
		Freed:  len(n.Freed),
		Active: len(n.Active),
	}
	for _, a := range n.Agents {
		switch a.Type {
		case Delta:
			s.Deltas++
		case Zeta:
			s.Zetas++
		case Eraser:
			s.Erasers++
		}
	}
	s.Live = s.Deltas + s.Zetas + s.Erasers
	return s
}

// Dump renders every live slot of n in arena order, followed by the free
// list and the work list. The output is stable and used for golden files.
func Dump(n *Net) string {
	var sb strings.Builder
	for slot, a := range n.Agents {
		if a.Type == Free {
			continue
		}
		fmt.Fprintf(&sb, "%d %s", slot, a.Type)
		ports := 1 + a.Type.Arity()
		for r := 0; r < ports; r++ {
			fmt.Fprintf(&sb, " %s=%s", Role(r), a.Ports[r])
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "freed %v\n", n.Freed)
	fmt.Fprintf(&sb, "active %v\n", n.Active)
	return sb.String()
}
