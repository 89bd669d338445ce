package net

import "fmt"

// Index identifies an agent slot in the arena.
type Index uint32

// AgentType is the tag of an agent.
type AgentType uint8

const (
	// Free marks a dead slot awaiting reuse.
	Free AgentType = iota

	// Root anchors the interface of a net. It never takes part in a redex.
	Root

	// Delta is the binary combinator encoding both abstraction and
	// application.
	Delta

	// Zeta is the fan that shares one value between two uses.
	Zeta

	// Eraser discards whatever its principal port meets.
	Eraser
)

// Arity returns the number of auxiliary ports.
func (t AgentType) Arity() int {
	switch t {
	case Delta, Zeta:
		return 2
	default:
		return 0
	}
}

// String returns the tag name.
func (t AgentType) String() string {
	switch t {
	case Free:
		return "free"
	case Root:
		return "root"
	case Delta:
		return "delta"
	case Zeta:
		return "zeta"
	case Eraser:
		return "eraser"
	default:
		return fmt.Sprintf("agent(%d)", uint8(t))
	}
}

// Live reports whether an agent of this tag may take part in a redex.
func (t AgentType) Live() bool {
	return t != Free && t != Root
}

// Role names one of an agent's three ports.
type Role uint8

const (
	Principal Role = iota
	Left
	Right
)

// Aux returns the role of the i-th auxiliary port.
func Aux(i int) Role {
	return Role(i + 1)
}

func (r Role) String() string {
	switch r {
	case Principal:
		return "p"
	case Left:
		return "l"
	case Right:
		return "r"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Port packs an agent slot and a role into one word: slot<<2 | role.
type Port uint32

const roleBits = 2

// MaxSlots bounds the arena so that every slot fits in a Port.
const MaxSlots = 1 << (32 - roleBits)

// RootPort is the principal port of the Root agent: the net's interface.
const RootPort = Port(0)

// MakePort returns the port of slot with the given role.
func MakePort(slot Index, role Role) Port {
	return Port(uint32(slot)<<roleBits | uint32(role))
}

// Slot returns the agent slot.
func (p Port) Slot() Index {
	return Index(p >> roleBits)
}

// Role returns the port role.
func (p Port) Role() Role {
	return Role(p & (1<<roleBits - 1))
}

// IsPrincipal reports whether p is a principal port.
func (p Port) IsPrincipal() bool {
	return p.Role() == Principal
}

func (p Port) String() string {
	if p == RootPort {
		return "root"
	}
	return fmt.Sprintf("%d.%s", p.Slot(), p.Role())
}

// Agent is one arena record. Ports[r] holds the far end of the edge
// attached to role r; a port that points to itself is unconnected.
type Agent struct {
	Type  AgentType
	Ports [3]Port
}

// newAgent returns an agent of type t occupying slot with all ports
// unconnected.
func newAgent(t AgentType, slot Index) Agent {
	return Agent{
		Type: t,
		Ports: [3]Port{
			MakePort(slot, Principal),
			MakePort(slot, Left),
			MakePort(slot, Right),
		},
	}
}
