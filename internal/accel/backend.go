package accel

import "github.com/roach88/strata/internal/net"

// BlockSize is the number of lanes in one workgroup. A dispatch over n
// items launches ceil(n / BlockSize) workgroups.
const BlockSize = 64

// Per-redex worst cases, for the widest agents (two auxiliary ports): a
// commutation allocates two copies of each agent and queues a link fix-up
// for each of the four old neighbours and four new principal ports, plus
// two freed slots.
const (
	maxArity          = 2
	maxAgentsPerRedex = 2 * maxArity
	maxVisitsPerRedex = 4*maxArity + 2
)

// Groups returns the number of workgroups needed to cover n items.
func Groups(n uint32) uint32 {
	return (n + BlockSize - 1) / BlockSize
}

// State is the counters record shared between host and device.
type State struct {
	ActivePairs     uint32
	ActivePairsDone uint32
	FreedAgents     uint32
	VisitsNeeded    uint32
	VisitsDone      uint32
	Rewrites        uint32

	// Agents is the arena high-water mark. Lanes grow the arena past it
	// when the free list is empty.
	Agents uint32
}

// Kernel selects one of the two passes.
type Kernel uint8

const (
	// KernelRedex applies one rewrite law per active pair.
	KernelRedex Kernel = iota + 1

	// KernelVisit resolves the link fix-ups queued by the redex pass.
	KernelVisit
)

func (k Kernel) String() string {
	switch k {
	case KernelRedex:
		return "redex"
	case KernelVisit:
		return "visit"
	default:
		return "unknown"
	}
}

// VisitKind distinguishes fix-up entries.
type VisitKind uint8

const (
	// VisitLink re-resolves the edge held by Port.
	VisitLink VisitKind = iota + 1

	// VisitFree returns the slot of Port to the free list.
	VisitFree
)

// Visit is one entry of the fix-up list.
type Visit struct {
	Kind VisitKind
	Port net.Port
}

// Buffers are the device-resident sequences. Slices may be longer than the
// live prefix; State holds the lengths in use.
type Buffers struct {
	Agents []net.Agent
	Active []net.Index
	Freed  []net.Index
	Visits []Visit
	State  State
}

// Backend runs the two kernels over device-resident buffers.
//
// Dispatch is asynchronous; Wait blocks until the last dispatch completes.
// The counters record is only touched through WithState, which must not be
// called while a dispatch is in flight.
type Backend interface {
	// Upload stages buffers, replacing anything staged before.
	Upload(b Buffers) error

	// Reserve ensures room for at least agents arena slots and visits
	// fix-up entries.
	Reserve(agents, visits int) error

	// Dispatch launches groups workgroups of kernel k.
	Dispatch(k Kernel, groups uint32) error

	// Wait blocks until the pending dispatch completes.
	Wait() error

	// WithState runs fn inside the host critical section.
	WithState(fn func(*State)) error

	// Download reads the staged buffers back.
	Download() (Buffers, error)

	// Close releases device resources.
	Close() error
}
