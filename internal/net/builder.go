package net

// Builder constructs a net incrementally. The compiler drives any Builder
// the same way, so the product N may be an in-memory *Net or a net staged
// elsewhere.
type Builder[N any] interface {
	// Add allocates a fresh agent and returns its ports.
	Add(t AgentType) (principal, left, right Port)

	// Connect joins two ports, replacing any prior edge on either.
	Connect(a, b Port)

	// Follow returns the far end of p, or p if unconnected.
	Follow(p Port) Port

	// IsRoot reports whether p is the interface port.
	IsRoot(p Port) bool

	// Build anchors entry as the interface and finalizes the net.
	Build(entry Port) (N, error)
}

// MemoryBuilder builds a *Net in host memory.
type MemoryBuilder struct {
	net *Net
}

var _ Builder[*Net] = (*MemoryBuilder)(nil)

// NewBuilder returns a builder over an empty net.
func NewBuilder() *MemoryBuilder {
	return &MemoryBuilder{net: New()}
}

func (b *MemoryBuilder) Add(t AgentType) (Port, Port, Port) {
	return b.net.Add(t)
}

func (b *MemoryBuilder) Connect(x, y Port) {
	b.net.Connect(x, y)
}

func (b *MemoryBuilder) Follow(p Port) Port {
	return b.net.Follow(p)
}

func (b *MemoryBuilder) IsRoot(p Port) bool {
	return b.net.IsRoot(p)
}

// Build connects entry to the Root agent and drops stale redexes from the
// work list. The builder must not be used afterwards.
func (b *MemoryBuilder) Build(entry Port) (*Net, error) {
	n := b.net
	b.net = nil
	n.Connect(RootPort, entry)
	n.CompactActive()
	return n, nil
}
