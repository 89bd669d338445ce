package accel

import (
	"github.com/roach88/strata/internal/compiler"
	"github.com/roach88/strata/internal/net"
	"github.com/roach88/strata/internal/stratify"
)

// Builder constructs a net in host memory and stages it on a backend when
// built, so the compiler can target the accelerator directly.
type Builder struct {
	mem     *net.MemoryBuilder
	backend Backend
	opts    []Option
}

var _ net.Builder[*Accelerated] = (*Builder)(nil)

// NewBuilder returns a builder that stages onto backend.
func NewBuilder(backend Backend, opts ...Option) *Builder {
	return &Builder{
		mem:     net.NewBuilder(),
		backend: backend,
		opts:    opts,
	}
}

func (b *Builder) Add(t net.AgentType) (net.Port, net.Port, net.Port) {
	return b.mem.Add(t)
}

func (b *Builder) Connect(x, y net.Port) {
	b.mem.Connect(x, y)
}

func (b *Builder) Follow(p net.Port) net.Port {
	return b.mem.Follow(p)
}

func (b *Builder) IsRoot(p net.Port) bool {
	return b.mem.IsRoot(p)
}

// Build finalizes the net and uploads it.
func (b *Builder) Build(entry net.Port) (*Accelerated, error) {
	n, err := b.mem.Build(entry)
	if err != nil {
		return nil, err
	}
	return New(n, b.backend, b.opts...)
}

// BuildAccelerated compiles s straight onto backend.
func BuildAccelerated(s *stratify.Stratified, backend Backend, opts ...Option) (*Accelerated, error) {
	return compiler.Compile[*Accelerated](s, NewBuilder(backend, opts...))
}
