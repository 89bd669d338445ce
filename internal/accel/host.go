package accel

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/roach88/strata/internal/net"
)

// HostBackend runs the kernels on goroutines over host memory. Each
// workgroup runs on its own goroutine, at most Workers at a time, and
// walks its lanes in order.
type HostBackend struct {
	mu sync.Mutex

	buf     *Buffers
	pending *sync.WaitGroup
	closed  bool

	faultMu sync.Mutex
	fault   error

	workers   int
	maxAgents int
	logger    *slog.Logger
}

var _ Backend = (*HostBackend)(nil)

// HostOption configures a HostBackend.
type HostOption func(*HostBackend)

// WithWorkers bounds the number of workgroups running at once.
// Zero or less uses GOMAXPROCS.
func WithWorkers(n int) HostOption {
	return func(h *HostBackend) {
		h.workers = n
	}
}

// WithMaxAgents bounds the arena size. Reserving more slots fails with
// ErrCodeOutOfMemory. Zero means only net.MaxSlots applies.
func WithMaxAgents(n int) HostOption {
	return func(h *HostBackend) {
		h.maxAgents = n
	}
}

// WithHostLogger sets the logger.
func WithHostLogger(l *slog.Logger) HostOption {
	return func(h *HostBackend) {
		h.logger = l
	}
}

// NewHostBackend creates a host backend.
func NewHostBackend(opts ...HostOption) (*HostBackend, error) {
	h := &HostBackend{logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	if h.workers <= 0 {
		h.workers = runtime.GOMAXPROCS(0)
	}
	if h.maxAgents < 0 {
		return nil, newError(ErrCodeDeviceCreation, "max agents must not be negative, got %d", h.maxAgents)
	}
	if h.maxAgents == 0 || h.maxAgents > net.MaxSlots {
		h.maxAgents = net.MaxSlots
	}
	return h, nil
}

// Upload implements Backend.
func (h *HostBackend) Upload(b Buffers) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if len(b.Agents) > h.maxAgents {
		return newError(ErrCodeOutOfMemory, "net has %d slots, limit %d", len(b.Agents), h.maxAgents)
	}
	if int(b.State.Agents) > len(b.Agents) ||
		int(b.State.ActivePairs) > len(b.Active) ||
		int(b.State.FreedAgents) > len(b.Freed) {
		return newError(ErrCodeDeviceAlloc, "counters exceed staged buffers")
	}

	h.buf = &Buffers{
		Agents: append([]net.Agent(nil), b.Agents...),
		Active: append([]net.Index(nil), b.Active...),
		Freed:  append([]net.Index(nil), b.Freed...),
		Visits: append([]Visit(nil), b.Visits...),
		State:  b.State,
	}
	h.logger.Debug("buffers uploaded",
		"agents", len(b.Agents),
		"active", b.State.ActivePairs,
		"freed", b.State.FreedAgents)
	return nil
}

// Reserve implements Backend.
func (h *HostBackend) Reserve(agents, visits int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if h.buf == nil {
		return &Error{Code: ErrCodeDescriptorSetMissing}
	}
	if agents > h.maxAgents {
		return newError(ErrCodeOutOfMemory, "%d agent slots requested, limit %d", agents, h.maxAgents)
	}

	b := h.buf
	b.Agents = grow(b.Agents, agents)
	// Every live agent can be in at most one redex, and every slot freed
	// at most once, so both lists fit in one entry per arena slot.
	b.Active = grow(b.Active, agents)
	b.Freed = grow(b.Freed, agents)
	b.Visits = grow(b.Visits, visits)
	return nil
}

func grow[T any](s []T, n int) []T {
	if len(s) >= n {
		return s
	}
	return append(s, make([]T, n-len(s))...)
}

// Dispatch implements Backend.
func (h *HostBackend) Dispatch(k Kernel, groups uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if h.buf == nil {
		return &Error{Code: ErrCodeDescriptorSetMissing}
	}

	var lane func(*Buffers, uint32) error
	switch k {
	case KernelRedex:
		lane = redexLane
	case KernelVisit:
		lane = visitLane
	default:
		return newError(ErrCodePipelineCreation, "unknown kernel %d", k)
	}

	wg := &sync.WaitGroup{}
	h.pending = wg
	sem := make(chan struct{}, h.workers)
	buf := h.buf
	for g := uint32(0); g < groups; g++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(group uint32) {
			defer func() {
				<-sem
				wg.Done()
			}()
			for l := uint32(0); l < BlockSize; l++ {
				if err := lane(buf, group*BlockSize+l); err != nil {
					h.recordFault(k, err)
					return
				}
			}
		}(g)
	}
	return nil
}

// recordFault keeps the first lane failure of a dispatch.
func (h *HostBackend) recordFault(k Kernel, err error) {
	h.faultMu.Lock()
	defer h.faultMu.Unlock()
	if h.fault == nil {
		h.fault = fmt.Errorf("%s kernel: %w", k, err)
	}
}

// Wait implements Backend. A lane failure surfaces here.
func (h *HostBackend) Wait() error {
	h.mu.Lock()
	wg := h.pending
	h.mu.Unlock()
	if wg == nil {
		return nil
	}
	wg.Wait()

	h.mu.Lock()
	h.pending = nil
	h.mu.Unlock()

	h.faultMu.Lock()
	err := h.fault
	h.fault = nil
	h.faultMu.Unlock()
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return &Error{Code: ae.Code, Err: err}
	}
	return &Error{Code: ErrCodeExec, Err: err}
}

// WithState implements Backend.
func (h *HostBackend) WithState(fn func(*State)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if h.buf == nil {
		return &Error{Code: ErrCodeDescriptorSetMissing}
	}
	fn(&h.buf.State)
	return nil
}

// Download implements Backend.
func (h *HostBackend) Download() (Buffers, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return Buffers{}, err
	}
	if h.buf == nil {
		return Buffers{}, &Error{Code: ErrCodeDescriptorSetMissing}
	}
	b := h.buf
	return Buffers{
		Agents: append([]net.Agent(nil), b.Agents...),
		Active: append([]net.Index(nil), b.Active...),
		Freed:  append([]net.Index(nil), b.Freed...),
		Visits: append([]Visit(nil), b.Visits...),
		State:  b.State,
	}, nil
}

// Close implements Backend. Closing twice is a no-op.
func (h *HostBackend) Close() error {
	h.mu.Lock()
	wg := h.pending
	h.mu.Unlock()
	if wg != nil {
		wg.Wait()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.pending = nil
	h.buf = nil
	return nil
}

// usable must be called with mu held.
func (h *HostBackend) usable() error {
	if h.closed {
		return newError(ErrCodeNoSuitableDevice, "backend is closed")
	}
	if h.pending != nil {
		return newError(ErrCodeDispatch, "a dispatch is already in flight")
	}
	return nil
}
