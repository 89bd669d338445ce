// Package accel reduces interaction nets with a bulk-synchronous parallel
// engine.
//
// A net is staged into backend buffers once. Each round dispatches the
// redex kernel over the active pairs, waits, dispatches the visit kernel
// over the queued fix-ups, waits, and reads the counters back. Reduction
// stops when a round leaves no active pair. The barrier between the two
// passes is what makes concurrent rewrites safe: a rewrite may leave a
// neighbour's edge stale, and only the visit pass, run after every
// rewrite of the round has finished, repairs it.
package accel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/strata/internal/net"
)

// Accelerated is a net staged on a backend. It owns the backend for its
// lifetime.
type Accelerated struct {
	backend Backend
	logger  *slog.Logger
	rounds  int
	closed  bool
}

// Option configures an Accelerated engine.
type Option func(*Accelerated)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Accelerated) {
		a.logger = l
	}
}

// New stages n on backend. n is not modified.
func New(n *net.Net, backend Backend, opts ...Option) (*Accelerated, error) {
	if n == nil {
		return nil, fmt.Errorf("accel: nil net")
	}
	a := &Accelerated{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	staged := n.Clone()
	staged.CompactActive()
	err := backend.Upload(Buffers{
		Agents: staged.Agents,
		Active: staged.Active,
		Freed:  staged.Freed,
		State: State{
			ActivePairs: uint32(len(staged.Active)),
			FreedAgents: uint32(len(staged.Freed)),
			Agents:      uint32(len(staged.Agents)),
		},
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ReduceAll runs rounds until no active pair remains and returns the
// number of rewrites since the last call. ctx is checked between rounds;
// a round in flight always completes.
func (a *Accelerated) ReduceAll(ctx context.Context) (int, error) {
	if a.closed {
		return 0, newError(ErrCodeNoSuitableDevice, "engine is closed")
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var pairs, agents uint32
		if err := a.backend.WithState(func(s *State) {
			pairs, agents = s.ActivePairs, s.Agents
		}); err != nil {
			return 0, err
		}

		err := a.backend.Reserve(
			int(agents)+int(pairs)*maxAgentsPerRedex,
			int(pairs)*maxVisitsPerRedex,
		)
		if err != nil {
			return 0, err
		}

		if err := a.run(KernelRedex, pairs); err != nil {
			return 0, err
		}

		var visits, done uint32
		if err := a.backend.WithState(func(s *State) {
			visits, done = s.VisitsNeeded, s.ActivePairsDone
			s.ActivePairs = 0
			s.ActivePairsDone = 0
		}); err != nil {
			return 0, err
		}
		if done != pairs {
			return 0, newError(ErrCodeExec, "redex pass finished %d of %d pairs", done, pairs)
		}

		if err := a.run(KernelVisit, visits); err != nil {
			return 0, err
		}

		var next, rewrites uint32
		if err := a.backend.WithState(func(s *State) {
			s.VisitsNeeded = 0
			s.VisitsDone = 0
			next = s.ActivePairs
			if next == 0 {
				rewrites = s.Rewrites
				s.Rewrites = 0
			}
		}); err != nil {
			return 0, err
		}

		a.rounds++
		a.logger.Debug("accelerated round",
			"round", a.rounds,
			"pairs", pairs,
			"visits", visits,
			"next", next)

		if next == 0 {
			return int(rewrites), nil
		}
	}
}

func (a *Accelerated) run(k Kernel, items uint32) error {
	if err := a.backend.Dispatch(k, Groups(items)); err != nil {
		return err
	}
	return a.backend.Wait()
}

// Rounds returns the number of rounds run so far.
func (a *Accelerated) Rounds() int {
	return a.rounds
}

// IntoNet reads the staged net back and releases the backend.
func (a *Accelerated) IntoNet() (*net.Net, error) {
	if a.closed {
		return nil, newError(ErrCodeNoSuitableDevice, "engine is closed")
	}
	buf, err := a.backend.Download()
	if err != nil {
		return nil, err
	}
	s := buf.State
	if int(s.Agents) > len(buf.Agents) || int(s.FreedAgents) > len(buf.Freed) || int(s.ActivePairs) > len(buf.Active) {
		return nil, newError(ErrCodeDeviceAlloc, "counters exceed downloaded buffers")
	}

	n := &net.Net{
		Agents: append([]net.Agent(nil), buf.Agents[:s.Agents]...),
		Freed:  append([]net.Index(nil), buf.Freed[:s.FreedAgents]...),
		Active: append([]net.Index(nil), buf.Active[:s.ActivePairs]...),
	}
	// Dead slots still hold the redirects of their last round.
	for i := range n.Agents {
		if n.Agents[i].Type == net.Free {
			n.Agents[i] = net.Agent{}
		}
	}

	if err := a.Close(); err != nil {
		return nil, err
	}
	return n, nil
}

// Close releases the backend.
func (a *Accelerated) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	return a.backend.Close()
}
