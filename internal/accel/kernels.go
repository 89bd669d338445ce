package accel

import (
	"fmt"
	"sync/atomic"

	"github.com/roach88/strata/internal/net"
)

// The kernels below are written against Buffers the way a compute shader
// is written against bound storage buffers: every lane reads the shared
// counters with atomics and touches only memory it owns for the pass.
//
// Redex pass: a lane owns the two agents of its redex and any agent it
// allocates. It never writes a neighbour. Each dying auxiliary port is
// overwritten with a redirect naming the port that now stands in for it,
// and every port whose edge may be stale is queued for the visit pass.
//
// Visit pass: a lane owns the port it was queued for. It follows
// redirects through dead agents until it reaches a live port and stores
// that as the new far end. Only dead agents are read through, and those
// are not written in this pass.

// redexLane processes Active[id].
func redexLane(buf *Buffers, id uint32) error {
	if id >= atomic.LoadUint32(&buf.State.ActivePairs) {
		return nil
	}
	defer atomic.AddUint32(&buf.State.ActivePairsDone, 1)

	slot := buf.Active[id]
	other, ok := redexPartner(buf, slot)
	if !ok {
		return nil
	}
	atomic.AddUint32(&buf.State.Rewrites, 1)

	a, b := &buf.Agents[slot], &buf.Agents[other]
	if a.Type == b.Type {
		return annihilateLane(buf, slot, other)
	}
	return commuteLane(buf, slot, other)
}

func redexPartner(buf *Buffers, slot net.Index) (net.Index, bool) {
	a := buf.Agents[slot]
	if !a.Type.Live() || !a.Ports[net.Principal].IsPrincipal() {
		return 0, false
	}
	other := a.Ports[net.Principal].Slot()
	if other == slot {
		return 0, false
	}
	b := buf.Agents[other]
	return other, b.Type.Live() && b.Ports[net.Principal] == net.MakePort(slot, net.Principal)
}

func annihilateLane(buf *Buffers, sa, sb net.Index) error {
	a, b := &buf.Agents[sa], &buf.Agents[sb]
	arity := a.Type.Arity()

	var x, y [maxArity]net.Port
	for i := 0; i < arity; i++ {
		x[i] = a.Ports[net.Aux(i)]
		y[i] = b.Ports[net.Aux(i)]
	}
	// An edge into a(i) continues to b's i-th neighbour, and vice versa.
	for i := 0; i < arity; i++ {
		a.Ports[net.Aux(i)] = y[i]
		b.Ports[net.Aux(i)] = x[i]
	}
	a.Type, b.Type = net.Free, net.Free

	for i := 0; i < arity; i++ {
		if err := emit(buf, Visit{Kind: VisitLink, Port: x[i]}); err != nil {
			return err
		}
		if err := emit(buf, Visit{Kind: VisitLink, Port: y[i]}); err != nil {
			return err
		}
	}
	return emitFree(buf, sa, sb)
}

func commuteLane(buf *Buffers, sa, sb net.Index) error {
	a, b := &buf.Agents[sa], &buf.Agents[sb]
	ta, tb := a.Type, b.Type
	na, nb := ta.Arity(), tb.Arity()

	var x, y [maxArity]net.Port
	for i := 0; i < na; i++ {
		x[i] = a.Ports[net.Aux(i)]
	}
	for j := 0; j < nb; j++ {
		y[j] = b.Ports[net.Aux(j)]
	}

	var ca, cb [maxArity]net.Index
	for j := 0; j < nb; j++ {
		s, err := allocLane(buf)
		if err != nil {
			return err
		}
		ca[j] = s
	}
	for i := 0; i < na; i++ {
		s, err := allocLane(buf)
		if err != nil {
			return err
		}
		cb[i] = s
	}

	for j := 0; j < nb; j++ {
		c := net.Agent{Type: ta}
		c.Ports[net.Principal] = y[j]
		for r := 1; r < len(c.Ports); r++ {
			c.Ports[r] = net.MakePort(ca[j], net.Role(r))
		}
		for i := 0; i < na; i++ {
			c.Ports[net.Aux(i)] = net.MakePort(cb[i], net.Aux(j))
		}
		buf.Agents[ca[j]] = c
	}
	for i := 0; i < na; i++ {
		c := net.Agent{Type: tb}
		c.Ports[net.Principal] = x[i]
		for r := 1; r < len(c.Ports); r++ {
			c.Ports[r] = net.MakePort(cb[i], net.Role(r))
		}
		for j := 0; j < nb; j++ {
			c.Ports[net.Aux(j)] = net.MakePort(ca[j], net.Aux(i))
		}
		buf.Agents[cb[i]] = c
	}

	// An edge into a(i) now ends at copy b'(i), and into b(j) at a'(j).
	for i := 0; i < na; i++ {
		a.Ports[net.Aux(i)] = net.MakePort(cb[i], net.Principal)
	}
	for j := 0; j < nb; j++ {
		b.Ports[net.Aux(j)] = net.MakePort(ca[j], net.Principal)
	}
	a.Type, b.Type = net.Free, net.Free

	for i := 0; i < na; i++ {
		if err := emit(buf, Visit{Kind: VisitLink, Port: x[i]}); err != nil {
			return err
		}
		if err := emit(buf, Visit{Kind: VisitLink, Port: net.MakePort(cb[i], net.Principal)}); err != nil {
			return err
		}
	}
	for j := 0; j < nb; j++ {
		if err := emit(buf, Visit{Kind: VisitLink, Port: y[j]}); err != nil {
			return err
		}
		if err := emit(buf, Visit{Kind: VisitLink, Port: net.MakePort(ca[j], net.Principal)}); err != nil {
			return err
		}
	}
	return emitFree(buf, sa, sb)
}

// allocLane pops the free list, or grows the arena past the high-water
// mark. The free list only shrinks during a redex pass.
func allocLane(buf *Buffers) (net.Index, error) {
	for {
		n := atomic.LoadUint32(&buf.State.FreedAgents)
		if n == 0 {
			break
		}
		if atomic.CompareAndSwapUint32(&buf.State.FreedAgents, n, n-1) {
			return buf.Freed[n-1], nil
		}
	}
	slot := atomic.AddUint32(&buf.State.Agents, 1) - 1
	if int(slot) >= len(buf.Agents) {
		return 0, &Error{Code: ErrCodeOutOfMemory, Err: fmt.Errorf("agent arena full at %d slots", len(buf.Agents))}
	}
	return net.Index(slot), nil
}

func emit(buf *Buffers, v Visit) error {
	idx := atomic.AddUint32(&buf.State.VisitsNeeded, 1) - 1
	if int(idx) >= len(buf.Visits) {
		return &Error{Code: ErrCodeOutOfMemory, Err: fmt.Errorf("visit list full at %d entries", len(buf.Visits))}
	}
	buf.Visits[idx] = v
	return nil
}

func emitFree(buf *Buffers, slots ...net.Index) error {
	for _, s := range slots {
		if err := emit(buf, Visit{Kind: VisitFree, Port: net.MakePort(s, net.Principal)}); err != nil {
			return err
		}
	}
	return nil
}

// visitLane processes Visits[id].
func visitLane(buf *Buffers, id uint32) error {
	if id >= atomic.LoadUint32(&buf.State.VisitsNeeded) {
		return nil
	}
	defer atomic.AddUint32(&buf.State.VisitsDone, 1)

	v := buf.Visits[id]
	switch v.Kind {
	case VisitFree:
		idx := atomic.AddUint32(&buf.State.FreedAgents, 1) - 1
		if int(idx) >= len(buf.Freed) {
			return &Error{Code: ErrCodeOutOfMemory, Err: fmt.Errorf("free list full at %d entries", len(buf.Freed))}
		}
		buf.Freed[idx] = v.Port.Slot()
		return nil
	case VisitLink:
		return linkLane(buf, v.Port)
	default:
		return &Error{Code: ErrCodeExec, Err: fmt.Errorf("unknown visit kind %d", v.Kind)}
	}
}

func linkLane(buf *Buffers, t net.Port) error {
	owner := &buf.Agents[t.Slot()]
	if owner.Type == net.Free {
		// The far side of a dead port is fixed from its other end.
		return nil
	}

	r := owner.Ports[t.Role()]
	for steps := 0; buf.Agents[r.Slot()].Type == net.Free; steps++ {
		if steps > len(buf.Agents) {
			return &Error{Code: ErrCodeExec, Err: fmt.Errorf("redirect cycle from %s", t)}
		}
		r = buf.Agents[r.Slot()].Ports[r.Role()]
	}
	owner.Ports[t.Role()] = r

	// Both ends of a new principal edge are queued; the lower slot records it.
	if t.IsPrincipal() && r.IsPrincipal() && t.Slot() < r.Slot() &&
		owner.Type.Live() && buf.Agents[r.Slot()].Type.Live() {
		idx := atomic.AddUint32(&buf.State.ActivePairs, 1) - 1
		if int(idx) >= len(buf.Active) {
			return &Error{Code: ErrCodeOutOfMemory, Err: fmt.Errorf("active list full at %d entries", len(buf.Active))}
		}
		buf.Active[idx] = t.Slot()
	}
	return nil
}
