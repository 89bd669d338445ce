package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityApplied builds (\x. x) (\y. y):
//
//	slot 1: application, slot 2: applied lambda, slot 3: argument lambda
func identityApplied(t *testing.T) *Net {
	t.Helper()
	b := NewBuilder()

	appP, appL, appR := b.Add(Delta)
	fP, fL, fR := b.Add(Delta)
	b.Connect(fL, fR)
	xP, xL, xR := b.Add(Delta)
	b.Connect(xL, xR)

	b.Connect(appP, fP)
	b.Connect(appL, xP)

	n, err := b.Build(appR)
	require.NoError(t, err)
	return n
}

func TestPortPacking(t *testing.T) {
	p := MakePort(7, Right)

	assert.Equal(t, Index(7), p.Slot())
	assert.Equal(t, Right, p.Role())
	assert.False(t, p.IsPrincipal())
	assert.True(t, MakePort(7, Principal).IsPrincipal())
	assert.Equal(t, "7.r", p.String())
	assert.Equal(t, "root", RootPort.String())
}

func TestAgentArity(t *testing.T) {
	assert.Equal(t, 2, Delta.Arity())
	assert.Equal(t, 2, Zeta.Arity())
	assert.Equal(t, 0, Eraser.Arity())
	assert.Equal(t, 0, Root.Arity())
	assert.False(t, Root.Live())
	assert.False(t, Free.Live())
	assert.True(t, Eraser.Live())
}

func TestAddLeavesPortsUnconnected(t *testing.T) {
	n := New()
	p, l, r := n.Add(Zeta)

	assert.Equal(t, p, n.Follow(p))
	assert.Equal(t, l, n.Follow(l))
	assert.Equal(t, r, n.Follow(r))
	assert.Equal(t, Index(1), p.Slot())
}

func TestConnectRecordsRedexOnlyForLivePrincipals(t *testing.T) {
	n := New()
	aP, aL, _ := n.Add(Delta)
	bP, _, _ := n.Add(Zeta)

	n.Connect(aL, bP)
	assert.Empty(t, n.Active, "aux to principal is not a redex")

	n.Connect(RootPort, aP)
	assert.Empty(t, n.Active, "root never forms a redex")

	n.Connect(aP, bP)
	assert.Equal(t, []Index{aP.Slot()}, n.Active)
	assert.Equal(t, bP, n.Follow(aP))
	assert.Equal(t, aP, n.Follow(bP))
}

func TestBuildCompactsActive(t *testing.T) {
	b := NewBuilder()
	aP, _, aR := b.Add(Delta)
	bP, _, _ := b.Add(Delta)
	b.Connect(aP, bP)
	b.Connect(bP, aP)

	n, err := b.Build(aR)
	require.NoError(t, err)

	assert.Equal(t, []Index{aP.Slot()}, n.Active)
	assert.Equal(t, aR, n.Follow(RootPort))
}

func TestBuildDropsStaleRedexes(t *testing.T) {
	b := NewBuilder()
	aP, _, aR := b.Add(Delta)
	bP, bL, _ := b.Add(Delta)
	b.Connect(aP, bP)
	// Rewire both principals away from each other.
	b.Connect(aP, bL)
	cP, _, _ := b.Add(Eraser)
	b.Connect(bP, cP)

	n, err := b.Build(aR)
	require.NoError(t, err)

	assert.Equal(t, []Index{bP.Slot()}, n.Active)
}

func TestIdentityRoundTrip(t *testing.T) {
	n := identityApplied(t)

	rewrites := n.Reduce()

	assert.Equal(t, 1, rewrites)
	entry := n.Follow(RootPort)
	assert.Equal(t, Index(3), entry.Slot())
	assert.True(t, entry.IsPrincipal())
	assert.Equal(t, MakePort(3, Right), n.Follow(MakePort(3, Left)))
	assert.Empty(t, n.Active)
}

func TestAnnihilationFreesExactlyTwo(t *testing.T) {
	n := identityApplied(t)
	before := n.Live()

	require.True(t, n.Interact(n.Active[0]))

	assert.Equal(t, before-2, n.Live())
	assert.Len(t, n.Freed, 2)
}

func TestFreeListReuse(t *testing.T) {
	n := identityApplied(t)
	n.Reduce()
	slots := len(n.Agents)
	freed := append([]Index(nil), n.Freed...)

	p, _, _ := n.Add(Zeta)

	assert.Len(t, n.Agents, slots, "arena must not grow while slots are free")
	assert.Contains(t, freed, p.Slot())
	assert.Equal(t, freed[len(freed)-1], p.Slot(), "most recently freed slot is reused first")
	assert.Equal(t, Zeta, n.Agents[p.Slot()].Type)
}

func TestInteractIgnoresNonRedex(t *testing.T) {
	n := New()
	p, _, _ := n.Add(Delta)

	assert.False(t, n.Interact(p.Slot()))
	assert.False(t, n.Interact(0))
	assert.False(t, n.Interact(99))
	assert.Equal(t, 1, n.Live())
}

func TestAnnihilationThroughInternalEdge(t *testing.T) {
	// a.l -- b.r inside the redex; a.r and b.l lead outside.
	n := New()
	aP, aL, aR := n.Add(Delta)
	bP, bL, bR := n.Add(Delta)
	x, _, _ := n.Add(Eraser)
	y, _, _ := n.Add(Eraser)
	n.Connect(aL, bR)
	n.Connect(aR, x)
	n.Connect(bL, y)
	n.Connect(aP, bP)

	require.True(t, n.Interact(aP.Slot()))

	assert.Equal(t, y, n.Follow(x))
	assert.Equal(t, x, n.Follow(y))
	assert.Equal(t, 2, n.Live())
}

func TestCommutationPreservesExternalEdges(t *testing.T) {
	n := New()
	dP, dL, dR := n.Add(Delta)
	zP, zL, zR := n.Add(Zeta)
	stubs := make([]Port, 4)
	for i := range stubs {
		stubs[i], _, _ = n.Add(Eraser)
	}
	n.Connect(dL, stubs[0])
	n.Connect(dR, stubs[1])
	n.Connect(zL, stubs[2])
	n.Connect(zR, stubs[3])
	n.Connect(dP, zP)
	n.Active = n.Active[:0]

	require.True(t, n.Interact(dP.Slot()))

	assert.Equal(t, 8, n.Live(), "two agents replaced by four copies")
	for _, s := range stubs {
		far := n.Follow(s)
		require.True(t, far.IsPrincipal())
		assert.Equal(t, s, n.Follow(far), "edge must be symmetric")
		assert.NotEqual(t, Eraser, n.Agents[far.Slot()].Type)
	}
	assert.Equal(t, Zeta, n.Agents[n.Follow(stubs[0]).Slot()].Type)
	assert.Equal(t, Zeta, n.Agents[n.Follow(stubs[1]).Slot()].Type)
	assert.Equal(t, Delta, n.Agents[n.Follow(stubs[2]).Slot()].Type)
	assert.Equal(t, Delta, n.Agents[n.Follow(stubs[3]).Slot()].Type)
	assert.Len(t, n.Active, 4)
}

func TestEraserErasesEverything(t *testing.T) {
	n := New()
	dP, dL, dR := n.Add(Delta)
	zP, zL, zR := n.Add(Zeta)
	for _, aux := range []Port{dL, dR, zL, zR} {
		e, _, _ := n.Add(Eraser)
		n.Connect(aux, e)
	}
	n.Connect(dP, zP)

	rewrites := n.Reduce()

	// one commutation, four copies erased, four eraser pairs annihilated
	assert.Equal(t, 9, rewrites)
	assert.Equal(t, 0, n.Live())
}

func TestFanDuplicatesIdentity(t *testing.T) {
	n := New()
	_, cL, cR := n.Add(Delta)
	dP, dL, dR := n.Add(Delta)
	n.Connect(dL, dR)
	zP, zL, zR := n.Add(Zeta)
	n.Connect(zL, cL)
	n.Connect(zR, cR)
	n.Connect(dP, zP)

	rewrites := n.Reduce()

	assert.Equal(t, 2, rewrites)
	assert.Equal(t, 3, n.Live())
	for _, aux := range []Port{cL, cR} {
		copyP := n.Follow(aux)
		require.True(t, copyP.IsPrincipal())
		slot := copyP.Slot()
		assert.Equal(t, Delta, n.Agents[slot].Type)
		assert.Equal(t, MakePort(slot, Right), n.Follow(MakePort(slot, Left)), "copy must be an identity")
	}
}

func TestReduceBounded(t *testing.T) {
	n := New()
	dP, dL, dR := n.Add(Delta)
	zP, zL, zR := n.Add(Zeta)
	for _, aux := range []Port{dL, dR, zL, zR} {
		e, _, _ := n.Add(Eraser)
		n.Connect(aux, e)
	}
	n.Connect(dP, zP)

	rewrites, err := n.ReduceBounded(1)

	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))
	assert.Equal(t, 1, rewrites)
	assert.NotEmpty(t, n.Active)

	assert.Equal(t, 8, n.Reduce())
	assert.Equal(t, 0, n.Live())
}

func TestReduceBoundedStopsWhenArenaIsFull(t *testing.T) {
	n := New()
	dP, dL, dR := n.Add(Delta)
	zP, zL, zR := n.Add(Zeta)
	for _, aux := range []Port{dL, dR, zL, zR} {
		e, _, _ := n.Add(Eraser)
		n.Connect(aux, e)
	}
	n.Connect(dP, zP)
	n.maxSlots = len(n.Agents)

	rewrites, err := n.ReduceBounded(0)

	require.Error(t, err)
	assert.True(t, IsArenaExhaustedError(err))
	assert.False(t, IsStepsExceededError(err))
	assert.Equal(t, 0, rewrites)
	assert.NotEmpty(t, n.Active)
	assert.Equal(t, 0, n.Reduce(), "Reduce stops instead of panicking")

	n.maxSlots = 0
	assert.Equal(t, 9, n.Reduce())
	assert.Equal(t, 0, n.Live())
}

func TestAnnihilationNeedsNoRoom(t *testing.T) {
	n := identityApplied(t)
	n.maxSlots = len(n.Agents)

	rewrites, err := n.ReduceBounded(0)

	require.NoError(t, err)
	assert.Equal(t, 1, rewrites)
}

func TestReduceBoundedCompletesUnderLimit(t *testing.T) {
	n := identityApplied(t)

	rewrites, err := n.ReduceBounded(10)

	require.NoError(t, err)
	assert.Equal(t, 1, rewrites)
}

func TestCanonicalIgnoresArenaLayout(t *testing.T) {
	a := identityApplied(t)
	a.Reduce()

	b := New()
	p, l, r := b.Add(Delta)
	b.Connect(l, r)
	b.Connect(RootPort, p)

	assert.True(t, Equivalent(a, b))
	assert.Equal(t, "0 root p=1.p\n1 delta p=0.p l=1.r r=1.l\n", Canonical(b))
}

func TestCanonicalDistinguishesShape(t *testing.T) {
	a := New()
	p, l, r := a.Add(Delta)
	a.Connect(l, r)
	a.Connect(RootPort, p)

	b := New()
	q, _, _ := b.Add(Delta)
	b.Connect(RootPort, q)

	assert.False(t, Equivalent(a, b))
}

func TestStats(t *testing.T) {
	n := identityApplied(t)

	s := n.Stats()

	assert.Equal(t, Stats{Slots: 4, Live: 3, Deltas: 3, Active: 1}, s)
}

func TestClone(t *testing.T) {
	n := identityApplied(t)
	c := n.Clone()

	c.Reduce()

	assert.Equal(t, 3, n.Live())
	assert.Equal(t, 1, c.Live())
}
