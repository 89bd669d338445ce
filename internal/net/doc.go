// Package net implements interaction nets: an arena of fixed-arity agents
// wired port to port, the two rewrite laws, and a sequential reducer.
//
// Every agent has one principal port and up to two auxiliary ports. Two
// agents whose principal ports face each other form a redex. Redexes of
// agents with equal tags annihilate; redexes of agents with different tags
// commute. Both laws are local, so the order in which redexes are reduced
// does not change the result or the number of rewrites.
//
// Slot 0 of every net holds the Root agent. Its principal port is the
// net's single interface: Build connects the compiled entry port to it.
package net
