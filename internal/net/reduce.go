package net

import (
	"errors"
	"fmt"
)

// Reduce rewrites redexes in queue order until none remain and returns the
// number of rewrites. A net with no normal form makes Reduce run forever;
// use ReduceBounded when that matters. If the arena has no room for the
// next rewrite, Reduce stops and leaves the remaining redexes in Active.
func (n *Net) Reduce() int {
	rewrites, _ := n.reduce(0)
	return rewrites
}

// ReduceBounded is Reduce with a rewrite limit. When maxRewrites rewrites
// have been applied and a redex remains, it stops with a
// *StepsExceededError, leaving the remaining work in Active. A limit of
// zero or less means no limit. Running out of arena slots stops it with
// an *ArenaExhaustedError, again leaving the remaining work in Active.
func (n *Net) ReduceBounded(maxRewrites int) (int, error) {
	return n.reduce(maxRewrites)
}

func (n *Net) reduce(maxRewrites int) (int, error) {
	rewrites := 0
	head := 0
	for head < len(n.Active) {
		slot := n.Active[head]
		if maxRewrites > 0 && rewrites >= maxRewrites {
			if _, ok := n.Redex(slot); ok {
				n.Active = append(n.Active[:0], n.Active[head:]...)
				return rewrites, &StepsExceededError{Rewrites: rewrites, Limit: maxRewrites}
			}
		}
		if n.room() < maxRewriteAgents {
			if other, ok := n.Redex(slot); ok && n.room() < n.rewriteAgents(slot, other) {
				n.Active = append(n.Active[:0], n.Active[head:]...)
				return rewrites, &ArenaExhaustedError{Rewrites: rewrites, Slots: n.capacity()}
			}
		}
		head++
		if n.Interact(slot) {
			rewrites++
		}
	}
	n.Active = n.Active[:0]
	return rewrites, nil
}

// maxRewriteAgents is the most agents one rewrite allocates: commuting two
// binary agents makes two copies of each.
const maxRewriteAgents = 4

// rewriteAgents is the number of agents the rewrite of a and b allocates.
func (n *Net) rewriteAgents(a, b Index) int {
	ta, tb := n.Agents[a].Type, n.Agents[b].Type
	if ta == tb {
		return 0
	}
	return ta.Arity() + tb.Arity()
}

// ArenaExhaustedError is returned when a rewrite would need more agents
// than the arena can hold.
type ArenaExhaustedError struct {
	Rewrites int
	Slots    int
}

func (e *ArenaExhaustedError) Error() string {
	return fmt.Sprintf("reduction ran out of agent slots after %d rewrites, arena holds %d", e.Rewrites, e.Slots)
}

// IsArenaExhaustedError returns true if err wraps an ArenaExhaustedError.
func IsArenaExhaustedError(err error) bool {
	var ae *ArenaExhaustedError
	return errors.As(err, &ae)
}

// StepsExceededError is returned when reduction hits its rewrite limit.
type StepsExceededError struct {
	Rewrites int
	Limit    int
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("reduction exceeded max rewrites: %d rewrites, limit %d", e.Rewrites, e.Limit)
}

// IsStepsExceededError returns true if err wraps a StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
