package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/strata/internal/term"
)

// CycleWarning reports definitions that reach themselves through their
// references. Such a definition has no finite net: compiling any term that
// uses it fails with RECURSIVE_REFERENCE.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["even", "odd", "even"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeCycles finds the recursive definitions of defs without compiling
// anything.
//
// The algorithm:
//  1. Build the definition → referenced definition graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1, or with a self-loop, as a cycle
//
// Warnings are ordered by the smallest name in each cycle. A program with no
// recursion returns an empty list.
func AnalyzeCycles(defs term.MapDefinitions) []CycleWarning {
	graph := buildDependencyGraph(defs)

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return warnings
}

// dependencyGraph maps a definition to the definitions its body refers to.
// References to undefined names are left out.
type dependencyGraph map[string][]string

func buildDependencyGraph(defs term.MapDefinitions) dependencyGraph {
	graph := make(dependencyGraph, len(defs))
	for name, body := range defs {
		edges := []string{}
		for _, ref := range term.References(body) {
			if _, ok := defs[ref]; ok {
				edges = append(edges, ref)
			}
		}
		graph[name] = edges
	}
	return graph
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in name order so the result is deterministic, and each
// SCC is sorted.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of an SCC: pop it.
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("definition refers to itself: %s → %s", name, name),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("recursive definitions: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath walks from the first SCC member along edges inside
// the SCC until it returns to the start.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
