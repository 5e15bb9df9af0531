// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological sorting
// and cycle detection. Descriptor validation uses it to check the whole
// section/field reference graph up front, before any environment is resolved.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing
	// topological ordering. Cycle follows the edges of one concrete cycle and
	// starts and ends with the same node.
	CycleError[N comparable] struct {
		Cycle []N
	}

	// Graph is a directed graph over comparable node keys. An edge from A to
	// B means A must be resolved before B.
	Graph[N comparable] struct {
		adjacency map[N][]N
		// nodes keeps insertion order for deterministic output.
		nodes   []N
		nodeSet map[N]bool
	}
)

func (e *CycleError[N]) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = fmt.Sprint(n)
	}
	return "cycle detected: " + strings.Join(parts, " -> ")
}

// New creates an empty Graph.
func New[N comparable]() *Graph[N] {
	return &Graph[N]{
		adjacency: make(map[N][]N),
		nodeSet:   make(map[N]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph[N]) AddNode(n N) {
	if g.nodeSet[n] {
		return
	}
	g.nodeSet[n] = true
	g.nodes = append(g.nodes, n)
}

// AddEdge adds a directed edge from -> to. Both nodes are added if missing.
func (g *Graph[N]) AddEdge(from, to N) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int { return len(g.nodes) }

// TopologicalSort returns a valid resolution order using Kahn's algorithm.
// Nodes at the same level keep their insertion order. A graph with a cycle
// yields a *CycleError naming the first cycle found among the unsorted nodes.
func (g *Graph[N]) TopologicalSort() ([]N, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[N]int, len(g.nodes))
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	var queue []N
	for _, n := range g.nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	result := make([]N, 0, len(g.nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		result = append(result, n)

		for _, neighbor := range g.adjacency[n] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, &CycleError[N]{Cycle: g.findCycle(inDegree)}
	}
	return result, nil
}

// findCycle walks the nodes Kahn's algorithm could not place and returns
// the first closed path it meets.
func (g *Graph[N]) findCycle(inDegree map[N]int) []N {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[N]int)
	var stack []N

	var visit func(n N) []N
	visit = func(n N) []N {
		state[n] = onStack
		stack = append(stack, n)
		for _, next := range g.adjacency[n] {
			if inDegree[next] == 0 {
				continue
			}
			switch state[next] {
			case onStack:
				start := slices.Index(stack, next)
				return append(slices.Clone(stack[start:]), next)
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for _, n := range g.nodes {
		if inDegree[n] > 0 && state[n] == unvisited {
			if cycle := visit(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
