package formctl

import (
	"fmt"
	"sort"
	"strings"
)

// depGraph records which calculated fields read which other fields. An edge
// from a to b means b's formula reads a.
type depGraph struct {
	nodes map[string]*depNode
}

type depNode struct {
	id         string
	dependents map[string]*depNode
}

func newDepGraph() *depGraph {
	return &depGraph{nodes: make(map[string]*depNode)}
}

func (g *depGraph) addNode(id string) *depNode {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &depNode{id: id, dependents: make(map[string]*depNode)}
	g.nodes[id] = n
	return n
}

// addEdge records that to reads from. Both nodes are created on demand.
func (g *depGraph) addEdge(from, to string) {
	f := g.addNode(from)
	t := g.addNode(to)
	f.dependents[to] = t
}

// findCycle returns the first cycle found, walking nodes in name order, as
// the list of fields on it with the first field repeated at the end.
func (g *depGraph) findCycle() []string {
	permanent := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(n *depNode) []string
	visit = func(n *depNode) []string {
		if permanent[n.id] {
			return nil
		}
		if onStack[n.id] {
			for i, id := range stack {
				if id == n.id {
					return append(append([]string(nil), stack[i:]...), n.id)
				}
			}
		}
		onStack[n.id] = true
		stack = append(stack, n.id)

		for _, id := range sortedIDs(n.dependents) {
			if cycle := visit(n.dependents[id]); cycle != nil {
				return cycle
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range sortedIDs(g.nodes) {
		if cycle := visit(g.nodes[id]); cycle != nil {
			return cycle
		}
	}
	return nil
}

// detectCycles wraps findCycle into an ErrCycle error.
func (g *depGraph) detectCycles() error {
	if cycle := g.findCycle(); cycle != nil {
		return fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
	}
	return nil
}

func sortedIDs(m map[string]*depNode) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
