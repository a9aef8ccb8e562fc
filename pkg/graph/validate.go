package graph

import (
	"github.com/matzehuels/reasontree/pkg/errors"
)

// Validate checks that g has the shape [Convert] produces: node ids are
// unique, the first node is the root, every other node has exactly one
// incoming edge from a node listed before it, and there are N-1 edges.
// Violations are reported as INVALID_TREE.
func Validate(g *Graph) error {
	if g.Empty() {
		return errors.New(errors.ErrCodeInvalidTree, "graph has no nodes")
	}

	pos := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if prev, dup := pos[n.ID]; dup {
			return errors.New(errors.ErrCodeInvalidTree, "nodes[%d]: duplicate id %q (first at nodes[%d])", i, n.ID, prev)
		}
		pos[n.ID] = i
	}

	parent := make(map[string]string, len(g.Edges))
	for i, e := range g.Edges {
		from, ok := pos[e.From]
		if !ok {
			return errors.New(errors.ErrCodeInvalidTree, "edges[%d]: unknown node %q", i, e.From)
		}
		to, ok := pos[e.To]
		if !ok {
			return errors.New(errors.ErrCodeInvalidTree, "edges[%d]: unknown node %q", i, e.To)
		}
		if to == 0 {
			return errors.New(errors.ErrCodeInvalidTree, "edges[%d]: root %q has a parent", i, e.To)
		}
		if from >= to {
			return errors.New(errors.ErrCodeInvalidTree, "edges[%d]: %q -> %q is not in pre-order", i, e.From, e.To)
		}
		if p, ok := parent[e.To]; ok {
			return errors.New(errors.ErrCodeInvalidTree, "edges[%d]: node %q already has parent %q", i, e.To, p)
		}
		parent[e.To] = e.From
	}

	if want := len(g.Nodes) - 1; len(g.Edges) != want {
		return errors.New(errors.ErrCodeInvalidTree, "graph has %d edges, want %d for %d nodes", len(g.Edges), want, len(g.Nodes))
	}
	return nil
}
