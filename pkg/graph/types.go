package graph

import (
	"github.com/matzehuels/reasontree/pkg/tree"
)

// ColorTag classifies a node for coloring. The concrete colors are chosen by
// the caller's view configuration.
type ColorTag string

// Color tags.
const (
	TagReasoning ColorTag = "reasoning"
	TagPlain     ColorTag = "no-reasoning"
)

// Graph is the flat form of a reasoning tree. It is never mutated after
// [Convert] returns it; a new load produces a new Graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one renderable node.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	ColorTag ColorTag `json:"color_tag"`
	Detail   Detail   `json:"detail"`
}

// Detail is the payload shown when a node is selected.
type Detail struct {
	NodeID       tree.ID `json:"node_id"`
	Brief        string  `json:"brief"`
	Reasoning    *string `json:"reasoning"`
	HasReasoning bool    `json:"has_reasoning"`
}

// Edge is a directed parent→child relationship.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool {
	return g == nil || len(g.Nodes) == 0
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Edges)
}

// Lookup returns the node whose ID equals id exactly.
func (g *Graph) Lookup(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
