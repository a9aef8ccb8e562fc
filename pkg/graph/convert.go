package graph

import (
	"strings"

	"github.com/matzehuels/reasontree/pkg/tree"
)

const (
	// MaxBriefLength is the number of brief characters kept in a label.
	MaxBriefLength = 40

	// NoBrief replaces a missing or empty brief.
	NoBrief = "(no brief)"

	ellipsis = "..."
)

// Convert flattens the tree rooted at root. Nodes come out in pre-order and
// edges in the order their child nodes were visited. A nil root yields an
// empty graph.
//
// The input must be a tree; a cycle recurses without bound.
func Convert(root *tree.Node) *Graph {
	if root == nil {
		return &Graph{Nodes: []Node{}, Edges: []Edge{}}
	}
	nodes, edges := convert(root)
	if edges == nil {
		edges = []Edge{}
	}
	return &Graph{Nodes: nodes, Edges: edges}
}

// convert returns the subgraph of the subtree at n. Every call builds its own
// slices; callers concatenate the results.
func convert(n *tree.Node) ([]Node, []Edge) {
	self := NewNode(n)
	nodes := []Node{self}
	var edges []Edge

	for _, c := range n.Children {
		childNodes, childEdges := convert(c)
		edges = append(edges, Edge{From: self.ID, To: childNodes[0].ID})
		nodes = append(nodes, childNodes...)
		edges = append(edges, childEdges...)
	}
	return nodes, edges
}

// NewNode builds the graph node for a single tree node, ignoring children.
func NewNode(n *tree.Node) Node {
	id := n.ID.String()
	brief := briefOf(n)
	has := n.HasReasoning()

	tag := TagPlain
	var reasoning *string
	if has {
		tag = TagReasoning
		r := *n.Reasoning
		reasoning = &r
	}

	return Node{
		ID:       id,
		Label:    Label(id, brief),
		ColorTag: tag,
		Detail: Detail{
			NodeID:       n.ID,
			Brief:        brief,
			Reasoning:    reasoning,
			HasReasoning: has,
		},
	}
}

// Label formats the display label for a node.
func Label(id, brief string) string {
	return "Node " + id + "\n" + Truncate(brief)
}

// Truncate keeps the first MaxBriefLength characters of s and appends "..."
// only when something was cut.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxBriefLength {
		return s
	}
	return string(r[:MaxBriefLength]) + ellipsis
}

func briefOf(n *tree.Node) string {
	if n.Brief == nil || *n.Brief == "" {
		return NoBrief
	}
	return *n.Brief
}

// LabelLines splits a label into its display lines.
func LabelLines(label string) []string {
	return strings.Split(label, "\n")
}
