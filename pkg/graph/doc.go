// Package graph flattens reasoning trees into node/edge graphs.
//
// A [Graph] is the renderer-ready form of a [tree.Node]: an ordered list of
// [Node] values and an ordered list of directed [Edge] values. It is what the
// view hands to a rendering engine and what the CLI exports as JSON.
//
// # Conversion
//
// [Convert] walks the tree depth-first in pre-order (root, then every child
// subtree in array order) and emits one node per tree node and one
// parent→child edge per non-root node:
//
//	root, _ := tree.Parse(data)
//	g := graph.Convert(root)
//	// len(g.Nodes) == tree.Count(root)
//	// len(g.Edges) == tree.Count(root) - 1
//
// Conversion never fails; all validation happens in [tree.Parse].
//
// # Labels
//
// Node labels read "Node <id>" followed by the first 40 characters of the
// brief on a second line, with "..." appended only when the brief was
// actually truncated. A missing or empty brief is shown as "(no brief)".
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [{"id": "1", "label": "Node 1\nroot", "color_tag": "no-reasoning", "detail": {...}}],
//	  "edges": [{"from": "1", "to": "2"}]
//	}
package graph
