// Package reasoning grows reasoning trees one action at a time.
//
// A [Manager] owns a tree rooted at node 0 and a cursor, the "current" node.
// Continuing appends a child under the cursor and moves the cursor onto it;
// moving jumps the cursor to any existing node. Node ids count up from 1 in
// creation order.
//
// [Manager.Compressed] returns the view of the tree a reasoner works from:
// every node keeps its brief, but only nodes on the path from the root to the
// cursor keep their reasoning text.
//
// [Replayer] drives a manager from a newline-delimited JSON stream of
// actions, writing a [Journal] entry per action and a snapshot of the
// compressed tree before each step:
//
//	{"action": "continue", "brief": "try induction", "reasoning": "..."}
//	{"action": "move", "node_id": 0}
//	{"action": "finish"}
//
// Snapshots are ordinary tree documents and can be opened with the viewer.
package reasoning
