// Package outline draws reasoning graphs as an indented text tree for
// terminals.
//
//	● Node 1 · root
//	├── ● Node 2 · child A
//	└── ● Node 3 · child B
//
// Rows come out in scene node order, which for converted graphs is the
// pre-order of the source tree, so row i always describes scene node i.
package outline
