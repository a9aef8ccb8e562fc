// Package pkg holds the reasontree libraries.
//
// A reasoning tree is a JSON document of nodes with an id, an optional brief
// and optional reasoning, and nested children. The libraries turn such a
// document into an interactive graph:
//
//	tree JSON
//	    ↓
//	[tree] parse and validate
//	    ↓
//	[graph] flatten into labeled nodes and parent-child edges
//	    ↓
//	[view] mount on an engine ([render/nodelink] SVG or [render/outline] text)
//	    ↓
//	selection events → detail payload → [session] panel state
//
// [pipeline] renders graphs to files with caching through [cache];
// [reasoning] grows trees from action streams; [config], [errors] and
// [observability] are shared by the commands in internal/.
package pkg
