// Package nodelink draws reasoning graphs as Graphviz node-link diagrams.
//
// # Overview
//
// Nodes appear as filled boxes, colored by whether they carry reasoning,
// connected by arrows from parent to child. The layout is hierarchical and
// top-down.
//
// # Usage
//
// Build a scene, convert it to DOT, then render:
//
//	scene := view.BuildScene(g, opts)
//	dot := nodelink.ToDOT(scene, opts)
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Engine
//
// [Engine] implements view.Engine. Open renders the scene to SVG, paints it
// on the surface and relays node clicks. Every node group in the SVG carries
// a data-node-id attribute holding the graph node id, so a client only needs
// to read that attribute to report a selection.
//
// Rendered SVG is cached by the hash of its DOT source when the engine has a
// cache.
package nodelink
