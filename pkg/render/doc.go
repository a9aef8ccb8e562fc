// Package render converts rendered SVG into other output formats.
//
// The [ToPDF] and [ToPNG] functions shell out to rsvg-convert (from librsvg).
// They are used by the node-link engine and by the render pipeline:
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// Drawing engines live in subpackages:
//   - [nodelink]: Graphviz node-link diagrams for the browser canvas and exports
//   - [outline]: an indented text tree for terminals
//
// [nodelink]: github.com/matzehuels/reasontree/pkg/render/nodelink
// [outline]: github.com/matzehuels/reasontree/pkg/render/outline
package render
