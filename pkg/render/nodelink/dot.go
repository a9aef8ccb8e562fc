package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reasontree/pkg/render"
	"github.com/matzehuels/reasontree/pkg/view"
)

// pointsPerInch converts pixel-like option values into Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a scene to Graphviz DOT source. Node i is given the SVG id
// "n<i>" so [RenderSVG] output can be annotated with [Annotate].
func ToDOT(scene view.Scene, opts view.Options) string {
	opts.SetDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.LevelSeparation))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSpacing))
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", penwidth=2, fontname=\"Helvetica\", fontsize=%d, fontcolor=%s, margin=\"0.2,0.1\"];\n",
		opts.FontSize, dotQuote(opts.FontColor))
	buf.WriteString("\n")

	for i, n := range scene.Nodes {
		color := dotQuote(n.Color)
		fmt.Fprintf(&buf, "  %s [id=%s, label=%s, fillcolor=%s, color=%s];\n",
			dotQuote(n.ID), dotQuote(nodeSVGID(i)), dotQuote(n.Label), color, color)
	}

	buf.WriteString("\n")
	for _, e := range scene.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", dotQuote(e.From), dotQuote(e.To), strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(e view.SceneEdge) []string {
	attrs := []string{
		"color=" + dotQuote(e.Color),
		fmt.Sprintf("penwidth=%d", e.Width),
	}
	if e.Arrow == view.ArrowTo {
		attrs = append(attrs, "arrowhead=normal")
	} else {
		attrs = append(attrs, "arrowhead=none")
	}
	return attrs
}

// dotQuote renders s as a DOT double-quoted string. Quotes and backslashes are
// escaped, newlines become the centered line break \n, tabs become spaces and
// other control characters are dropped.
func dotQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func inches(px int) string {
	return strconv.FormatFloat(float64(px)/pointsPerInch, 'f', 2, 64)
}

func nodeSVGID(i int) string {
	return "n" + strconv.Itoa(i)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe    = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe   = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
	nodeGroupRe = regexp.MustCompile(`<g id="n([0-9]+)" class="node">`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Annotate adds data-node-id attributes to the node groups of an SVG
// rendered from [ToDOT] output for scene.
func Annotate(svg []byte, scene view.Scene) []byte {
	return nodeGroupRe.ReplaceAllFunc(svg, func(m []byte) []byte {
		sub := nodeGroupRe.FindSubmatch(m)
		i, err := strconv.Atoi(string(sub[1]))
		if err != nil || i >= len(scene.Nodes) {
			return m
		}
		return fmt.Appendf(nil, `<g id="n%d" class="node" data-node-id="%s">`,
			i, html.EscapeString(scene.Nodes[i].ID))
	})
}

// RenderPDF renders DOT source as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
