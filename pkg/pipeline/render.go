package pipeline

import (
	"context"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/render"
	"github.com/matzehuels/reasontree/pkg/render/nodelink"
	"github.com/matzehuels/reasontree/pkg/view"
)

// RenderGraph renders g in each of formats without touching a cache. The
// SVG is produced at most once and shared by the svg, png and pdf outputs.
func RenderGraph(ctx context.Context, g *graph.Graph, formats []string, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	scene := view.BuildScene(g, opts.View)
	engine := &nodelink.Engine{Logger: opts.Logger}

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = engine.SVG(ctx, scene, opts.View)
		return svg, err
	}

	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(nodelink.ToDOT(scene, opts.View))
		case FormatJSON:
			data, err = graph.MarshalGraph(g)
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(data)
			}
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			if errors.GetCode(err) == "" {
				err = errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
			}
			return nil, err
		}
		out[format] = data
	}
	return out, nil
}
