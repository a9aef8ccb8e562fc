package view

import (
	"context"

	"github.com/matzehuels/reasontree/pkg/graph"
)

// Frame is one painted picture of a scene.
type Frame struct {
	// MediaType is the content type of Data, e.g. "image/svg+xml" or "text/plain".
	MediaType string
	Data      []byte
}

// Surface is the target an engine instance draws on.
type Surface interface {
	// Paint replaces whatever the surface currently shows.
	Paint(frame Frame) error

	// Clear empties the surface.
	Clear() error

	// Listen registers fn to receive the node ids the user selected on the
	// surface. The returned func detaches fn; it is safe to call more than once.
	Listen(fn func(ids []string)) (detach func())
}

// Engine lays out and draws scenes.
type Engine interface {
	// Open draws scene on surface and returns the live instance. If Open
	// fails it must leave nothing attached to the surface.
	Open(ctx context.Context, surface Surface, scene Scene, opts Options) (Instance, error)
}

// Instance is one live engine drawing. It must be destroyed exactly once.
type Instance interface {
	// OnSelect registers the handler for selection events. Only the most
	// recent handler is kept.
	OnSelect(fn func(ids []string)) error

	// Destroy releases the instance, detaches it from its surface and stops
	// all events. Calling Destroy again is a no-op.
	Destroy() error
}

// SelectFunc receives the detail payload of the selected node.
type SelectFunc func(detail graph.Detail)

// Scene is the engine-native form of a graph.
type Scene struct {
	Nodes []SceneNode
	Edges []SceneEdge
}

// SceneNode is a node as handed to an engine.
type SceneNode struct {
	ID      string
	Label   string
	Color   string
	Tag     graph.ColorTag
	Payload graph.Detail
}

// SceneEdge is an edge as handed to an engine.
type SceneEdge struct {
	From  string
	To    string
	Arrow string
	Color string
	Width int
}

// ArrowTo points edges at their child.
const ArrowTo = "to"

// BuildScene maps g onto engine collections one-to-one. Ids, labels and
// endpoints pass through unchanged; the color tag is resolved against
// opts.Colors.
func BuildScene(g *graph.Graph, opts Options) Scene {
	if g == nil {
		return Scene{}
	}
	s := Scene{
		Nodes: make([]SceneNode, len(g.Nodes)),
		Edges: make([]SceneEdge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		s.Nodes[i] = SceneNode{
			ID:      n.ID,
			Label:   n.Label,
			Color:   opts.Colors.For(n.ColorTag),
			Tag:     n.ColorTag,
			Payload: n.Detail,
		}
	}
	for i, e := range g.Edges {
		s.Edges[i] = SceneEdge{
			From:  e.From,
			To:    e.To,
			Arrow: ArrowTo,
			Color: opts.EdgeColor,
			Width: opts.EdgeWidth,
		}
	}
	return s
}
