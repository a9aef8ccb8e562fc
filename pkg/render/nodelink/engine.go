package nodelink

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reasontree/pkg/cache"
	"github.com/matzehuels/reasontree/pkg/observability"
	"github.com/matzehuels/reasontree/pkg/view"
)

// MediaTypeSVG is the media type of frames painted by [Engine].
const MediaTypeSVG = "image/svg+xml"

// Engine renders scenes through Graphviz. The zero value renders without a
// cache and discards logs.
type Engine struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewEngine creates an engine that caches rendered SVG in c.
func NewEngine(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Engine {
	return &Engine{Cache: c, Keyer: keyer, Logger: logger}
}

// Open implements view.Engine.
func (e *Engine) Open(ctx context.Context, surface view.Surface, scene view.Scene, opts view.Options) (view.Instance, error) {
	svg, err := e.SVG(ctx, scene, opts)
	if err != nil {
		return nil, err
	}

	inst := newInstance(surface, scene)
	inst.detach = surface.Listen(inst.dispatch)
	if err := surface.Paint(view.Frame{MediaType: MediaTypeSVG, Data: svg}); err != nil {
		inst.detach()
		return nil, err
	}
	return inst, nil
}

// SVG returns the annotated SVG for scene, from the cache when possible.
func (e *Engine) SVG(ctx context.Context, scene view.Scene, opts view.Options) ([]byte, error) {
	dot := ToDOT(scene, opts)
	logger := e.logger()

	var key string
	if e.Cache != nil {
		keyer := e.Keyer
		if keyer == nil {
			keyer = cache.NewDefaultKeyer()
		}
		key = keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: "svg"})
		if data, ok, err := e.Cache.Get(ctx, key); err != nil {
			logger.Warn("svg cache read", "err", err)
		} else if ok {
			observability.Cache().OnCacheHit(ctx, "svg")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "svg")
	}

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	svg = Annotate(svg, scene)

	if e.Cache != nil {
		if err := e.Cache.Set(ctx, key, svg, cache.ArtifactTTL); err != nil {
			logger.Warn("svg cache write", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "svg", len(svg))
		}
	}
	logger.Debug("rendered svg", "nodes", len(scene.Nodes), "bytes", len(svg))
	return svg, nil
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

var _ view.Engine = (*Engine)(nil)

var errDestroyed = errors.New("nodelink: instance destroyed")

// instance relays surface clicks on its own nodes until destroyed.
type instance struct {
	surface view.Surface
	known   map[string]struct{}
	detach  func()

	mu        sync.Mutex
	handler   func(ids []string)
	destroyed bool
}

func newInstance(surface view.Surface, scene view.Scene) *instance {
	known := make(map[string]struct{}, len(scene.Nodes))
	for _, n := range scene.Nodes {
		known[n.ID] = struct{}{}
	}
	return &instance{surface: surface, known: known}
}

// OnSelect implements view.Instance.
func (i *instance) OnSelect(fn func(ids []string)) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return errDestroyed
	}
	i.handler = fn
	return nil
}

// Destroy implements view.Instance. It detaches from the surface and clears
// it.
func (i *instance) Destroy() error {
	i.mu.Lock()
	if i.destroyed {
		i.mu.Unlock()
		return nil
	}
	i.destroyed = true
	i.handler = nil
	i.mu.Unlock()

	i.detach()
	return i.surface.Clear()
}

// dispatch forwards click events on this drawing. Clicks on the background
// arrive as an empty list. An event naming any node the drawing does not
// contain is dropped whole, so it cannot shrink into a single selection.
func (i *instance) dispatch(ids []string) {
	for _, id := range ids {
		if _, ok := i.known[id]; !ok {
			return
		}
	}

	i.mu.Lock()
	fn := i.handler
	i.mu.Unlock()
	if fn != nil {
		fn(append([]string(nil), ids...))
	}
}
