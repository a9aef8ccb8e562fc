package view

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/observability"
)

// State is the lifecycle state of a View.
type State int

// View states.
const (
	StateIdle State = iota
	StateRendering
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// View binds one surface to at most one live engine instance.
// All methods are safe for concurrent use.
type View struct {
	engine  Engine
	surface Surface
	logger  *log.Logger

	mu       sync.Mutex
	lease    *lease
	graph    *graph.Graph
	onSelect SelectFunc
}

// New creates an idle view drawing on surface with engine.
// A nil logger discards output.
func New(engine Engine, surface Surface, logger *log.Logger) *View {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &View{
		engine:  engine,
		surface: surface,
		logger:  logger,
	}
}

// Render shows g on the surface. Any live instance is torn down first, so
// every call is treated as a change of graph, options or callback. An empty
// (or nil) graph leaves the view idle with a cleared surface.
func (v *View) Render(ctx context.Context, g *graph.Graph, opts Options, onSelect SelectFunc) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.teardownLocked(ctx)

	if g.Empty() {
		return v.surface.Clear()
	}

	opts.SetDefaults()
	scene := BuildScene(g, opts)

	inst, err := v.engine.Open(ctx, v.surface, scene, opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "open engine")
	}

	l := &lease{inst: inst}
	if err := inst.OnSelect(func(ids []string) { v.handleSelect(l, ids) }); err != nil {
		if rerr := l.release(); rerr != nil {
			v.logger.Warn("destroy engine instance", "err", rerr)
		}
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "subscribe to selection")
	}

	v.lease = l
	v.graph = g
	v.onSelect = onSelect

	v.logger.Debug("engine instance opened", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	observability.View().OnRender(ctx, g.NodeCount(), g.EdgeCount())
	return nil
}

// Close unmounts the view: the live instance, if any, is destroyed and the
// surface cleared.
func (v *View) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.teardownLocked(context.Background())
	return v.surface.Clear()
}

// State returns the current lifecycle state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.lease != nil {
		return StateRendering
	}
	return StateIdle
}

// Graph returns the graph currently rendered, or nil when idle.
func (v *View) Graph() *graph.Graph {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graph
}

func (v *View) teardownLocked(ctx context.Context) {
	if v.lease == nil {
		return
	}
	if err := v.lease.release(); err != nil {
		v.logger.Warn("destroy engine instance", "err", err)
	}
	v.lease = nil
	v.graph = nil
	v.onSelect = nil

	v.logger.Debug("engine instance destroyed")
	observability.View().OnTeardown(ctx)
}

// handleSelect resolves a selection from the instance held by l. Events from
// a lease that is no longer current are dropped.
func (v *View) handleSelect(l *lease, ids []string) {
	if len(ids) != 1 {
		return
	}

	v.mu.Lock()
	if v.lease != l {
		v.mu.Unlock()
		return
	}
	n, ok := v.graph.Lookup(ids[0])
	fn := v.onSelect
	v.mu.Unlock()

	if !ok || fn == nil {
		return
	}
	observability.View().OnSelect(context.Background(), n.ID)
	fn(n.Detail)
}

// lease owns one engine instance until released.
type lease struct {
	inst Instance
	once sync.Once
	err  error
}

func (l *lease) release() error {
	l.once.Do(func() {
		l.err = l.inst.Destroy()
	})
	return l.err
}
