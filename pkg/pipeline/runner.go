package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reasontree/pkg/cache"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/observability"
	"github.com/matzehuels/reasontree/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long rendered artifacts stay cached. Zero means
	// cache.ArtifactTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads data and renders every requested format.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	root, g, err := r.Load(ctx, data)
	if err != nil {
		return nil, err
	}
	result := &Result{Tree: root, Graph: g}
	result.Stats.LoadTime = time.Since(loadStart)
	if err := r.renderResult(ctx, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteGraph renders a graph previously exported in the json format,
// skipping tree parsing. The graph must pass [graph.Validate]; Result.Tree is
// nil.
func (r *Runner) ExecuteGraph(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	g, err := graph.UnmarshalGraph(data)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	result := &Result{Graph: g}
	result.Stats.LoadTime = time.Since(loadStart)
	if err := r.renderResult(ctx, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) renderResult(ctx context.Context, result *Result, opts Options) error {
	g := result.Graph
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	renderStart := time.Now()
	artifacts, hit, err := r.Render(ctx, g, opts)
	if err != nil {
		return err
	}
	result.Artifacts = artifacts
	result.CacheHit = hit
	result.Stats.RenderTime = time.Since(renderStart)
	result.GraphHash = graphHash(g)

	r.logger(opts).Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return nil
}

// Load parses a tree document and converts it. Parse errors are load
// failures carrying the parser's message.
func (r *Runner) Load(ctx context.Context, data []byte) (*tree.Node, *graph.Graph, error) {
	start := time.Now()
	root, err := tree.Parse(data)
	if err != nil {
		observability.Load().OnLoadFailure(ctx, err)
		return nil, nil, err
	}
	g := graph.Convert(root)
	dur := time.Since(start)

	observability.Load().OnLoad(ctx, g.NodeCount(), g.EdgeCount(), dur)
	r.Logger.Debug("loaded tree", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "duration", dur)
	return root, g, nil
}

// Render produces each format in opts.Formats for g. The returned bool is
// true when every artifact came from the cache.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hash := graphHash(g)
	logger := r.logger(opts)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(hash, r.keyOpts(format, opts))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			logger.Warn("artifact cache read", "format", format, "err", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, format)
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, format)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	rendered, err := RenderGraph(ctx, g, missing, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(hash, r.keyOpts(format, opts))
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			logger.Warn("artifact cache write", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
	return artifacts, false, nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.ArtifactTTL
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) keyOpts(format string, opts Options) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Options: opts.View}
	if format == FormatPNG {
		k.Scale = opts.Scale
	}
	return k
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func graphHash(g *graph.Graph) string {
	data, _ := graph.MarshalGraph(g)
	return cache.Hash(data)
}
