package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mysterygraph/pkg/cache"
	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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

// Execute runs check → derive → layout → render.
//
// Parse and shape failures are returned as errors. A document with findings
// returns a Result with the findings and nothing else. A derivation
// inconsistency is logged and reported in Result.DeriveError with an empty
// graph; the run stops there without an error.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Check
	result, err := r.Check(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	if !result.Valid() {
		r.Logger.Info("document has findings", "count", len(result.Findings))
		return result, nil
	}

	// Stage 2: Derive
	deriveStart := time.Now()
	g, err := r.Derive(ctx, result)
	result.Stats.DeriveTime = time.Since(deriveStart)
	if err != nil {
		return result, nil
	}
	r.Logger.Info("derived graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.DeriveTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", layout.Engine,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Check parses and validates a document. See [Check].
func (r *Runner) Check(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	result, err := Check(ctx, data, opts)
	if err != nil {
		r.Logger.Debug("check failed", "err", err)
		return nil, err
	}
	r.Logger.Debug("checked document",
		"hash", result.DocumentHash[:12],
		"findings", len(result.Findings))
	return result, nil
}

// Derive builds the graph for a checked result and stores it there.
// An inconsistency is logged at warn level and recorded in DeriveError.
func (r *Runner) Derive(ctx context.Context, result *Result) (graph.Graph, error) {
	if !result.Valid() {
		return graph.Graph{}, errors.New("document has findings")
	}
	g, err := Derive(ctx, result.Document)
	if err != nil {
		r.Logger.Warn("could not derive graph", "err", err)
		result.DeriveError = err
		result.Graph = graph.Graph{}
		return graph.Graph{}, err
	}
	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	return g, nil
}

// GenerateLayoutWithCacheInfo generates a layout with caching and returns cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	hooks := observability.Pipeline()

	// Compute cache key
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, "layout", cacheKey); ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
	}

	start := time.Now()
	hooks.OnLayoutStart(ctx, opts.Engine, g.NodeCount())
	layout, err := GenerateLayout(g, opts)
	hooks.OnLayoutComplete(ctx, opts.Engine, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if data, err := graph.MarshalLayout(layout); err == nil {
		r.cacheSet(ctx, "layout", cacheKey, data, cache.LayoutTTL)
	}

	return layout, false, nil
}

// GenerateLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, error) {
	layout, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()

	layoutData, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, ok := r.cacheGet(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderLayout(ctx, layout, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.cacheSet(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.ArtifactTTL)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// cacheGet reads from the cache, treating backend failures as misses.
func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// cacheSet writes to the cache; failures only cost a recomputation later.
func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
