package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsonflow/pkg/cache"
	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
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

// Execute runs the complete parse → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1+2: Parse and build
	buildStart := time.Now()
	g, hit, err := r.BuildWithCacheInfo(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.GraphHit = hit

	r.Logger.Info("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, graphHash, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.GraphHash = graphHash
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo parses input and builds its graph, returning whether
// the graph came from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, input []byte, opts Options) (*flow.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.GraphKey(cache.Hash(input), opts.GraphKeyOpts())
	if opts.Refresh {
		_ = r.Cache.Delete(ctx, key)
	}

	var built *flow.Graph
	data, hit, err := cache.GetOrCompute(ctx, r.Cache, cache.KeyTypeGraph, key, cache.TTLGraph, func() ([]byte, error) {
		v, err := Parse(ctx, input, opts.InputFormat)
		if err != nil {
			return nil, err
		}
		built = Build(ctx, v, opts)
		return graph.MarshalGraph(built)
	})
	if err != nil {
		return nil, false, err
	}
	if built != nil {
		return built, false, nil
	}

	g, err := graph.ReadGraph(bytes.NewReader(data))
	if err != nil {
		// A corrupt entry is rebuilt rather than reported.
		r.Logger.Warn("discarding cached graph", "key", key, "err", err)
		_ = r.Cache.Delete(ctx, key)
		v, err := Parse(ctx, input, opts.InputFormat)
		if err != nil {
			return nil, false, err
		}
		return Build(ctx, v, opts), false, nil
	}
	return g, hit, nil
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Build(ctx context.Context, input []byte, opts Options) (*flow.Graph, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, input, opts)
	return g, err
}

// RenderWithCacheInfo renders g in every requested format. Artifacts are
// keyed by the hash of the serialized graph, so an edited graph never hits
// an artifact of its previous state. It returns the graph hash and whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData)

	rd := &renderer{g: g, opts: opts}
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if opts.Refresh {
			_ = r.Cache.Delete(ctx, key)
		}
		data, hit, err := cache.GetOrCompute(ctx, r.Cache, cache.KeyTypeArtifact, key, cache.TTLArtifact, func() ([]byte, error) {
			return rd.render(ctx, format)
		})
		if err != nil {
			return nil, "", false, err
		}
		allCached = allCached && hit
		artifacts[format] = data
	}
	return artifacts, graphHash, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the hash and cache hit info.
func (r *Runner) Render(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
