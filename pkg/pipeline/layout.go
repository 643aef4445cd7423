package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/observability"
)

// Build lays v out as a flow graph. With opts.Reorganize set the compact
// initial layout is replaced by the depth-based one, using opts.Layout for
// both passes.
func Build(ctx context.Context, v jsonvalue.Value, opts Options) *flow.Graph {
	hooks := observability.Pipeline()

	start := time.Now()
	g := flow.Build(v, opts.Layout)
	hooks.OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start))

	if opts.Reorganize {
		Reorganize(ctx, g, opts.Layout)
	}
	return g
}

// Reorganize recomputes all node positions of g in place.
func Reorganize(ctx context.Context, g *flow.Graph, l flow.Layout) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()
	g.Reorganize(l)
	hooks.OnLayoutComplete(ctx, time.Since(start))
}
