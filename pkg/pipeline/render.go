package pipeline

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/observability"
	"github.com/matzehuels/jsonflow/pkg/render/nodelink"
	"github.com/matzehuels/jsonflow/pkg/render/tree"
)

// Render generates output artifacts for g in every format of opts.Formats.
// The JSON value behind the json, yaml and tree formats is rebuilt once.
func Render(ctx context.Context, g *flow.Graph, opts Options) (map[string][]byte, error) {
	r := renderer{g: g, opts: opts}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.render(ctx, format)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat generates a single artifact.
func RenderFormat(ctx context.Context, g *flow.Graph, format string, opts Options) ([]byte, error) {
	r := renderer{g: g, opts: opts}
	return r.render(ctx, format)
}

// Rebuild reconstructs the JSON value of g, mapping graph errors to
// structured error codes.
func Rebuild(g *flow.Graph) (jsonvalue.Value, error) {
	v, err := g.Rebuild()
	if err != nil {
		code := errs.ErrCodeInvalidInput
		if errors.Is(err, flow.ErrCycle) {
			code = errs.ErrCodeCycle
		}
		return nil, errs.Wrap(code, err, "rebuild graph")
	}
	return v, nil
}

type renderer struct {
	g    *flow.Graph
	opts Options

	value   jsonvalue.Value
	rebuilt bool
}

func (r *renderer) render(ctx context.Context, format string) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := r.renderFormat(ctx, format)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		if errs.GetCode(err) != "" {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render %s", format)
	}
	return data, nil
}

func (r *renderer) renderFormat(ctx context.Context, format string) ([]byte, error) {
	switch format {
	case graph.FormatGraph:
		return graph.MarshalGraph(r.g)
	case graph.FormatDOT:
		return []byte(nodelink.ToDOT(r.g, r.nodelinkOptions())), nil
	case graph.FormatSVG:
		return nodelink.Render(ctx, r.g, r.nodelinkOptions())
	}

	v, err := r.rebuild()
	if err != nil {
		return nil, err
	}
	switch format {
	case graph.FormatJSON:
		return jsonvalue.MarshalIndent(v)
	case graph.FormatYAML:
		return jsonvalue.ToYAML(v)
	case graph.FormatTree:
		return []byte(tree.String(v, tree.Options{Color: r.opts.Color})), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", format)
}

func (r *renderer) rebuild() (jsonvalue.Value, error) {
	if !r.rebuilt {
		v, err := Rebuild(r.g)
		if err != nil {
			return nil, err
		}
		r.value, r.rebuilt = v, true
	}
	return r.value, nil
}

func (r *renderer) nodelinkOptions() nodelink.Options {
	return nodelink.Options{Detailed: r.opts.Detailed, Pinned: r.opts.Pinned}
}

// ContentType returns the MIME type of an artifact format.
func ContentType(format string) string {
	switch format {
	case graph.FormatJSON, graph.FormatGraph:
		return "application/json"
	case graph.FormatYAML:
		return "application/yaml"
	case graph.FormatDOT:
		return "text/vnd.graphviz"
	case graph.FormatSVG:
		return "image/svg+xml"
	default:
		return "text/plain; charset=utf-8"
	}
}
