// Package pipeline provides the parse → build → render pipeline for jsonflow.
//
// The CLI and the HTTP API both go through this package so that a JSON
// document is turned into the same graph and the same artifacts regardless
// of the entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode JSON or YAML input into a JSON value
//  2. Build: lay the value out as a flow graph, optionally reorganized
//  3. Render: produce JSON, YAML, graph documents, DOT, SVG or text trees
//
// Each stage can be run on its own. The [Runner] adds caching of built
// graphs and rendered artifacts on top.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Formats: []string{graph.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[graph.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jsonflow/pkg/cache"
	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
)

// =============================================================================
// Formats
// =============================================================================

// Input formats.
const (
	InputJSON = "json"
	InputYAML = "yaml"
)

// DefaultFormat is the output format used when none is requested.
const DefaultFormat = graph.FormatGraph

// InputFormats lists the accepted input formats.
var InputFormats = []string{InputJSON, InputYAML}

// OutputFormats lists the renderable output formats.
var OutputFormats = []string{
	graph.FormatJSON,
	graph.FormatYAML,
	graph.FormatGraph,
	graph.FormatDOT,
	graph.FormatSVG,
	graph.FormatTree,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON serialization for API
// requests.
type Options struct {
	// Parse options
	InputFormat string `json:"input_format,omitempty"`

	// Build options
	Reorganize bool        `json:"reorganize,omitempty"`
	Layout     flow.Layout `json:"layout,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // inline properties in DOT/SVG labels
	Pinned   bool     `json:"pinned,omitempty"`   // DOT/SVG nodes at canvas positions
	Color    bool     `json:"color,omitempty"`    // ANSI colours in text trees

	// Refresh bypasses cached graphs and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built flow graph.
	Graph *flow.Graph

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool // built graph came from cache
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks formats and fills defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.InputFormat == "" {
		o.InputFormat = InputJSON
	}
	in, err := errs.ValidateFormat(o.InputFormat, InputFormats...)
	if err != nil {
		return err
	}
	o.InputFormat = in
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for i, f := range o.Formats {
		format, err := errs.ValidateFormat(f, OutputFormats...)
		if err != nil {
			return err
		}
		o.Formats[i] = format
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// GraphKeyOpts returns cache key options for building a graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Reorganize: o.Reorganize,
		Layout:     o.Layout,
	}
}

// ArtifactKeyOpts returns cache key options for rendering format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case graph.FormatTree:
		opts.Color = o.Color
	case graph.FormatDOT, graph.FormatSVG:
		opts.Detailed = o.Detailed
		opts.Pinned = o.Pinned
	}
	return opts
}
