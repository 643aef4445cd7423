package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	output      string
	formats     []string
	inputFormat string
	reorganize  bool
	detailed    bool
	pinned      bool
	color       bool
	noCache     bool
	refresh     bool
	layout      layoutFlags
}

// layoutFlags overrides configured spacing when set.
type layoutFlags struct {
	horizontal float64
	vertical   float64
}

func addLayoutFlags(cmd *cobra.Command, lf *layoutFlags) {
	cmd.Flags().Float64Var(&lf.horizontal, "h-spacing", 0, "horizontal spacing between siblings")
	cmd.Flags().Float64Var(&lf.vertical, "v-spacing", 0, "vertical spacing between levels")
}

// apply overrides the spacing of l. An unset l starts from def so the
// canvas origin is kept.
func (lf layoutFlags) apply(l, def flow.Layout) flow.Layout {
	if lf.horizontal <= 0 && lf.vertical <= 0 {
		return l
	}
	if l == (flow.Layout{}) {
		l = def
	}
	if lf.horizontal > 0 {
		l.HorizontalSpacing = lf.horizontal
	}
	if lf.vertical > 0 {
		l.VerticalSpacing = lf.vertical
	}
	return l
}

// buildCommand creates the build command: JSON in, graph file or rendering out.
func (c *CLI) buildCommand() *cobra.Command {
	var formatsStr string
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [file|url|-]",
		Short: "Lay out a JSON or YAML document as a graph",
		Long: `Build parses a JSON or YAML document and lays it out as a node graph.

By default the graph document is printed; it can be edited with the layout,
toggle, connect and disconnect commands and turned back into JSON with rebuild.
Other formats render the graph directly: dot, svg, tree, json, yaml.`,
		Example: `  jsonflow build data.json -o data.graph.json
  jsonflow build data.json -f svg -o data.svg --detailed
  curl -s https://example.com/data.json | jsonflow build -f tree`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if len(opts.formats) > 1 && opts.output == "" {
				return fmt.Errorf("--output is required for multiple formats")
			}
			var input string
			if len(args) > 0 {
				input = args[0]
			}
			return c.runBuild(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): graph (default), json, yaml, dot, svg, tree (comma-separated)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input format: json or yaml (default from file extension)")
	cmd.Flags().BoolVar(&opts.reorganize, "reorganize", false, "apply the depth-based layout")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list inline properties in dot/svg nodes")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "place dot/svg nodes at their canvas positions")
	cmd.Flags().BoolVar(&opts.color, "color", false, "colour tree output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	addLayoutFlags(cmd, &opts.layout)

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input string, opts buildOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, format, err := c.readInput(ctx, input, opts.inputFormat, runner.Cache)
	if err != nil {
		return err
	}

	layout, def := c.Config.Layout.Build, flow.DefaultBuildLayout
	if opts.reorganize {
		layout, def = c.Config.Layout.Reorganize, flow.DefaultReorganizeLayout
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, data, pipeline.Options{
		InputFormat: format,
		Reorganize:  opts.reorganize,
		Layout:      opts.layout.apply(layout, def),
		Formats:     opts.formats,
		Detailed:    opts.detailed,
		Pinned:      opts.pinned,
		Color:       opts.color,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	})
	if err != nil {
		return err
	}
	c.Logger.Debug("pipeline finished", "graph_hash", result.GraphHash)

	if len(opts.formats) == 1 {
		if err := writeOutput(result.Artifacts[opts.formats[0]], opts.output); err != nil {
			return err
		}
	} else {
		for _, f := range opts.formats {
			if err := writeOutput(result.Artifacts[f], outputPath(opts.output, f)); err != nil {
				return err
			}
		}
	}

	if opts.output != "" {
		printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.GraphHit)
		if len(opts.formats) == 1 && opts.formats[0] == graph.FormatGraph {
			printNextStep("Edit it", fmt.Sprintf("%s edit %s --graph", appName, opts.output))
		}
	}
	prog.done(fmt.Sprintf("Built %d nodes", result.Stats.NodeCount))
	return nil
}
