package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsonflow/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string
	formats  []string
	detailed bool
	pinned   bool
	color    bool
}

// renderCommand renders an existing graph file without re-laying it out.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json|->",
		Short: "Render a graph file as dot, svg, tree, json or yaml",
		Long: `Render draws a graph file produced by build (and possibly edited since)
in one or more output formats. Node positions are kept as they are.`,
		Example: `  jsonflow render data.graph.json -f svg -o data.svg
  jsonflow render data.graph.json -f dot,svg,json -o out --pinned`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if len(opts.formats) > 1 && opts.output == "" {
				return fmt.Errorf("--output is required for multiple formats")
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "svg", "output format(s): svg, dot, tree, json, yaml, graph (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list inline properties in dot/svg nodes")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "place dot/svg nodes at their canvas positions")
	cmd.Flags().BoolVar(&opts.color, "color", false, "colour tree output")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	g, err := readGraph(path)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Formats:  opts.formats,
		Detailed: opts.detailed,
		Pinned:   opts.pinned,
		Color:    opts.color,
		Logger:   c.Logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	artifacts, err := pipeline.Render(ctx, g, popts)
	if err != nil {
		return err
	}

	if len(popts.Formats) == 1 {
		return writeOutput(artifacts[popts.Formats[0]], opts.output)
	}
	for _, f := range popts.Formats {
		if err := writeOutput(artifacts[f], outputPath(opts.output, f)); err != nil {
			return err
		}
	}
	return nil
}
