package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/pipeline"
	"github.com/matzehuels/jsonflow/pkg/render/tree"
)

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	fromGraph   bool
	inputFormat string
	color       bool
	maxDepth    int
}

// treeCommand prints a JSON document, or the value behind a graph file, as
// an indented tree.
func (c *CLI) treeCommand() *cobra.Command {
	var opts treeOpts

	cmd := &cobra.Command{
		Use:   "tree [file|url|-]",
		Short: "Print a JSON document as a tree",
		Example: `  jsonflow tree data.json --color
  jsonflow tree data.graph.json --graph --max-depth 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) > 0 {
				input = args[0]
			}
			return c.runTree(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.fromGraph, "graph", false, "read a graph file and print the value it rebuilds to")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input format: json or yaml (default from file extension)")
	cmd.Flags().BoolVar(&opts.color, "color", false, "colour values by kind")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "stop descending below this depth (0 = unlimited)")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, input string, opts treeOpts) error {
	v, err := c.treeValue(ctx, input, opts)
	if err != nil {
		return err
	}
	return tree.Write(os.Stdout, v, tree.Options{Color: opts.color, MaxDepth: opts.maxDepth})
}

func (c *CLI) treeValue(ctx context.Context, input string, opts treeOpts) (jsonvalue.Value, error) {
	if opts.fromGraph {
		g, err := readGraph(input)
		if err != nil {
			return nil, err
		}
		return pipeline.Rebuild(g)
	}

	cch, err := c.newCache(ctx, false)
	if err != nil {
		return nil, err
	}
	defer cch.Close()

	data, format, err := c.readInput(ctx, input, opts.inputFormat, cch)
	if err != nil {
		return nil, err
	}
	return pipeline.Parse(ctx, data, format)
}
