package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/pipeline"
	"github.com/matzehuels/jsonflow/pkg/visualizer"
)

// rebuildCommand turns a graph file back into JSON.
func (c *CLI) rebuildCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "rebuild <graph.json|->",
		Short: "Reconstruct the JSON value of a graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRebuild(cmd.Context(), args[0], format, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", graph.FormatJSON, "output format: json or yaml")

	return cmd
}

func (c *CLI) runRebuild(ctx context.Context, path, format, output string) error {
	if format != graph.FormatJSON && format != graph.FormatYAML {
		return fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}
	g, err := readGraph(path)
	if err != nil {
		return err
	}
	data, err := pipeline.RenderFormat(ctx, g, format, pipeline.Options{})
	if err != nil {
		return err
	}
	return writeOutput(data, output)
}

// layoutCommand reorganizes a graph file.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "layout <graph.json>",
		Short: "Recompute node positions of a graph file by depth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := lf.apply(c.Config.Layout.Reorganize, flow.DefaultReorganizeLayout)
			return c.editGraph(args[0], output, func(vz *visualizer.Visualizer) error {
				vz.Reorganize()
				return nil
			}, func(o *visualizer.Options) { o.ReorganizeLayout = layout })
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	addLayoutFlags(cmd, &lf)

	return cmd
}

// toggleCommand flips a node between array and object.
func (c *CLI) toggleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "toggle <graph.json> <node-id>",
		Short:             "Switch a node between array and object",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeGraphIDs(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(args[0], output, func(vz *visualizer.Visualizer) error {
				toggled, err := vz.Toggle(args[1])
				if err != nil {
					return err
				}
				if !toggled {
					printWarning("Node %s has no members to reinterpret", args[1])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

// connectCommand adds a parent→child edge.
func (c *CLI) connectCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "connect <graph.json> <source-id> <target-id>",
		Short:             "Make one node the child of another",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completeGraphIDs(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(args[0], output, func(vz *visualizer.Visualizer) error {
				e, err := vz.Connect(args[1], args[2])
				if err != nil {
					return err
				}
				printSuccess("Connected %s", StyleHighlight.Render(e.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

// disconnectCommand removes an edge, named by ID or by its endpoints.
func (c *CLI) disconnectCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "disconnect <graph.json> <edge-id | source-id target-id>",
		Short:             "Remove an edge, detaching the child subtree",
		Args:              cobra.RangeArgs(2, 3),
		ValidArgsFunction: completeGraphIDs(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editGraph(args[0], output, func(vz *visualizer.Visualizer) error {
				edgeID := args[1]
				if len(args) == 3 {
					id, ok := findEdge(vz, args[1], args[2])
					if !ok {
						return fmt.Errorf("no edge from %s to %s", args[1], args[2])
					}
					edgeID = id
				}
				return vz.DeleteEdge(edgeID)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

func findEdge(vz *visualizer.Visualizer, source, target string) (string, bool) {
	for _, e := range vz.Graph().Edges() {
		if e.Source == source && e.Target == target {
			return e.ID, true
		}
	}
	return "", false
}

// editGraph loads the graph file at path, applies fn through a visualizer
// and saves the result to output (default: path).
func (c *CLI) editGraph(path, output string, fn func(*visualizer.Visualizer) error, configure ...func(*visualizer.Options)) error {
	g, err := readGraph(path)
	if err != nil {
		return err
	}

	changed := false
	opts := visualizer.Options{
		BuildLayout:      c.Config.Layout.Build,
		ReorganizeLayout: c.Config.Layout.Reorganize,
		Logger:           c.Logger,
		OnDataChange:     func(jsonvalue.Value) { changed = true },
	}
	for _, f := range configure {
		f(&opts)
	}

	vz := visualizer.New(opts)
	if err := vz.Restore(g); err != nil {
		return err
	}
	if err := fn(vz); err != nil {
		return err
	}

	if output == "" {
		output = path
	}
	if output == "" {
		output = stdinName
	}
	if err := writeGraph(vz.Graph(), output); err != nil {
		return err
	}
	if output != stdinName {
		if changed {
			printInfo("JSON value changed")
		} else {
			printDetail("JSON value unchanged")
		}
	}
	return nil
}
