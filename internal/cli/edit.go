package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/pipeline"
	"github.com/matzehuels/jsonflow/pkg/visualizer"
)

// defaultEditOutput is where the editor saves when no path can be derived.
const defaultEditOutput = "jsonflow.graph.json"

// editOpts holds the command-line flags for the edit command.
type editOpts struct {
	output      string
	fromGraph   bool
	inputFormat string
}

// editCommand opens the interactive graph editor.
func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit [file|url|-]",
		Short: "Edit a document's graph interactively",
		Long: `Edit lays out a JSON or YAML document (or loads a graph file with --graph)
and opens an interactive editor. Without input the sample document is used.

Pressing s saves the graph file; rebuild turns it back into JSON.`,
		Example: `  jsonflow edit data.json -o data.graph.json
  jsonflow edit data.graph.json --graph`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) > 0 {
				input = args[0]
			}
			return c.runEdit(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "graph file to save to")
	cmd.Flags().BoolVar(&opts.fromGraph, "graph", false, "input is a graph file")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input format: json or yaml (default from file extension)")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, input string, opts editOpts) error {
	var m *EditModel
	vz := visualizer.New(visualizer.Options{
		BuildLayout:      c.Config.Layout.Build,
		ReorganizeLayout: c.Config.Layout.Reorganize,
		Logger:           c.Logger,
		OnDataChange: func(v jsonvalue.Value) {
			if m != nil {
				m.OnDataChange(v)
			}
		},
	})

	if err := c.loadEditor(ctx, vz, input, opts); err != nil {
		return err
	}

	output := editOutput(input, opts)
	m = NewEditModel(vz, saveGraphTo(output))
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	if m.Dirty {
		printWarning("Quit with unsaved changes")
	} else if m.Changes > 0 {
		printSuccess("Saved %d changes", m.Changes)
		printFile(output)
		printNextStep("Rebuild the JSON", fmt.Sprintf("%s rebuild %s", appName, output))
	}
	return nil
}

// loadEditor fills vz from a graph file, a document or the sample.
func (c *CLI) loadEditor(ctx context.Context, vz *visualizer.Visualizer, input string, opts editOpts) error {
	if opts.fromGraph {
		g, err := readGraph(input)
		if err != nil {
			return err
		}
		return vz.Restore(g)
	}

	if input == "" {
		vz.RenderGraph(sampleValue())
		return nil
	}

	cch, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer cch.Close()

	data, format, err := c.readInput(ctx, input, opts.inputFormat, cch)
	if err != nil {
		return err
	}
	v, err := pipeline.Parse(ctx, data, format)
	if err != nil {
		return err
	}
	vz.RenderGraph(v)
	return nil
}

// editOutput picks the graph file the editor saves to.
func editOutput(input string, opts editOpts) string {
	switch {
	case opts.output != "":
		return opts.output
	case opts.fromGraph && input != "" && input != stdinName:
		return input
	case input == "" || input == stdinName || strings.Contains(input, "://"):
		return defaultEditOutput
	default:
		return outputPath(input, graph.FormatGraph)
	}
}
