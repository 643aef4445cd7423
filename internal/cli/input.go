package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/jsonflow/pkg/cache"
	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/httputil"
	"github.com/matzehuels/jsonflow/pkg/pipeline"
)

// defaultFetchTTL applies when the config sets no cache ttl.
const defaultFetchTTL = time.Hour

// stdinName selects standard input or output.
const stdinName = "-"

// readInput returns the document named by arg and its input format. An
// empty arg or "-" reads stdin and http(s) URLs are fetched; anything else
// is a file path. format overrides detection by file extension.
func (c *CLI) readInput(ctx context.Context, arg, format string, cch cache.Cache) ([]byte, string, error) {
	if format == "" {
		format = inputFormat(arg)
	}

	switch {
	case arg == "" || arg == stdinName:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, format, nil
	case httputil.IsURL(arg):
		ttl := c.Config.Cache.TTL.Duration
		if ttl <= 0 {
			ttl = defaultFetchTTL
		}
		f := &httputil.Fetcher{Cache: cch, TTL: ttl}

		sp := newSpinner(ctx, "Fetching "+arg)
		sp.start()
		data, err := f.Fetch(ctx, arg)
		if err != nil {
			sp.fail("Fetch failed")
			return nil, "", err
		}
		sp.stop()
		return data, format, nil
	default:
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, "", fmt.Errorf("read input: %w", err)
		}
		return data, format, nil
	}
}

// inputFormat guesses the input format from a file name or URL path.
func inputFormat(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return pipeline.InputYAML
	default:
		return pipeline.InputJSON
	}
}

// readGraph loads a graph file, or a graph document from stdin.
func readGraph(path string) (*flow.Graph, error) {
	if path == "" || path == stdinName {
		return graph.ReadGraph(os.Stdin)
	}
	return graph.ReadGraphFile(path)
}

// writeGraph saves g to path, or prints it when path is "-".
func writeGraph(g *flow.Graph, path string) error {
	if path == stdinName {
		return graph.WriteGraph(g, os.Stdout)
	}
	if err := graph.WriteGraphFile(g, path); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(data []byte, path string) error {
	if path == "" || path == stdinName {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// outputPath derives the file for one of several formats from a base path:
// "out" or "out.json" become "out.svg" for format svg.
func outputPath(base, format string) string {
	ext := "." + formatExt(format)
	if strings.HasSuffix(base, ext) {
		return base
	}
	stem := strings.TrimSuffix(base, ".graph.json")
	if stem == base {
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return stem + ext
}

func formatExt(format string) string {
	switch format {
	case graph.FormatGraph:
		return "graph.json"
	case graph.FormatTree:
		return "txt"
	default:
		return format
	}
}
