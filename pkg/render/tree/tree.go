// Package tree renders JSON values as indented text trees.
//
// Each line shows a member key or "[i]" array index. Scalars follow the key
// after a colon; composites show an "Array[n]" or "Object{n}" summary and
// their members on the lines below:
//
//	root Object{2}
//	├── a: 1
//	└── b Array[2]
//	    ├── [0]: 2
//	    └── [1]: 3
package tree

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

const (
	branch = "├── "
	last   = "└── "
	pipe   = "│   "
	blank  = "    "
)

// Options configures tree rendering.
type Options struct {
	// Color paints values in the accent colour of their JSON kind.
	Color bool

	// MaxDepth stops descending below this many levels. Zero means no limit.
	MaxDepth int
}

// String renders v as a tree.
func String(v jsonvalue.Value, opts Options) string {
	var b strings.Builder
	p := printer{b: &b, opts: opts}
	p.line("", "root", v)
	p.children(v, "", 1)
	return b.String()
}

// Write renders v to w.
func Write(w io.Writer, v jsonvalue.Value, opts Options) error {
	_, err := io.WriteString(w, String(v, opts))
	return err
}

type printer struct {
	b    *strings.Builder
	opts Options
}

type entry struct {
	key   string
	value jsonvalue.Value
}

func entries(v jsonvalue.Value) []entry {
	switch t := v.(type) {
	case jsonvalue.Array:
		out := make([]entry, len(t))
		for i, elem := range t {
			out[i] = entry{key: flow.IndexKey(i), value: elem}
		}
		return out
	case *jsonvalue.Object:
		members := t.Members()
		out := make([]entry, len(members))
		for i, m := range members {
			out[i] = entry{key: m.Key, value: m.Value}
		}
		return out
	}
	return nil
}

func (p printer) children(v jsonvalue.Value, indent string, depth int) {
	if p.opts.MaxDepth > 0 && depth > p.opts.MaxDepth {
		return
	}
	es := entries(v)
	for i, e := range es {
		connector, next := branch, pipe
		if i == len(es)-1 {
			connector, next = last, blank
		}
		p.line(indent+connector, e.key, e.value)
		p.children(e.value, indent+next, depth+1)
	}
}

func (p printer) line(prefix, key string, v jsonvalue.Value) {
	p.b.WriteString(prefix)
	p.b.WriteString(key)
	if jsonvalue.IsScalar(v) {
		p.b.WriteString(": ")
	} else {
		p.b.WriteString(" ")
	}
	p.b.WriteString(p.paint(v, flow.FormatScalar(v)))
	p.b.WriteString("\n")
}

func (p printer) paint(v jsonvalue.Value, s string) string {
	if !p.opts.Color {
		return s
	}
	color := flow.Color(jsonvalue.Classify(v))
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}
