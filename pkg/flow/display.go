package flow

import (
	"fmt"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

// Colors maps each JSON kind to the accent colour used by renderers.
var Colors = map[jsonvalue.Kind]string{
	jsonvalue.KindString: "#10b981",
	jsonvalue.KindNumber: "#3b82f6",
	jsonvalue.KindBool:   "#eab308",
	jsonvalue.KindNull:   "#6b7280",
	jsonvalue.KindArray:  "#a855f7",
	jsonvalue.KindObject: "#6366f1",
}

// Color returns the accent colour for k.
func Color(k jsonvalue.Kind) string {
	if c, ok := Colors[k]; ok {
		return c
	}
	return "#6b7280"
}

// FormatScalar renders a scalar for display: strings quoted, everything else
// as its JSON literal.
func FormatScalar(v jsonvalue.Value) string {
	switch t := v.(type) {
	case jsonvalue.String:
		return fmt.Sprintf("%q", string(t))
	case jsonvalue.Array:
		return fmt.Sprintf("Array[%d]", len(t))
	case *jsonvalue.Object:
		return fmt.Sprintf("Object{%d}", t.Len())
	default:
		return jsonvalue.Format(v)
	}
}

// Summary describes a node's current content: the scalar for leaves,
// "Array[n]" or "Object{n}" for composites where n counts inline properties
// plus children.
func (g *Graph) Summary(id string) string {
	n, ok := g.index[id]
	if !ok {
		return ""
	}
	if !n.Kind.IsComposite() {
		return FormatScalar(scalarOf(n))
	}
	size := len(n.Inline) + len(g.Children(id))
	if n.Mode() == jsonvalue.KindArray {
		return fmt.Sprintf("Array[%d]", size)
	}
	return fmt.Sprintf("Object{%d}", size)
}
