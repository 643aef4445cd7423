package flow

import (
	"fmt"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

// Build lays v out as a graph. A zero Layout selects [DefaultBuildLayout];
// the document root sits at (CenterX, BaseY).
//
// Siblings are spread evenly around their parent's x and each level moves
// down by VerticalSpacing. The initial layout is not collision free for
// unbalanced trees; call [Graph.Reorganize] for a clean one.
func Build(v jsonvalue.Value, l Layout) *Graph {
	l = l.withDefaults(DefaultBuildLayout)
	b := &builder{g: New(), l: l}

	if arr, ok := v.(jsonvalue.Array); ok {
		b.g.rootIsArray = true
		for i, elem := range arr {
			b.add(elem, "", IndexKey(i), l.spread(l.CenterX, i, len(arr)), l.BaseY)
		}
		return b.g
	}

	b.add(v, "", "", l.CenterX, l.BaseY)
	return b.g
}

type builder struct {
	g *Graph
	l Layout
}

type child struct {
	key   string
	value jsonvalue.Value
}

// add creates the node for v, links it under parent (if any) and recurses
// into its structural children. It returns the new node's ID.
func (b *builder) add(v jsonvalue.Value, parent, key string, x, y float64) string {
	n := &Node{
		ID:       b.g.NewNodeID(),
		Key:      key,
		Keyed:    parent != "" || key != "",
		Kind:     jsonvalue.Classify(v),
		Raw:      v,
		Position: Position{X: x, Y: y},
	}
	if v == nil {
		n.Raw = jsonvalue.Null{}
	}

	var kids []child
	switch t := v.(type) {
	case *jsonvalue.Object:
		n.ContainerKind = jsonvalue.KindObject
		for _, m := range t.Members() {
			if jsonvalue.IsScalar(m.Value) {
				n.Inline = append(n.Inline, InlineProperty{Key: m.Key, Value: m.Value})
				continue
			}
			kids = append(kids, child{key: m.Key, value: m.Value})
		}
		n.IsContainer = len(kids) > 0
	case jsonvalue.Array:
		n.ContainerKind = jsonvalue.KindArray
		n.IsContainer = true
		for i, elem := range t {
			kids = append(kids, child{key: IndexKey(i), value: elem})
		}
	}

	b.g.insert(n)
	if parent != "" {
		b.g.link(parent, n.ID)
	}

	for i, c := range kids {
		b.add(c.value, n.ID, c.key, b.l.spread(x, i, len(kids)), y+b.l.VerticalSpacing)
	}
	return n.ID
}

// IndexKey returns the positional key "[i]".
func IndexKey(i int) string { return fmt.Sprintf("[%d]", i) }
