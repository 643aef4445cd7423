package flow

import (
	"fmt"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

// Rebuild reconstructs a JSON value from the current nodes and edges.
//
// An empty graph rebuilds to nil (JSON null). A single root rebuilds to its
// own value, several roots to an array of their values in node order. Graphs
// built from a root array always rebuild to an array, so "[]" and "[x]"
// survive the round trip.
//
// Rebuild returns ErrCycle or ErrDanglingEdge for graphs that are not
// forests of existing nodes.
func (g *Graph) Rebuild() (jsonvalue.Value, error) {
	if len(g.nodes) == 0 {
		if g.rootIsArray {
			return jsonvalue.Array{}, nil
		}
		return nil, nil
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	r := &rebuilder{g: g, adj: g.adjacency()}
	roots := g.Roots()
	values := make(jsonvalue.Array, len(roots))
	for i, root := range roots {
		values[i] = r.value(root)
	}

	if len(values) == 1 && !g.rootIsArray {
		return values[0], nil
	}
	return values, nil
}

type rebuilder struct {
	g   *Graph
	adj map[string][]string
}

func (r *rebuilder) value(n *Node) jsonvalue.Value {
	kids := r.adj[n.ID]

	if len(kids) == 0 && len(n.Inline) == 0 {
		if !n.Kind.IsComposite() {
			if n.Raw == nil {
				return jsonvalue.Null{}
			}
			return n.Raw
		}
		if n.Mode() == jsonvalue.KindArray {
			return jsonvalue.Array{}
		}
		return jsonvalue.NewObject()
	}

	if n.Mode() == jsonvalue.KindArray {
		arr := make(jsonvalue.Array, 0, len(n.Inline)+len(kids))
		for _, p := range n.Inline {
			arr = append(arr, p.Value)
		}
		for _, id := range kids {
			arr = append(arr, r.value(r.g.index[id]))
		}
		return arr
	}

	obj := jsonvalue.NewObject()
	for _, p := range n.Inline {
		obj.Set(uniqueKey(obj, p.Key), p.Value)
	}
	for _, id := range kids {
		c := r.g.index[id]
		key := c.Key
		if key == "" && !c.Keyed {
			key = c.ID
		}
		obj.Set(uniqueKey(obj, key), r.value(c))
	}
	return obj
}

// uniqueKey returns key, or key with a numeric suffix when obj already has it.
func uniqueKey(obj *jsonvalue.Object, key string) string {
	if !obj.Has(key) {
		return key
	}
	for i := 2; ; i++ {
		k := fmt.Sprintf("%s_%d", key, i)
		if !obj.Has(k) {
			return k
		}
	}
}
