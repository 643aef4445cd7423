package flow

import (
	"fmt"
	"regexp"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

var indexKeyRe = regexp.MustCompile(`^\[(\d+)\]$`)

// CanToggle reports whether [Graph.ToggleContainer] would change the node:
// it must be an array or object with inline properties or children.
func (g *Graph) CanToggle(id string) bool {
	n, ok := g.index[id]
	if !ok || !n.Kind.IsComposite() {
		return false
	}
	return len(n.Inline) > 0 || len(g.Children(id)) > 0
}

// ToggleContainer flips a node between array and object representation and
// reports whether anything changed.
//
// Object to array: every inline property becomes a leaf child keyed "[i]",
// numbered after the existing children, and existing children are re-keyed
// "[i]" by edge order. Array to object: every scalar leaf child is folded
// back into an inline property and removed from the graph; remaining
// children are re-keyed. A key remembered from an earlier object to array
// toggle is restored; otherwise "[i]" becomes "item_i" and any other key
// becomes "item".
//
// New leaves are placed one level below the node using l's spacing; a zero
// Layout selects [DefaultBuildLayout].
func (g *Graph) ToggleContainer(id string, l Layout) (bool, error) {
	n, ok := g.index[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if !g.CanToggle(id) {
		return false, nil
	}

	kids := g.Children(id)
	if n.Mode() == jsonvalue.KindObject {
		g.objectToArray(n, kids, l.withDefaults(DefaultBuildLayout))
	} else {
		g.arrayToObject(n, kids)
	}
	g.refresh(n)
	g.touch()
	return true, nil
}

func (g *Graph) objectToArray(n *Node, kids []string, l Layout) {
	for i, id := range kids {
		c := g.index[id]
		c.OriginKey, c.OriginKeyed = c.Key, c.Keyed
		c.Key, c.Keyed = IndexKey(i), true
	}

	for j, p := range n.Inline {
		leaf := &Node{
			ID:          g.NewNodeID(),
			Key:         IndexKey(len(kids) + j),
			Keyed:       true,
			OriginKey:   p.Key,
			OriginKeyed: true,
			Kind:      p.Kind(),
			Raw:       p.Value,
			Position: Position{
				X: l.spread(n.Position.X, j, len(n.Inline)),
				Y: n.Position.Y + l.VerticalSpacing,
			},
		}
		g.insert(leaf)
		g.link(n.ID, leaf.ID)
	}

	n.Inline = nil
	n.Kind = jsonvalue.KindArray
	n.ContainerKind = jsonvalue.KindArray
}

func (g *Graph) arrayToObject(n *Node, kids []string) {
	adj := g.adjacency()
	var folded []string
	for _, id := range kids {
		c := g.index[id]
		key := objectKey(c)
		if !c.Kind.IsComposite() && len(adj[id]) == 0 {
			n.Inline = append(n.Inline, InlineProperty{Key: key, Value: scalarOf(c)})
			folded = append(folded, id)
			continue
		}
		c.Key, c.Keyed = key, true
		c.OriginKey, c.OriginKeyed = "", false
	}
	for _, id := range folded {
		g.removeNode(id)
	}

	n.Kind = jsonvalue.KindObject
	n.ContainerKind = jsonvalue.KindObject
}

// objectKey picks the property name a child takes when its parent becomes
// an object.
func objectKey(c *Node) string {
	if c.OriginKeyed && !indexKeyRe.MatchString(c.OriginKey) {
		return c.OriginKey
	}
	if m := indexKeyRe.FindStringSubmatch(c.Key); m != nil {
		return "item_" + m[1]
	}
	return "item"
}

func scalarOf(n *Node) jsonvalue.Value {
	if n.Raw == nil {
		return jsonvalue.Null{}
	}
	return n.Raw
}
