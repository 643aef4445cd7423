package flow

import (
	"fmt"
	"slices"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

// Connect adds the edge source→target, making target a child of source.
//
// The graph stays a forest: Connect fails with ErrMultipleParents when target
// already has a parent and with ErrCycle when source is reachable from
// target. It also rejects unknown nodes, self loops, duplicate edges and
// scalar sources.
//
// A target joining an array-mode parent is keyed "[i]" after the existing
// children; under an object-mode parent a node keeps its key, and a former
// root that never had one rebuilds under its node ID.
func (g *Graph) Connect(source, target string) (Edge, error) {
	src, ok := g.index[source]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, source)
	}
	dst, ok := g.index[target]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	}
	switch {
	case source == target:
		return Edge{}, ErrSelfLoop
	case g.hasEdge(source, target):
		return Edge{}, fmt.Errorf("%w: %s→%s", ErrDuplicateEdge, source, target)
	case !src.Kind.IsComposite():
		return Edge{}, fmt.Errorf("%w: %s", ErrLeafSource, source)
	case len(g.Parents(target)) > 0:
		return Edge{}, fmt.Errorf("%w: %s", ErrMultipleParents, target)
	case g.reaches(target, source):
		return Edge{}, fmt.Errorf("%w: %s→%s", ErrCycle, source, target)
	}

	if src.Mode() == jsonvalue.KindArray {
		dst.Key, dst.Keyed = IndexKey(len(g.Children(source))), true
	}
	e := g.link(source, target)
	if !src.ContainerKind.IsComposite() {
		src.ContainerKind = src.Kind
	}
	src.IsContainer = true
	g.touch()
	return e, nil
}

// DeleteEdge removes the edge with the given ID. The former target becomes
// a root.
func (g *Graph) DeleteEdge(edgeID string) error {
	i := slices.IndexFunc(g.edges, func(e Edge) bool { return e.ID == edgeID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, edgeID)
	}
	source := g.edges[i].Source
	g.edges = slices.Delete(g.edges, i, i+1)
	if n, ok := g.index[source]; ok {
		g.refresh(n)
	}
	g.touch()
	return nil
}

// DeleteNode removes a node together with every edge touching it. Its
// children become roots.
func (g *Graph) DeleteNode(id string) error {
	if _, ok := g.index[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	parents := g.Parents(id)
	g.removeNode(id)
	for _, p := range parents {
		if n, ok := g.index[p]; ok {
			g.refresh(n)
		}
	}
	g.touch()
	return nil
}

// MoveNode sets a node's position.
func (g *Graph) MoveNode(id string, p Position) error {
	n, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n.Position = p
	g.touch()
	return nil
}
