package flow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

var (
	// ErrNodeNotFound is returned when an operation names an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned by [Graph.DeleteEdge] for an unknown edge.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrDuplicateNode is returned by [Graph.AddNode] when the ID is taken.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrDuplicateEdge is returned when an edge between the same source and
	// target already exists.
	ErrDuplicateEdge = errors.New("edge already exists")

	// ErrSelfLoop is returned by [Graph.Connect] when source equals target.
	ErrSelfLoop = errors.New("node cannot be connected to itself")

	// ErrLeafSource is returned by [Graph.Connect] when the source node holds
	// a scalar and therefore cannot have children.
	ErrLeafSource = errors.New("scalar node cannot have children")

	// ErrMultipleParents is returned by [Graph.Connect] when the target
	// already has a parent.
	ErrMultipleParents = errors.New("node already has a parent")

	// ErrCycle is returned when edges form a directed cycle.
	ErrCycle = errors.New("graph contains a cycle")

	// ErrDanglingEdge is returned by [Graph.Validate] when an edge references
	// a node that does not exist.
	ErrDanglingEdge = errors.New("edge references a missing node")
)

// Position is a node's location on the canvas. It only affects layout.
type Position struct {
	X float64
	Y float64
}

// InlineProperty is a scalar member folded into its parent node.
type InlineProperty struct {
	Key   string
	Value jsonvalue.Value
}

// Kind returns the JSON kind of the property value.
func (p InlineProperty) Kind() jsonvalue.Kind { return jsonvalue.Classify(p.Value) }

// Node is one vertex of the graph.
//
// Kind is the JSON kind the node displays as. ContainerKind decides how the
// node rebuilds (array or object) and is only meaningful for composite nodes.
// Raw keeps the value the node was built from; scalar leaves rebuild to it.
// Keyed tells an assigned key, possibly "", apart from a node that never had
// one; unkeyed children of an object rebuild under their node ID.
type Node struct {
	ID            string
	Key           string
	Keyed         bool
	OriginKey     string // property name before the node was re-keyed "[i]"
	OriginKeyed   bool
	Kind          jsonvalue.Kind
	Inline        []InlineProperty
	Raw           jsonvalue.Value
	IsContainer   bool
	ContainerKind jsonvalue.Kind
	Position      Position
}

// Label returns the key, or a placeholder for the document root.
func (n *Node) Label() string {
	switch {
	case n.Key != "":
		return n.Key
	case n.Keyed:
		return `""`
	case n.Kind.IsComposite():
		return "root"
	default:
		return "value"
	}
}

// Mode returns the container kind the node rebuilds as.
func (n *Node) Mode() jsonvalue.Kind {
	if n.ContainerKind.IsComposite() {
		return n.ContainerKind
	}
	if n.Kind.IsComposite() {
		return n.Kind
	}
	return jsonvalue.KindObject
}

func (n *Node) clone() *Node {
	c := *n
	c.Inline = slices.Clone(n.Inline)
	return &c
}

// Edge says Target is a structural child of Source.
type Edge struct {
	ID     string
	Source string
	Target string
}

// EdgeID returns the canonical ID of the edge source→target.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e%s-%s", source, target)
}

// Graph is an arena of nodes plus the edges between them. Node order is
// insertion order and is significant: roots rebuild in that order.
//
// The zero value is not usable; call [New] or [Build].
type Graph struct {
	nodes       []*Node
	index       map[string]*Node
	edges       []Edge
	nextID      int
	generation  uint64
	rootIsArray bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]*Node)}
}

// NewNodeID issues an ID that is not in use.
func (g *Graph) NewNodeID() string {
	for {
		id := fmt.Sprintf("n%d", g.nextID)
		g.nextID++
		if _, taken := g.index[id]; !taken {
			return id
		}
	}
}

// AddNode inserts a copy of n and returns the stored node. An empty ID is
// replaced with a fresh one.
func (g *Graph) AddNode(n Node) (*Node, error) {
	if n.ID == "" {
		n.ID = g.NewNodeID()
	}
	if _, exists := g.index[n.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	stored := n.clone()
	g.insert(stored)
	g.touch()
	return stored, nil
}

// AddEdge inserts an edge between existing nodes without applying the
// Connect policy. It is meant for loading stored documents.
func (g *Graph) AddEdge(source, target string) (Edge, error) {
	if _, ok := g.index[source]; !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, source)
	}
	if _, ok := g.index[target]; !ok {
		return Edge{}, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	}
	if g.hasEdge(source, target) {
		return Edge{}, fmt.Errorf("%w: %s→%s", ErrDuplicateEdge, source, target)
	}
	e := g.link(source, target)
	g.touch()
	return e, nil
}

func (g *Graph) insert(n *Node) {
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
}

func (g *Graph) link(source, target string) Edge {
	e := Edge{ID: EdgeID(source, target), Source: source, Target: target}
	g.edges = append(g.edges, e)
	return e
}

func (g *Graph) hasEdge(source, target string) bool {
	return slices.ContainsFunc(g.edges, func(e Edge) bool {
		return e.Source == source && e.Target == target
	})
}

func (g *Graph) removeNode(id string) {
	delete(g.index, id)
	g.nodes = slices.DeleteFunc(g.nodes, func(n *Node) bool { return n.ID == id })
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.Source == id || e.Target == id })
}

func (g *Graph) touch() { g.generation++ }

// Generation increases with every mutation. Two reads returning the same
// generation saw the same graph.
func (g *Graph) Generation() uint64 { return g.generation }

// RootIsArray reports whether the graph was built from a document whose root
// is an array. Such graphs always rebuild to an array of their roots.
func (g *Graph) RootIsArray() bool { return g.rootIsArray }

// SetRootIsArray sets the flag reported by [Graph.RootIsArray].
func (g *Graph) SetRootIsArray(v bool) {
	g.rootIsArray = v
	g.touch()
}

// Node returns the node with the given ID.
// The pointer refers to the stored node; changing its ID breaks the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the targets of edges leaving id, in edge order.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Parents returns the sources of edges entering id, in edge order.
func (g *Graph) Parents(id string) []string {
	var out []string
	for _, e := range g.edges {
		if e.Target == id {
			out = append(out, e.Source)
		}
	}
	return out
}

// Roots returns the nodes without an incoming edge, in insertion order.
func (g *Graph) Roots() []*Node {
	hasParent := make(map[string]bool, len(g.edges))
	for _, e := range g.edges {
		hasParent[e.Target] = true
	}
	var roots []*Node
	for _, n := range g.nodes {
		if !hasParent[n.ID] {
			roots = append(roots, n)
		}
	}
	return roots
}

// adjacency maps each source to its targets in edge order.
func (g *Graph) adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.nodes))
	for _, e := range g.edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// Clone returns a deep copy sharing no mutable state with g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:       make([]*Node, 0, len(g.nodes)),
		index:       make(map[string]*Node, len(g.nodes)),
		edges:       slices.Clone(g.edges),
		nextID:      g.nextID,
		generation:  g.generation,
		rootIsArray: g.rootIsArray,
	}
	for _, n := range g.nodes {
		c.insert(n.clone())
	}
	return c
}

// Validate checks that every edge joins existing nodes and that the edges
// are acyclic. It returns ErrDanglingEdge or ErrCycle.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.index[e.Source]; !ok {
			return fmt.Errorf("%w: %s", ErrDanglingEdge, e.ID)
		}
		if _, ok := g.index[e.Target]; !ok {
			return fmt.Errorf("%w: %s", ErrDanglingEdge, e.ID)
		}
	}
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	adj := g.adjacency()
	color := make(map[string]int, len(g.nodes))
	var cycleAt string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, child := range adj[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				cycleAt = child
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, n := range g.nodes {
		if color[n.ID] == white && dfs(n.ID) {
			return fmt.Errorf("%w: through node %s", ErrCycle, cycleAt)
		}
	}
	return nil
}

// reaches reports whether to is reachable from from along edges.
func (g *Graph) reaches(from, to string) bool {
	adj := g.adjacency()
	seen := map[string]bool{}
	stack := []string{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, adj[id]...)
	}
	return false
}

// refresh recomputes IsContainer from the node's current children.
func (g *Graph) refresh(n *Node) {
	n.IsContainer = len(g.Children(n.ID)) > 0
}
