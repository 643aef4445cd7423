package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

// =============================================================================
// Constants
// =============================================================================

// Output formats understood by the CLI and the HTTP API.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatGraph = "graph"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
	FormatTree  = "tree"
)

// =============================================================================
// Document - Flow Graph Serialization
// =============================================================================

// Document is the canonical serialization format for flow graphs.
// It is used for graph files, API responses, session storage and caching.
//
// Node and edge order is preserved: node order decides the order of roots
// when the graph is turned back into JSON.
type Document struct {
	Nodes       []Node `json:"nodes" bson:"nodes"`
	Edges       []Edge `json:"edges" bson:"edges"`
	RootIsArray bool   `json:"root_is_array,omitempty" bson:"root_is_array,omitempty"`
}

// =============================================================================
// Node, Edge, Inline
// =============================================================================

// Node is one serialized graph node. Scalar values are stored as raw JSON.
type Node struct {
	ID            string          `json:"id" bson:"id"`
	Key           string          `json:"key,omitempty" bson:"key,omitempty"`
	Keyed         bool            `json:"keyed,omitempty" bson:"keyed,omitempty"`
	OriginKey     string          `json:"origin_key,omitempty" bson:"origin_key,omitempty"`
	OriginKeyed   bool            `json:"origin_keyed,omitempty" bson:"origin_keyed,omitempty"`
	Kind          string          `json:"kind" bson:"kind"`
	Inline        []Inline        `json:"inline,omitempty" bson:"inline,omitempty"`
	Raw           json.RawMessage `json:"raw,omitempty" bson:"raw,omitempty"`
	IsContainer   bool            `json:"is_container,omitempty" bson:"is_container,omitempty"`
	ContainerKind string          `json:"container_kind,omitempty" bson:"container_kind,omitempty"`
	Position      Position        `json:"position" bson:"position"`
}

// Inline is a scalar property folded into its node.
type Inline struct {
	Key   string          `json:"key" bson:"key"`
	Value json.RawMessage `json:"value" bson:"value"`
}

// Position is a canvas location.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Edge is a parent→child link.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// =============================================================================
// flow.Graph ↔ Document Conversion
// =============================================================================

// FromFlow converts a flow graph to its serialization format.
func FromFlow(g *flow.Graph) (Document, error) {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Document{
		Nodes:       make([]Node, len(nodes)),
		Edges:       make([]Edge, len(edges)),
		RootIsArray: g.RootIsArray(),
	}

	for i, n := range nodes {
		node, err := nodeFromFlow(n)
		if err != nil {
			return Document{}, fmt.Errorf("node %s: %w", n.ID, err)
		}
		out.Nodes[i] = node
	}
	for i, e := range edges {
		out.Edges[i] = Edge{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	return out, nil
}

// ToFlow converts a Document to a flow graph. Node IDs are kept; edge IDs
// are recomputed from their endpoints.
//
// Edges are loaded as stored, without the connection policy, so a
// hand-edited document may hold a cycle. [flow.Graph.Rebuild] reports it.
func ToFlow(d Document) (*flow.Graph, error) {
	g := flow.New()
	for _, nd := range d.Nodes {
		n, err := nodeToFlow(nd)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.ID, err)
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nd.ID, err)
		}
	}
	for _, e := range d.Edges {
		if _, err := g.AddEdge(e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", e.Source, e.Target, err)
		}
	}
	g.SetRootIsArray(d.RootIsArray)
	return g, nil
}

// UnmarshalDocument deserializes JSON bytes to a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, err
	}
	return d, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromFlow(n *flow.Node) (Node, error) {
	node := Node{
		ID:          n.ID,
		Key:         n.Key,
		Keyed:       n.Keyed,
		OriginKey:   n.OriginKey,
		OriginKeyed: n.OriginKeyed,
		Kind:        n.Kind.String(),
		IsContainer: n.IsContainer,
		Position:    Position{X: n.Position.X, Y: n.Position.Y},
	}
	if n.ContainerKind.IsComposite() {
		node.ContainerKind = n.ContainerKind.String()
	}
	// Composite nodes rebuild from their children; only leaves need Raw.
	if !n.Kind.IsComposite() {
		raw, err := jsonvalue.Marshal(n.Raw)
		if err != nil {
			return Node{}, err
		}
		node.Raw = raw
	}
	for _, p := range n.Inline {
		raw, err := jsonvalue.Marshal(p.Value)
		if err != nil {
			return Node{}, fmt.Errorf("property %s: %w", p.Key, err)
		}
		node.Inline = append(node.Inline, Inline{Key: p.Key, Value: raw})
	}
	return node, nil
}

func nodeToFlow(nd Node) (flow.Node, error) {
	kind, err := jsonvalue.ParseKind(nd.Kind)
	if err != nil {
		return flow.Node{}, err
	}
	n := flow.Node{
		ID:          nd.ID,
		Key:         nd.Key,
		Keyed:       nd.Keyed || nd.Key != "",
		OriginKey:   nd.OriginKey,
		OriginKeyed: nd.OriginKeyed || nd.OriginKey != "",
		Kind:        kind,
		IsContainer: nd.IsContainer,
		Position:    flow.Position{X: nd.Position.X, Y: nd.Position.Y},
	}
	if nd.ContainerKind != "" {
		if n.ContainerKind, err = jsonvalue.ParseKind(nd.ContainerKind); err != nil {
			return flow.Node{}, err
		}
	}
	if len(nd.Raw) > 0 {
		if n.Raw, err = jsonvalue.Parse(nd.Raw); err != nil {
			return flow.Node{}, fmt.Errorf("raw: %w", err)
		}
	} else if !kind.IsComposite() {
		n.Raw = jsonvalue.Null{}
	}
	for _, p := range nd.Inline {
		v, err := jsonvalue.Parse(p.Value)
		if err != nil {
			return flow.Node{}, fmt.Errorf("property %s: %w", p.Key, err)
		}
		n.Inline = append(n.Inline, flow.InlineProperty{Key: p.Key, Value: v})
	}
	return n, nil
}
