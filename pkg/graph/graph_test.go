package graph

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

func TestDocumentRoundTrip(t *testing.T) {
	docs := []string{
		`null`,
		`[]`,
		`[7]`,
		`{"a": 1, "b": [2, 3]}`,
		`{"s": "x\"y", "n": 1.5e3, "t": true, "z": null, "o": {}}`,
		`[{"id": 1}, [2, [3]], "four"]`,
		`{"": {"a": 1}, "b": {"": []}}`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			want := jsonvalue.MustParse(doc)
			g := flow.Build(want, flow.Layout{})

			data, err := MarshalGraph(g)
			require.NoError(t, err)
			back, err := ReadGraph(bytes.NewReader(data))
			require.NoError(t, err)

			assert.Equal(t, g.NodeCount(), back.NodeCount())
			assert.Equal(t, g.Edges(), back.Edges())
			assert.Equal(t, g.RootIsArray(), back.RootIsArray())

			got, err := back.Rebuild()
			require.NoError(t, err)
			assert.True(t, jsonvalue.Equal(want, got), "got %s", jsonvalue.Format(got))
		})
	}
}

func TestDocumentKeepsEditingState(t *testing.T) {
	g := flow.Build(jsonvalue.MustParse(`{"x": 1, "y": 2}`), flow.Layout{})
	root := g.Roots()[0]
	_, err := g.ToggleContainer(root.ID, flow.Layout{})
	require.NoError(t, err)
	require.NoError(t, g.MoveNode(root.ID, flow.Position{X: 12, Y: 34}))

	doc, err := FromFlow(g)
	require.NoError(t, err)
	assert.Equal(t, "array", doc.Nodes[0].Kind)
	assert.Equal(t, "array", doc.Nodes[0].ContainerKind)
	assert.Equal(t, "x", doc.Nodes[1].OriginKey)
	assert.Equal(t, json.RawMessage("1"), doc.Nodes[1].Raw)
	assert.Empty(t, doc.Nodes[0].Raw, "composite nodes carry no raw value")

	back, err := ToFlow(doc)
	require.NoError(t, err)
	n, _ := back.Node(root.ID)
	assert.Equal(t, flow.Position{X: 12, Y: 34}, n.Position)

	// Toggling the loaded graph back restores the original keys.
	_, err = back.ToggleContainer(root.ID, flow.Layout{})
	require.NoError(t, err)
	v, err := back.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":2}`, jsonvalue.Format(v))
}

func TestDocumentKeyedFlags(t *testing.T) {
	g := flow.Build(jsonvalue.MustParse(`{"": {"": 1}}`), flow.Layout{})
	child := g.Nodes()[1]
	_, err := g.ToggleContainer(child.ID, flow.Layout{})
	require.NoError(t, err)

	doc, err := FromFlow(g)
	require.NoError(t, err)
	assert.False(t, doc.Nodes[0].Keyed)
	assert.True(t, doc.Nodes[1].Keyed)
	assert.True(t, doc.Nodes[2].OriginKeyed)

	back, err := ToFlow(doc)
	require.NoError(t, err)
	_, err = back.ToggleContainer(child.ID, flow.Layout{})
	require.NoError(t, err)
	v, err := back.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, `{"":{"":1}}`, jsonvalue.Format(v))
}

func TestToFlowInfersKeyedFromKey(t *testing.T) {
	back, err := ToFlow(Document{Nodes: []Node{
		{ID: "n0", Kind: "object"},
		{ID: "n1", Key: "k", OriginKey: "was", Kind: "number", Raw: json.RawMessage("1")},
	}})
	require.NoError(t, err)

	root, _ := back.Node("n0")
	leaf, _ := back.Node("n1")
	assert.False(t, root.Keyed)
	assert.True(t, leaf.Keyed)
	assert.True(t, leaf.OriginKeyed)
}

func TestToFlowErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{
			name: "UnknownKind",
			doc:  Document{Nodes: []Node{{ID: "n0", Kind: "tuple"}}},
			want: "unknown kind",
		},
		{
			name: "DuplicateNode",
			doc:  Document{Nodes: []Node{{ID: "n0", Kind: "null"}, {ID: "n0", Kind: "null"}}},
			want: "duplicate node",
		},
		{
			name: "MissingEndpoint",
			doc: Document{
				Nodes: []Node{{ID: "n0", Kind: "object"}},
				Edges: []Edge{{Source: "n0", Target: "n9"}},
			},
			want: "node not found",
		},
		{
			name: "BadRaw",
			doc:  Document{Nodes: []Node{{ID: "n0", Kind: "number", Raw: json.RawMessage("{")}}},
			want: "raw",
		},
		{
			name: "BadInline",
			doc: Document{Nodes: []Node{{ID: "n0", Kind: "object",
				Inline: []Inline{{Key: "a", Value: json.RawMessage("nope")}}}}},
			want: "property a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToFlow(tt.doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestToFlowLoadsCycles(t *testing.T) {
	doc := Document{
		Nodes: []Node{{ID: "a", Kind: "object"}, {ID: "b", Kind: "object"}},
		Edges: []Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	}
	g, err := ToFlow(doc)
	require.NoError(t, err)

	_, err = g.Rebuild()
	assert.ErrorIs(t, err, flow.ErrCycle)
}

func TestToFlowMissingRawIsNull(t *testing.T) {
	g, err := ToFlow(Document{Nodes: []Node{{ID: "n0", Kind: "null"}}})
	require.NoError(t, err)
	v, err := g.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, jsonvalue.Null{}, v)
}

func TestGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.graph.json")
	g := flow.Build(jsonvalue.MustParse(`{"user": {"name": "Ada"}}`), flow.Layout{})

	require.NoError(t, WriteGraphFile(g, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	doc, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)
	assert.Equal(t, "en0-n1", doc.Edges[0].ID)

	back, err := ReadGraphFile(path)
	require.NoError(t, err)
	v, err := back.Rebuild()
	require.NoError(t, err)
	assert.Equal(t, `{"user":{"name":"Ada"}}`, jsonvalue.Format(v))

	_, err = ReadGraphFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestReadGraphInvalidJSON(t *testing.T) {
	_, err := ReadGraph(strings.NewReader("{"))
	assert.ErrorContains(t, err, "decode")

	_, err = UnmarshalDocument([]byte("nope"))
	assert.Error(t, err)
}
