package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

// {"list": [1], "other": {"x": 1}} builds n0 (root), n1 (list), n2 (1), n3 (other).
const mutateDoc = `{"list": [1], "other": {"x": 1}}`

func TestConnectIntoArray(t *testing.T) {
	g := build(t, mutateDoc)
	require.NoError(t, g.DeleteEdge(EdgeID("n0", "n3")))
	assert.Len(t, g.Roots(), 2)

	e, err := g.Connect("n1", "n3")
	require.NoError(t, err)
	assert.Equal(t, Edge{ID: "en1-n3", Source: "n1", Target: "n3"}, e)

	other, _ := g.Node("n3")
	assert.Equal(t, "[1]", other.Key)
	assert.Equal(t, `{"list":[1,{"x":1}]}`, rebuilt(t, g))
}

func TestConnectIntoObject(t *testing.T) {
	// n0 (root), n1 ("a"), n2 ("").
	g := build(t, `{"a": {}, "": {"k": 1}}`)
	require.NoError(t, g.DeleteEdge(EdgeID("n0", "n2")))

	_, err := g.Connect("n1", "n2")
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"":{"k":1}}}`, rebuilt(t, g))

	loose, err := g.AddNode(Node{Kind: jsonvalue.KindObject, Inline: []InlineProperty{{Key: "b", Value: jsonvalue.Bool(true)}}})
	require.NoError(t, err)
	_, err = g.Connect("n0", loose.ID)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"":{"k":1}},"`+loose.ID+`":{"b":true}}`, rebuilt(t, g))
}

func TestConnectRootArrayElements(t *testing.T) {
	g := build(t, `[{"a": 1}, {"b": 2}]`)
	_, err := g.Connect("n0", "n1")
	require.NoError(t, err)

	first, _ := g.Node("n0")
	assert.True(t, first.IsContainer)
	assert.Equal(t, `[{"a":1,"[1]":{"b":2}}]`, rebuilt(t, g))
}

func TestConnectRejects(t *testing.T) {
	tests := []struct {
		name           string
		source, target string
		want           error
	}{
		{"UnknownSource", "nx", "n1", ErrNodeNotFound},
		{"UnknownTarget", "n0", "nx", ErrNodeNotFound},
		{"SelfLoop", "n1", "n1", ErrSelfLoop},
		{"Duplicate", "n0", "n1", ErrDuplicateEdge},
		{"LeafSource", "n2", "n3", ErrLeafSource},
		{"SecondParent", "n3", "n2", ErrMultipleParents},
		{"Cycle", "n1", "n0", ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, mutateDoc)
			gen := g.Generation()
			edges := g.EdgeCount()

			_, err := g.Connect(tt.source, tt.target)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, gen, g.Generation())
			assert.Equal(t, edges, g.EdgeCount())
			assert.NoError(t, g.Validate())
		})
	}
}

func TestDeleteEdge(t *testing.T) {
	g := build(t, mutateDoc)

	assert.ErrorIs(t, g.DeleteEdge("en9-n8"), ErrEdgeNotFound)

	require.NoError(t, g.DeleteEdge(EdgeID("n1", "n2")))
	list, _ := g.Node("n1")
	assert.False(t, list.IsContainer)
	assert.Equal(t, `[{"list":[],"other":{"x":1}},1]`, rebuilt(t, g))
}

func TestDeleteNode(t *testing.T) {
	g := build(t, mutateDoc)

	assert.ErrorIs(t, g.DeleteNode("nx"), ErrNodeNotFound)

	require.NoError(t, g.DeleteNode("n1"))
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Empty(t, g.Parents("n2"))
	assert.Equal(t, `[{"other":{"x":1}},1]`, rebuilt(t, g))

	require.NoError(t, g.DeleteNode("n3"))
	root, _ := g.Node("n0")
	assert.False(t, root.IsContainer)
}

func TestMoveNode(t *testing.T) {
	g := build(t, mutateDoc)
	before := rebuilt(t, g)

	require.NoError(t, g.MoveNode("n2", Position{X: 1, Y: 2}))
	n, _ := g.Node("n2")
	assert.Equal(t, Position{X: 1, Y: 2}, n.Position)
	assert.Equal(t, before, rebuilt(t, g))

	assert.ErrorIs(t, g.MoveNode("nx", Position{}), ErrNodeNotFound)
}

func TestNewNodeIDSkipsTaken(t *testing.T) {
	g := New()
	_, err := g.AddNode(Node{ID: "n0"})
	require.NoError(t, err)
	_, err = g.AddNode(Node{ID: "n0"})
	assert.ErrorIs(t, err, ErrDuplicateNode)

	n, err := g.AddNode(Node{})
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
}

func TestCloneIsIndependent(t *testing.T) {
	g := build(t, mutateDoc)
	c := g.Clone()

	require.NoError(t, c.DeleteNode("n1"))
	n, _ := c.Node("n0")
	n.Inline = nil

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, `{"list":[1],"other":{"x":1}}`, rebuilt(t, g))
}
