package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

func positions(g *Graph) map[string]Position {
	out := make(map[string]Position, g.NodeCount())
	for _, n := range g.Nodes() {
		out[n.ID] = n.Position
	}
	return out
}

func TestReorganize(t *testing.T) {
	g := build(t, `{"a": 1, "b": [2, 3]}`)
	g.Reorganize(Layout{})

	assert.Equal(t, map[string]Position{
		"n0": {400, 50},
		"n1": {400, 200},
		"n2": {275, 350},
		"n3": {525, 350},
	}, positions(g))
}

func TestReorganizeIsIdempotent(t *testing.T) {
	docs := []string{
		`{"a": 1, "b": [2, 3]}`,
		`[{"x": [1, 2]}, {"y": {"z": [3]}}, 4]`,
		`{"user": {"address": {"city": "Paris"}, "hobbies": ["a", "b", "c"]}}`,
	}
	for _, doc := range docs {
		g := build(t, doc)
		g.Reorganize(Layout{})
		first := positions(g)

		require.NoError(t, g.MoveNode("n0", Position{X: -999, Y: 999}))
		g.Reorganize(Layout{})
		assert.Equal(t, first, positions(g), doc)
	}
}

func TestReorganizeDoesNotChangeValue(t *testing.T) {
	g := build(t, `{"b": [2, 3], "a": 1}`)
	before, err := g.Rebuild()
	require.NoError(t, err)

	g.Reorganize(Layout{HorizontalSpacing: 10, VerticalSpacing: 10})
	after, err := g.Rebuild()
	require.NoError(t, err)
	assert.True(t, jsonvalue.Equal(before, after))
}

func TestReorganizeTerminatesOnCycle(t *testing.T) {
	g := New()
	a, _ := g.AddNode(Node{Kind: jsonvalue.KindObject})
	b, _ := g.AddNode(Node{Kind: jsonvalue.KindObject})
	_, _ = g.AddEdge(a.ID, b.ID)
	_, _ = g.AddEdge(b.ID, a.ID)

	g.Reorganize(Layout{})
	assert.Equal(t, map[string]Position{
		a.ID: {400, 50},
		b.ID: {400, 200},
	}, positions(g))
}

func TestDepthsFirstParentWins(t *testing.T) {
	g := New()
	r1, _ := g.AddNode(Node{Kind: jsonvalue.KindObject})
	mid, _ := g.AddNode(Node{Kind: jsonvalue.KindObject})
	shared, _ := g.AddNode(Node{Kind: jsonvalue.KindNumber, Raw: jsonvalue.Number(1)})
	_, _ = g.AddEdge(r1.ID, mid.ID)
	_, _ = g.AddEdge(mid.ID, shared.ID)
	_, _ = g.AddEdge(r1.ID, shared.ID)

	assert.Equal(t, map[string]int{r1.ID: 0, mid.ID: 1, shared.ID: 2}, g.Depths())
}

func TestReorganizeBumpsGeneration(t *testing.T) {
	g := build(t, `{}`)
	gen := g.Generation()
	g.Reorganize(Layout{})
	assert.Greater(t, g.Generation(), gen)
}
