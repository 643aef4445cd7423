package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
)

func build(doc string) *flow.Graph {
	return flow.Build(jsonvalue.MustParse(doc), flow.Layout{})
}

func TestToDOT(t *testing.T) {
	g := build(`{"a": 1, "b": ["x", null], "e": {}}`)
	dot := ToDOT(g, Options{Detailed: true})

	assert.True(t, strings.HasPrefix(dot, "digraph G {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `"n0" [label="root\nObject{3}\na: 1", color="#6366f1"];`)
	assert.Contains(t, dot, `"n1" [label="b\nArray[2]", color="#a855f7"];`)
	assert.Contains(t, dot, `"n2" [label="[0]\n\"x\"", color="#10b981"];`)
	assert.Contains(t, dot, `"n3" [label="[1]\nnull", color="#6b7280"];`)
	assert.Contains(t, dot, `"n4" [label="e\nObject{0}", color="#6366f1", style="rounded,filled,dashed"];`)
	assert.Contains(t, dot, `"n0" -> "n1";`)
	assert.Contains(t, dot, `"n1" -> "n2";`)
	assert.Equal(t, 4, strings.Count(dot, " -> "))
}

func TestToDOTCompactLabels(t *testing.T) {
	dot := ToDOT(build(`{"a": 1}`), Options{})
	assert.Contains(t, dot, `label="root\nObject{1}"`)
	assert.NotContains(t, dot, "a: 1")
}

func TestToDOTPinned(t *testing.T) {
	dot := ToDOT(build(`[1, 2]`), Options{Pinned: true})
	assert.Contains(t, dot, `pos="300,-50!"`)
	assert.Contains(t, dot, `pos="500,-50!"`)
}

func TestRenderSVG(t *testing.T) {
	svg, err := Render(context.Background(), build(`{"a": 1, "b": [2, 3]}`), Options{Detailed: true})
	require.NoError(t, err)
	assert.Contains(t, string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)
	assert.Contains(t, string(svg), "</svg>")
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), "digraph {", Options{})
	assert.Error(t, err)
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`, out)

	noBox := []byte(`<svg><g/></svg>`)
	assert.Equal(t, noBox, normalizeViewBox(noBox))
}
