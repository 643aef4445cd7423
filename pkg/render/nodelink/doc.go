// Package nodelink renders flow graphs as node-link diagrams.
//
// Each node becomes a rounded box headed by its key and a summary of its
// content (the scalar for leaves, Array[n] or Object{n} for composites).
// Border colours follow the node's JSON kind. Empty arrays and objects are
// drawn dashed.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{})
//
// With Pinned set, nodes keep the canvas positions computed by the build or
// by [flow.Graph.Reorganize] and Graphviz only routes edges.
//
// # Dependencies
//
// SVG rendering runs in process through [github.com/goccy/go-graphviz].
package nodelink
