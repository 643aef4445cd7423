// Package render groups the output renderers for flow graphs and JSON values.
//
//   - [nodelink]: Graphviz DOT and SVG node-link diagrams of a flow graph
//   - [tree]: indented text trees of a JSON value
//
// [nodelink]: github.com/matzehuels/jsonflow/pkg/render/nodelink
// [tree]: github.com/matzehuels/jsonflow/pkg/render/tree
package render
