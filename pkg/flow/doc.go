// Package flow converts JSON values to editable node/edge graphs and back.
//
// # Forward
//
// [Build] lays a JSON value out as a positioned forest. Objects become one
// node each: their scalar members are folded into the node as inline
// properties and only array- or object-valued members spawn child nodes.
// Arrays become a node with one child per element keyed "[i]". A document
// whose root is an array gets no wrapper node; its elements become sibling
// roots and the graph remembers the elision (see [Graph.RootIsArray]).
//
// # Reverse
//
// [Graph.Rebuild] reconstructs a JSON value from the current nodes and edges.
// Roots are the nodes without an incoming edge. A node rebuilds as an array
// or an object according to its container kind, which [Graph.ToggleContainer]
// flips.
//
// # Editing
//
// [Graph.Connect], [Graph.DeleteEdge], [Graph.DeleteNode] and [Graph.MoveNode]
// form the mutation surface handed to an interactive front end. Connect keeps
// the graph a forest: it rejects edges that would give a node a second parent
// or close a cycle.
//
// # Layout
//
// [Graph.Reorganize] recomputes positions from edges alone: each node sits on
// the row of its depth, rows are centred on a fixed canvas midpoint. It is
// idempotent and terminates on graphs with cycles.
//
// # Concurrency
//
// A Graph is owned by one editor and is not safe for concurrent use.
package flow
