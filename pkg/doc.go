// Package pkg provides the libraries behind jsonflow, a two-way converter
// between JSON documents and editable node graphs.
//
// # Overview
//
// A JSON document becomes a forest of nodes: every object and array gets a
// node, scalar object members are folded into their parent as inline
// properties, and array elements get nodes of their own. Users edit the
// structure (connect and disconnect nodes, delete them, switch a container
// between array and object) and the graph is turned back into JSON after
// every edit.
//
// # Architecture
//
//	JSON / YAML document
//	         ↓
//	    [jsonvalue] (parse into an order-preserving value)
//	         ↓
//	    [flow] (build, edit, reorganize, rebuild)
//	         ↓
//	    [visualizer] (edit session with change notification)
//	         ↓
//	    [graph] / [render] (graph files, DOT, SVG, text trees)
//
// # Main Packages
//
// [jsonvalue] - JSON values with insertion-ordered objects, structural
// equality and YAML conversion.
//
// [flow] - The node/edge graph: [flow.Build] lays a value out,
// [flow.Graph.Rebuild] reconstructs it, and the mutation methods enforce the
// forest rules (one parent per node, no cycles, scalar nodes have no
// children).
//
// [visualizer] - Owns one graph and the last JSON value handed to or from its
// owner. Structural edits rebuild the value and call OnDataChange only when
// it actually changed.
//
// [graph] - The JSON graph file format used by the CLI and by session stores.
//
// [render] - Output renderers: Graphviz node-link diagrams and text trees.
//
// ## Infrastructure
//
// [pipeline] - parse → build → render, shared by the CLI and the HTTP server,
// with content-addressed caching through [cache].
//
// [cache] - Key/value caching with file, Redis and no-op backends.
//
// [session] - Editing sessions for the HTTP server with memory, file, Redis
// and MongoDB stores.
//
// [server] - HTTP API over sessions, built on chi.
//
// [httputil] - Fetching documents from URLs with retries and caching.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hook interfaces for metrics and tracing.
//
// # Quick Start
//
//	v, _ := jsonvalue.ParseString(`{"user": {"name": "Ada", "tags": ["x"]}}`)
//
//	vz := visualizer.New(visualizer.Options{
//	    OnDataChange: func(v jsonvalue.Value) { fmt.Println(jsonvalue.Format(v)) },
//	})
//	vz.RenderGraph(v)
//
//	// detach the tags array from the user object
//	_ = vz.DeleteEdge(flow.EdgeID("n1", "n2"))
//
// # Testing
//
//	go test ./...
//	go test -run Example ./pkg/...
//
// [jsonvalue]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/jsonvalue
// [flow]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/flow
// [visualizer]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/visualizer
// [graph]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/server
// [httputil]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/jsonflow/pkg/observability
package pkg
