// Package graph provides the serialization format for flow graphs.
//
// A [Document] is what jsonflow writes to graph files, returns from the HTTP
// API, stores in sessions and caches. It carries everything needed to turn
// the graph back into JSON: node keys, inline properties, scalar values and
// container modes, plus canvas positions.
//
// # Format
//
//	{
//	  "nodes": [
//	    {"id": "n0", "kind": "object", "inline": [{"key": "a", "value": 1}],
//	     "is_container": true, "container_kind": "object",
//	     "position": {"x": 400, "y": 50}},
//	    {"id": "n1", "key": "b", "kind": "array", "is_container": true,
//	     "container_kind": "array", "position": {"x": 400, "y": 170}}
//	  ],
//	  "edges": [{"id": "en0-n1", "source": "n0", "target": "n1"}]
//	}
//
// Scalar values are embedded as raw JSON, so numbers and strings keep their
// JSON spelling. Only leaf nodes carry "raw".
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("doc.graph.json")  // File → flow.Graph
//	graph.WriteGraphFile(g, "out.graph.json")      // flow.Graph → File
//	data, _ := graph.MarshalGraph(g)               // flow.Graph → []byte
//	doc, _ := graph.UnmarshalDocument(data)        // []byte → Document
//
// Use [FromFlow] and [ToFlow] to convert between the two representations.
package graph
