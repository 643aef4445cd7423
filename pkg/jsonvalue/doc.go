// Package jsonvalue provides a closed sum type for JSON documents.
//
// A [Value] is exactly one of [Null], [Bool], [Number], [String], [Array] or
// [*Object]. Objects keep their keys in insertion order so a document can be
// re-serialized in the order it was read.
//
// # Parsing and Encoding
//
// [Parse] reads JSON text with github.com/tidwall/gjson, which walks object
// members in document order. [Marshal] produces compact JSON and
// [MarshalIndent] pretty-prints it with github.com/tidwall/pretty:
//
//	v, err := jsonvalue.Parse([]byte(`{"b": 1, "a": [true, null]}`))
//	out, _ := jsonvalue.MarshalIndent(v) // keys stay b, a
//
// Every concrete type implements json.Marshaler, so values can be embedded in
// structs passed to encoding/json.
//
// # Comparison
//
// [Equal] compares two values structurally. Object key order is ignored:
// two objects are equal when they hold the same keys mapped to equal values.
//
// # YAML
//
// [FromYAML] and [ToYAML] bridge to YAML through gopkg.in/yaml.v3 nodes so
// mapping order survives the conversion.
package jsonvalue
