// Package visualizer owns one editable flow graph and keeps it in sync with
// an externally owned JSON value.
//
// The surrounding application drives a [Visualizer] with two kinds of
// events. When the JSON value changes upstream it calls
// [Visualizer.RenderGraph], which rebuilds the whole graph from scratch.
// When the user edits the graph (connect, delete, toggle) the visualizer
// reconstructs the JSON value and hands it to the OnDataChange callback.
//
// The callback only fires when the reconstructed value differs from the last
// value seen in either direction. Without that guard an upstream listener
// that re-renders on every change would loop forever.
//
// Dragging ([Visualizer.Move]) and [Visualizer.Reorganize] only touch
// positions and never notify.
//
// A Visualizer is safe for concurrent use; edits are serialized.
package visualizer
