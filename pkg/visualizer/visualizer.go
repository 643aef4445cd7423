package visualizer

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/observability"
)

// Options configures a Visualizer. The zero value is usable.
type Options struct {
	// BuildLayout spaces nodes placed by RenderGraph and Toggle.
	BuildLayout flow.Layout
	// ReorganizeLayout is used by Reorganize.
	ReorganizeLayout flow.Layout
	// OnDataChange receives every reconstructed value that differs from the
	// last one. It is called without the visualizer's lock held.
	OnDataChange func(jsonvalue.Value)
	Logger       *log.Logger
}

// Visualizer holds one graph and the last JSON value exchanged with its
// owner.
type Visualizer struct {
	mu      sync.Mutex
	opts    Options
	logger  *log.Logger
	graph   *flow.Graph
	last    jsonvalue.Value
	hasLast bool
}

// New returns a visualizer with an empty graph.
func New(opts Options) *Visualizer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Visualizer{
		opts:   opts,
		logger: logger,
		graph:  flow.New(),
	}
}

// RenderGraph replaces the graph with one built from v and records v as the
// last known value. It returns a copy of the new graph.
func (vz *Visualizer) RenderGraph(v jsonvalue.Value) *flow.Graph {
	vz.mu.Lock()
	defer vz.mu.Unlock()

	vz.graph = flow.Build(v, vz.opts.BuildLayout)
	vz.last, vz.hasLast = v, true
	vz.logger.Debug("rendered graph",
		"nodes", vz.graph.NodeCount(),
		"edges", vz.graph.EdgeCount(),
		"root_is_array", vz.graph.RootIsArray())
	return vz.graph.Clone()
}

// SetData is an alias for RenderGraph that discards the returned graph.
func (vz *Visualizer) SetData(v jsonvalue.Value) {
	vz.RenderGraph(v)
}

// Restore adopts a previously saved graph. The value it rebuilds to becomes
// the last known value, so restoring never notifies.
func (vz *Visualizer) Restore(g *flow.Graph) error {
	v, err := g.Rebuild()
	if err != nil {
		return wrap(err, "restore graph")
	}

	vz.mu.Lock()
	defer vz.mu.Unlock()
	vz.graph = g.Clone()
	vz.last, vz.hasLast = v, true
	return nil
}

// Graph returns a copy of the current graph.
func (vz *Visualizer) Graph() *flow.Graph {
	vz.mu.Lock()
	defer vz.mu.Unlock()
	return vz.graph.Clone()
}

// Generation returns the current graph's mutation counter.
func (vz *Visualizer) Generation() uint64 {
	vz.mu.Lock()
	defer vz.mu.Unlock()
	return vz.graph.Generation()
}

// Value reconstructs the JSON value of the current graph.
func (vz *Visualizer) Value() (jsonvalue.Value, error) {
	vz.mu.Lock()
	defer vz.mu.Unlock()
	v, err := vz.graph.Rebuild()
	if err != nil {
		return nil, wrap(err, "rebuild")
	}
	return v, nil
}

// Last returns the last value exchanged with the owner, or nil before the
// first RenderGraph or edit.
func (vz *Visualizer) Last() jsonvalue.Value {
	vz.mu.Lock()
	defer vz.mu.Unlock()
	return vz.last
}

// =============================================================================
// Edits
// =============================================================================

// Connect makes target a child of source. See [flow.Graph.Connect] for the
// rules an edge must satisfy.
func (vz *Visualizer) Connect(source, target string) (flow.Edge, error) {
	var e flow.Edge
	err := vz.edit("connect", func(g *flow.Graph) (bool, error) {
		var err error
		e, err = g.Connect(source, target)
		return err == nil, err
	})
	return e, err
}

// DeleteEdge removes an edge; its target becomes a root.
func (vz *Visualizer) DeleteEdge(edgeID string) error {
	return vz.edit("delete_edge", func(g *flow.Graph) (bool, error) {
		return true, g.DeleteEdge(edgeID)
	})
}

// DeleteNode removes a node and its edges.
func (vz *Visualizer) DeleteNode(id string) error {
	return vz.edit("delete_node", func(g *flow.Graph) (bool, error) {
		return true, g.DeleteNode(id)
	})
}

// Toggle flips a node between array and object representation. It reports
// whether the node changed; toggling a node without content is a no-op.
func (vz *Visualizer) Toggle(id string) (bool, error) {
	var changed bool
	err := vz.edit("toggle", func(g *flow.Graph) (bool, error) {
		var err error
		changed, err = g.ToggleContainer(id, vz.opts.BuildLayout)
		return changed, err
	})
	return changed, err
}

// Move sets a node's position. Positions do not affect the JSON value, so
// Move never notifies.
func (vz *Visualizer) Move(id string, p flow.Position) error {
	vz.mu.Lock()
	defer vz.mu.Unlock()
	if err := vz.graph.MoveNode(id, p); err != nil {
		return wrap(err, "move %s", id)
	}
	return nil
}

// Reorganize recomputes every node position from the edges.
func (vz *Visualizer) Reorganize() {
	vz.mu.Lock()
	defer vz.mu.Unlock()
	vz.graph.Reorganize(vz.opts.ReorganizeLayout)
	vz.logger.Debug("reorganized layout", "nodes", vz.graph.NodeCount())
}

// edit applies fn to the graph and, when fn reports a change, reconstructs
// the value and notifies the owner if it differs from the last one.
func (vz *Visualizer) edit(op string, fn func(*flow.Graph) (bool, error)) error {
	vz.mu.Lock()
	changed, err := fn(vz.graph)
	observability.Editor().OnEdit(op, vz.graph.NodeCount(), vz.graph.EdgeCount(), err)
	if err != nil {
		vz.mu.Unlock()
		vz.logger.Debug("edit rejected", "op", op, "err", err)
		return wrap(err, "%s", op)
	}
	if !changed {
		vz.mu.Unlock()
		return nil
	}

	v, emit, err := vz.graphChanged()
	vz.mu.Unlock()
	if err != nil {
		vz.logger.Warn("cannot rebuild value", "op", op, "err", err)
		return wrap(err, "%s: rebuild", op)
	}

	observability.Editor().OnDataChange(emit)
	if emit && vz.opts.OnDataChange != nil {
		vz.opts.OnDataChange(v)
	}
	return nil
}

// graphChanged rebuilds the value and records it when it differs from the
// last one. Callers hold vz.mu.
func (vz *Visualizer) graphChanged() (jsonvalue.Value, bool, error) {
	v, err := vz.graph.Rebuild()
	if err != nil {
		return nil, false, err
	}
	if vz.hasLast && jsonvalue.Equal(vz.last, v) {
		vz.logger.Debug("value unchanged", "generation", vz.graph.Generation())
		return v, false, nil
	}
	vz.last, vz.hasLast = v, true
	vz.logger.Debug("value changed", "generation", vz.graph.Generation())
	return v, true, nil
}

// =============================================================================
// Error Codes
// =============================================================================

// wrap attaches the structured error code matching a flow error.
func wrap(err error, format string, args ...any) error {
	return errs.Wrap(codeFor(err), err, format, args...)
}

func codeFor(err error) errs.Code {
	switch {
	case errors.Is(err, flow.ErrNodeNotFound):
		return errs.ErrCodeNodeNotFound
	case errors.Is(err, flow.ErrEdgeNotFound):
		return errs.ErrCodeEdgeNotFound
	case errors.Is(err, flow.ErrCycle):
		return errs.ErrCodeCycle
	case errors.Is(err, flow.ErrDuplicateEdge),
		errors.Is(err, flow.ErrDuplicateNode),
		errors.Is(err, flow.ErrSelfLoop),
		errors.Is(err, flow.ErrLeafSource),
		errors.Is(err, flow.ErrMultipleParents):
		return errs.ErrCodeConflict
	case errors.Is(err, flow.ErrDanglingEdge):
		return errs.ErrCodeInvalidInput
	default:
		return errs.ErrCodeInternal
	}
}
