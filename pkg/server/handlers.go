package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/pipeline"
	"github.com/matzehuels/jsonflow/pkg/session"
	"github.com/matzehuels/jsonflow/pkg/visualizer"
)

// EditResult is the response to every graph edit.
type EditResult struct {
	Session *session.Session `json:"session"`
	// Changed reports whether the edit changed the JSON value.
	Changed bool        `json:"changed"`
	Edge    *graph.Edge `json:"edge,omitempty"`
	Toggled *bool       `json:"toggled,omitempty"`
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateSession builds a session from the posted document. The query
// parameters format=yaml and reorganize=true are honored.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	opts, err := s.buildOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := s.runner.Build(r.Context(), body, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	vz := visualizer.New(s.visualizerOptions(nil))
	if err := vz.Restore(g); err != nil {
		s.writeError(w, err)
		return
	}
	sess := session.New(s.ttl)
	sess.Name = r.URL.Query().Get("name")
	if err := s.save(r, sess, vz); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("created session", "id", sess.ID, "nodes", g.NodeCount())
	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateID("session ID", id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetJSON returns the JSON value rebuilt from the session's graph.
func (s *Server) handleGetJSON(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, graph.FormatJSON)
}

// handlePutJSON replaces the session's graph with one built from the posted
// document.
func (s *Server) handlePutJSON(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := pipeline.Parse(r.Context(), body, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.edit(w, r, func(vz *visualizer.Visualizer, res *EditResult) error {
		res.Changed = !equalLast(vz, v)
		vz.SetData(v)
		return nil
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidJSON, err, "decode edge"))
		return
	}
	for _, id := range []string{req.Source, req.Target} {
		if err := errs.ValidateID("node ID", id); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.editStatus(w, r, http.StatusCreated, func(vz *visualizer.Visualizer, res *EditResult) error {
		e, err := vz.Connect(req.Source, req.Target)
		if err != nil {
			return err
		}
		res.Edge = &graph.Edge{ID: e.ID, Source: e.Source, Target: e.Target}
		return nil
	})
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeId")
	if err := errs.ValidateID("edge ID", edgeID); err != nil {
		s.writeError(w, err)
		return
	}
	s.edit(w, r, func(vz *visualizer.Visualizer, res *EditResult) error {
		return vz.DeleteEdge(edgeID)
	})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	s.edit(w, r, func(vz *visualizer.Visualizer, res *EditResult) error {
		toggled, err := vz.Toggle(nodeID)
		res.Toggled = &toggled
		return err
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var pos graph.Position
	if err := json.Unmarshal(body, &pos); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidJSON, err, "decode position"))
		return
	}
	s.edit(w, r, func(vz *visualizer.Visualizer, res *EditResult) error {
		return vz.Move(nodeID, flow.Position{X: pos.X, Y: pos.Y})
	})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID, ok := s.nodeID(w, r)
	if !ok {
		return
	}
	s.edit(w, r, func(vz *visualizer.Visualizer, res *EditResult) error {
		return vz.DeleteNode(nodeID)
	})
}

func (s *Server) handleReorganize(w http.ResponseWriter, r *http.Request) {
	s.edit(w, r, func(vz *visualizer.Visualizer, res *EditResult) error {
		vz.Reorganize()
		return nil
	})
}

// handleRender serves the graph rendered in format. The query
// parameters detailed=true and pinned=true are honored.
func (s *Server) handleRender(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, format)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) {
	sess, err := s.load(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	g, err := graph.ToFlow(sess.Graph)
	if err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "decode graph"))
		return
	}
	opts := pipeline.Options{
		Formats:  []string{format},
		Detailed: queryBool(r, "detailed"),
		Pinned:   queryBool(r, "pinned"),
	}
	artifacts, err := s.runner.Render(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Write(artifacts[format])
}

// =============================================================================
// Helpers
// =============================================================================

type editFunc func(vz *visualizer.Visualizer, res *EditResult) error

func (s *Server) edit(w http.ResponseWriter, r *http.Request, fn editFunc) {
	s.editStatus(w, r, http.StatusOK, fn)
}

// editStatus runs fn against the session's visualizer under the session
// lock and stores the result.
func (s *Server) editStatus(w http.ResponseWriter, r *http.Request, status int, fn editFunc) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateID("session ID", id); err != nil {
		s.writeError(w, err)
		return
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res := &EditResult{Session: sess}
	vz, err := sess.Visualizer(s.visualizerOptions(func() { res.Changed = true }))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := fn(vz, res); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r, sess, vz); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, status, res)
}

func (s *Server) save(r *http.Request, sess *session.Session, vz *visualizer.Visualizer) error {
	if err := sess.Capture(vz); err != nil {
		return err
	}
	sess.Touch(s.ttl)
	return s.store.Set(r.Context(), sess)
}

func (s *Server) load(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if err := errs.ValidateID("session ID", id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) nodeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "nodeId")
	if err := errs.ValidateID("node ID", id); err != nil {
		s.writeError(w, err)
		return "", false
	}
	return id, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Server) buildOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		InputFormat: r.URL.Query().Get("format"),
		Reorganize:  queryBool(r, "reorganize"),
		Layout:      s.buildLayout,
		Logger:      s.logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) visualizerOptions(onChange func()) visualizer.Options {
	opts := visualizer.Options{
		BuildLayout:      s.buildLayout,
		ReorganizeLayout: s.reorganizeLayout,
		Logger:           s.logger,
	}
	if onChange != nil {
		opts.OnDataChange = func(jsonvalue.Value) { onChange() }
	}
	return opts
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func equalLast(vz *visualizer.Visualizer, v jsonvalue.Value) bool {
	return jsonvalue.Equal(vz.Last(), v)
}
