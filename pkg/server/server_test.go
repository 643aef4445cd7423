package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/session"
)

const doc = `{"list": [1], "other": {"x": 1}}`

func newTestServer() *Server {
	return New(session.NewMemoryStore(0), nil, log.New(io.Discard))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func create(t *testing.T, h http.Handler, body string) *session.Session {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*session.Session](t, rec)
}

func value(t *testing.T, h http.Handler, id string) jsonvalue.Value {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/sessions/"+id+"/json", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	v, err := jsonvalue.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) errs.Code {
	t.Helper()
	return decode[errorBody](t, rec).Error.Code
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAndGetSession(t *testing.T) {
	s := newTestServer()
	sess := create(t, s, doc)

	assert.NotEmpty(t, sess.ID)
	assert.Len(t, sess.Graph.Nodes, 4)
	assert.Len(t, sess.Graph.Edges, 2)
	assert.JSONEq(t, doc, string(sess.Value))

	rec := do(t, s, http.MethodGet, "/sessions/"+sess.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[*session.Session](t, rec)
	assert.Equal(t, sess.Graph, got.Graph)

	assert.True(t, jsonvalue.Equal(jsonvalue.MustParse(doc), value(t, s, sess.ID)))
}

func TestCreateSessionFromYAML(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/sessions?format=yaml&reorganize=true", "a: [1, 2]\n")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[*session.Session](t, rec)
	assert.JSONEq(t, `{"a":[1,2]}`, string(sess.Value))
	// reorganized spacing
	assert.Equal(t, graph.Position{X: 400, Y: 200}, sess.Graph.Nodes[1].Position)
}

func TestCreateSessionErrors(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/sessions", `{"a":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrCodeInvalidJSON, errorCode(t, rec))

	rec = do(t, s, http.MethodPost, "/sessions?format=xml", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrCodeInvalidFormat, errorCode(t, rec))

	small := New(session.NewMemoryStore(0), nil, log.New(io.Discard), WithMaxBodyBytes(4))
	rec = do(t, small, http.MethodPost, "/sessions", `[1, 2, 3]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrCodeInvalidInput, errorCode(t, rec))
}

func TestSessionLookupErrors(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.ErrCodeSessionNotFound, errorCode(t, rec))

	rec = do(t, s, http.MethodGet, "/sessions/-bad", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.ErrCodeInvalidID, errorCode(t, rec))

	rec = do(t, s, http.MethodPost, "/sessions/missing/reorganize", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer()
	sess := create(t, s, doc)

	rec := do(t, s, http.MethodDelete, "/sessions/"+sess.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/sessions/"+sess.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditSequence(t *testing.T) {
	s := newTestServer()
	id := create(t, s, doc).ID
	base := "/sessions/" + id

	// n3 ("other") already has a parent.
	rec := do(t, s, http.MethodPost, base+"/edges", `{"source":"n1","target":"n3"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errs.ErrCodeConflict, errorCode(t, rec))

	rec = do(t, s, http.MethodDelete, base+"/edges/en0-n3", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[EditResult](t, rec)
	assert.True(t, res.Changed)
	assert.Len(t, res.Session.Graph.Edges, 1)
	assert.True(t, jsonvalue.Equal(jsonvalue.MustParse(`[{"list": [1]}, {"x": 1}]`), value(t, s, id)))

	rec = do(t, s, http.MethodPost, base+"/edges", `{"source":"n1","target":"n3"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res = decode[EditResult](t, rec)
	assert.True(t, res.Changed)
	require.NotNil(t, res.Edge)
	assert.Equal(t, graph.Edge{ID: "en1-n3", Source: "n1", Target: "n3"}, *res.Edge)
	assert.True(t, jsonvalue.Equal(jsonvalue.MustParse(`{"list": [1, {"x": 1}]}`), value(t, s, id)))

	rec = do(t, s, http.MethodPost, base+"/nodes/n1/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decode[EditResult](t, rec)
	require.NotNil(t, res.Toggled)
	assert.True(t, *res.Toggled)
	assert.True(t, res.Changed)
	list, ok := value(t, s, id).(*jsonvalue.Object).Get("list")
	require.True(t, ok)
	assert.Equal(t, jsonvalue.KindObject, jsonvalue.Classify(list))

	rec = do(t, s, http.MethodPut, base+"/nodes/n2/position", `{"x": 1, "y": 2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decode[EditResult](t, rec)
	assert.False(t, res.Changed)
	for _, n := range res.Session.Graph.Nodes {
		if n.ID == "n2" {
			assert.Equal(t, graph.Position{X: 1, Y: 2}, n.Position)
		}
	}

	rec = do(t, s, http.MethodPost, base+"/reorganize", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[EditResult](t, rec).Changed)

	rec = do(t, s, http.MethodDelete, base+"/nodes/n2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[EditResult](t, rec)
	assert.True(t, res.Changed)
	assert.Len(t, res.Session.Graph.Nodes, 3)

	rec = do(t, s, http.MethodDelete, base+"/nodes/n9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.ErrCodeNodeNotFound, errorCode(t, rec))

	rec = do(t, s, http.MethodDelete, base+"/edges/en0-n9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.ErrCodeEdgeNotFound, errorCode(t, rec))
}

func TestPutJSON(t *testing.T) {
	s := newTestServer()
	id := create(t, s, doc).ID

	rec := do(t, s, http.MethodPut, "/sessions/"+id+"/json", `{"other": {"x": 1}, "list": [1]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[EditResult](t, rec).Changed)

	rec = do(t, s, http.MethodPut, "/sessions/"+id+"/json", `[true]`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[EditResult](t, rec)
	assert.True(t, res.Changed)
	assert.True(t, res.Session.Graph.RootIsArray)
	assert.True(t, jsonvalue.Equal(jsonvalue.MustParse(`[true]`), value(t, s, id)))
}

func TestRenderRoutes(t *testing.T) {
	s := newTestServer()
	id := create(t, s, doc).ID

	rec := do(t, s, http.MethodGet, "/sessions/"+id+"/dot?detailed=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/vnd.graphviz", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "digraph G {")
	assert.Contains(t, rec.Body.String(), "x: 1")

	rec = do(t, s, http.MethodGet, "/sessions/"+id+"/svg", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "</svg>")
}

func TestConcurrentEditsAreSerialized(t *testing.T) {
	s := newTestServer()
	id := create(t, s, `{"a": {}, "b": {}, "c": {}, "d": {}}`).ID

	var wg sync.WaitGroup
	for _, n := range []string{"n1", "n2", "n3", "n4"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := do(t, s, http.MethodPut, "/sessions/"+id+"/nodes/"+n+"/position", `{"x": 7, "y": 7}`)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	rec := do(t, s, http.MethodGet, "/sessions/"+id, "")
	for _, n := range decode[*session.Session](t, rec).Graph.Nodes[1:] {
		assert.Equal(t, graph.Position{X: 7, Y: 7}, n.Position, n.ID)
	}
}

func TestKeyedMutexReleases(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	unlock()
	assert.Empty(t, k.locks)
}
