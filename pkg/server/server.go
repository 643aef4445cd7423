// Package server exposes editing sessions over a JSON HTTP API.
//
// Every session holds one flow graph. Clients create a session from a JSON
// (or YAML) document, then edit the graph through the routes below; each
// edit answers with the updated session and whether the JSON value behind
// the graph changed.
//
//	POST   /sessions                                create from a document
//	GET    /sessions/{id}                           session snapshot
//	DELETE /sessions/{id}
//	GET    /sessions/{id}/json                      rebuilt JSON value
//	PUT    /sessions/{id}/json                      replace the document
//	POST   /sessions/{id}/edges                     {"source","target"}
//	DELETE /sessions/{id}/edges/{edgeId}
//	POST   /sessions/{id}/nodes/{nodeId}/toggle
//	PUT    /sessions/{id}/nodes/{nodeId}/position   {"x","y"}
//	DELETE /sessions/{id}/nodes/{nodeId}
//	POST   /sessions/{id}/reorganize
//	GET    /sessions/{id}/dot
//	GET    /sessions/{id}/svg
//	GET    /healthz
//
// Errors are reported as {"error": {"code": ..., "message": ...}} with the
// status from [errors.HTTPStatus].
//
// [errors.HTTPStatus]: github.com/matzehuels/jsonflow/pkg/errors.HTTPStatus
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/pipeline"
	"github.com/matzehuels/jsonflow/pkg/session"
)

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 10 << 20

// Option configures optional Server behavior.
type Option func(*Server)

// WithSessionTTL sets how long an untouched session lives.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLayouts sets the spacing used when building and reorganizing graphs.
func WithLayouts(build, reorganize flow.Layout) Option {
	return func(s *Server) {
		s.buildLayout = build
		s.reorganizeLayout = reorganize
	}
}

// WithMaxBodyBytes limits request bodies to n bytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// Server holds the chi router, the session store and the render pipeline.
type Server struct {
	router chi.Router
	store  session.Store
	runner *pipeline.Runner
	logger *log.Logger
	locks  *keyedMutex

	ttl              time.Duration
	buildLayout      flow.Layout
	reorganizeLayout flow.Layout
	maxBody          int64
}

// New creates a Server with all routes configured. A nil runner renders
// without caching; a nil logger uses log.Default().
func New(store session.Store, runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		store:   store,
		runner:  runner,
		logger:  logger,
		locks:   newKeyedMutex(),
		ttl:     session.DefaultTTL,
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	// Session lifecycle
	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions/{id}", s.handleGetSession)
	r.Delete("/sessions/{id}", s.handleDeleteSession)
	r.Get("/sessions/{id}/json", s.handleGetJSON)
	r.Put("/sessions/{id}/json", s.handlePutJSON)

	// Graph edits
	r.Post("/sessions/{id}/edges", s.handleConnect)
	r.Delete("/sessions/{id}/edges/{edgeId}", s.handleDeleteEdge)
	r.Post("/sessions/{id}/nodes/{nodeId}/toggle", s.handleToggle)
	r.Put("/sessions/{id}/nodes/{nodeId}/position", s.handleMove)
	r.Delete("/sessions/{id}/nodes/{nodeId}", s.handleDeleteNode)
	r.Post("/sessions/{id}/reorganize", s.handleReorganize)

	// Renderings
	r.Get("/sessions/{id}/dot", s.handleRender(graph.FormatDOT))
	r.Get("/sessions/{id}/svg", s.handleRender(graph.FormatSVG))

	s.router = r
	return s
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
