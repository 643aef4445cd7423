// Package session persists editing sessions.
//
// A [Session] is a snapshot of one visualizer: its graph document (with
// positions, toggled container kinds and remembered keys) and the last JSON
// value exchanged with the owner. The HTTP API keeps one session per client
// editor; the CLI keeps named sessions on disk.
//
// Backends implement [Store]:
//   - [MemoryStore]: in-process, with capacity eviction and TTL cleanup
//   - [FileStore]: one JSON file per session
//   - [RedisStore]: Redis keys with server-side expiry
//   - [MongoStore]: one MongoDB document per session with a TTL index
//   - [SQLiteStore]: one row per session in a local database file
//
// # Usage
//
//	vz := visualizer.New(visualizer.Options{})
//	vz.RenderGraph(value)
//
//	sess := session.New(session.DefaultTTL)
//	if err := sess.Capture(vz); err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or expired
//	}
//	vz, err := sess.Visualizer(visualizer.Options{})
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/visualizer"
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 24 * time.Hour

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// Session is a stored visualizer snapshot.
type Session struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	Graph     graph.Document  `json:"graph" bson:"graph"`
	Value     json.RawMessage `json:"value,omitempty" bson:"value,omitempty"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at" bson:"expires_at"`
}

// New creates an empty session with a fresh ID that expires after ttl.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch marks the session as updated and extends its expiry by ttl.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Capture stores the visualizer's current graph and last value.
func (s *Session) Capture(vz *visualizer.Visualizer) error {
	doc, err := graph.FromFlow(vz.Graph())
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	value, err := jsonvalue.Marshal(vz.Last())
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	s.Graph = doc
	s.Value = value
	return nil
}

// Visualizer restores a visualizer from the stored graph.
func (s *Session) Visualizer(opts visualizer.Options) (*visualizer.Visualizer, error) {
	g, err := graph.ToFlow(s.Graph)
	if err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	vz := visualizer.New(opts)
	if err := vz.Restore(g); err != nil {
		return nil, err
	}
	return vz, nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if it
	// exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op when the backend
	// expires keys itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StartCleanup runs store.Cleanup every interval until the returned stop
// function is called. Cleanup errors are passed to onErr when it is non-nil.
// Calling stop more than once is safe.
func StartCleanup(store Store, interval time.Duration, onErr func(error)) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := store.Cleanup(context.Background()); err != nil && onErr != nil {
					onErr(err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
