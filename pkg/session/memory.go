package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. When full, storing a new
// session evicts the least recently updated one.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]Session
	maxSessions int
}

// NewMemoryStore creates an in-memory store holding at most maxSessions
// sessions. A non-positive maxSessions means no limit.
func NewMemoryStore(maxSessions int) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]Session),
		maxSessions: maxSessions,
	}
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired() {
		_ = s.Delete(ctx, sessionID)
		return nil, ErrExpired
	}
	return &sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; !exists && s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldest()
	}
	s.sessions[sess.ID] = *sess
	return nil
}

// evictOldest removes the least recently updated session. Callers hold s.mu.
func (s *MemoryStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldest.IsZero() || sess.UpdatedAt.Before(oldest) {
			oldestID = id
			oldest = sess.UpdatedAt
		}
	}
	delete(s.sessions, oldestID)
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)
