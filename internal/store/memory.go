package store

import (
	"context"
	"sync"
	"time"

	"github.com/voyago/voyago/internal/domain"
)

// MemoryStore is an in-process SessionStore used in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

// Get retrieves a session; expired entries are treated as absent.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	copied := *entry.session
	return &copied, nil
}

// Put stores a session with the given TTL.
func (s *MemoryStore) Put(_ context.Context, session *domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = memoryEntry{
		session:   &copied,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// DeleteAllForUser removes every session owned by a user.
func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, entry := range s.sessions {
		if entry.session.UserID == userID {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Expire force-expires a session. Test helper for TTL behavior.
func (s *MemoryStore) Expire(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[sessionID]; ok {
		entry.expiresAt = time.Now().Add(-time.Second)
		s.sessions[sessionID] = entry
	}
}
