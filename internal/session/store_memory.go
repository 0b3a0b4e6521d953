package session

import (
	"context"
	"sync"
	"time"
)

// NewInMemoryStore returns a Store backed by an in-memory map.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryStore implements Store for single-instance deployments and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// Save stores the session. A positive ttl marks it for lazy eviction.
func (s *InMemoryStore) Save(_ context.Context, key string, session Session, ttl time.Duration) error {
	entry := memoryEntry{session: session}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Find returns the session for key, evicting it when idle past its ttl.
func (s *InMemoryStore) Find(_ context.Context, key string) (Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if entry.expired(s.now()) {
		s.mu.Lock()
		// A Save may have replaced the entry since the read lock was released.
		if current, ok := s.entries[key]; ok && current.expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Touch extends the idle deadline of key.
func (s *InMemoryStore) Touch(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return ErrSessionNotFound
	}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
		s.entries[key] = entry
	}
	return nil
}

// Delete removes the session for key.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return ErrSessionNotFound
	}
	delete(s.entries, key)
	return nil
}

// PurgeExpired drops every session idle past its deadline and reports how
// many were removed.
func (s *InMemoryStore) PurgeExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed int64
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// WithNowFunc overrides the clock.
func (s *InMemoryStore) WithNowFunc(now func() time.Time) *InMemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Has reports whether a session exists for key. Useful for tests.
func (s *InMemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}
