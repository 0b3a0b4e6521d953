package preview

import (
	"context"
	"sync"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/gateway"
)

// MemoryStore keeps preview blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]gateway.Blob
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]gateway.Blob)}
}

func (s *MemoryStore) Put(_ context.Context, key string, blob gateway.Blob) (string, error) {
	data := append([]byte(nil), blob.Data...)
	blob.Data = data

	s.mu.Lock()
	s.blobs[key] = blob
	s.mu.Unlock()
	return "", nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (gateway.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return gateway.Blob{}, ErrNotFound
	}
	return blob, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
