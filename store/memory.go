package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Backend.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]DocumentInfo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]DocumentInfo)}
}

func (s *MemoryStore) Load(_ context.Context, path string) (*DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
	}
	return &info, nil
}

func (s *MemoryStore) Put(_ context.Context, info DocumentInfo) error {
	if info.Path == "" {
		return fmt.Errorf("put: empty path")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if prev, ok := s.docs[info.Path]; ok {
		info.CreatedAt = prev.CreatedAt
	} else {
		info.CreatedAt = now
	}
	info.UpdatedAt = now
	s.docs[info.Path] = info
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]DocumentInfo, 0, len(s.docs))
	for _, info := range s.docs {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// set stores info exactly as given, timestamps included.
func (s *MemoryStore) set(info DocumentInfo) {
	s.mu.Lock()
	s.docs[info.Path] = info
	s.mu.Unlock()
}

func (s *MemoryStore) remove(path string) {
	s.mu.Lock()
	delete(s.docs, path)
	s.mu.Unlock()
}
