package store

import (
	"context"
	"time"
)

// CachedStore wraps a slow backing Backend (Firestore) with an in-memory
// cache. Reads are served from the cache after the first load. Writes go
// to the backing store first and reach the cache only once they succeed,
// so a failed save never looks persisted.
type CachedStore struct {
	cache   *MemoryStore
	backing Backend
}

// NewCachedStore creates a CachedStore in front of backing.
func NewCachedStore(backing Backend) *CachedStore {
	return &CachedStore{
		cache:   NewMemoryStore(),
		backing: backing,
	}
}

func (cs *CachedStore) Load(ctx context.Context, path string) (*DocumentInfo, error) {
	info, err := cs.cache.Load(ctx, path)
	if err == nil {
		return info, nil
	}
	// Cache miss, go to the backing store.
	info, err = cs.backing.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	cs.cache.set(*info)
	return info, nil
}

func (cs *CachedStore) Put(ctx context.Context, info DocumentInfo) error {
	if err := cs.backing.Put(ctx, info); err != nil {
		cs.cache.remove(info.Path)
		return err
	}
	now := time.Now()
	if prev, err := cs.cache.Load(ctx, info.Path); err == nil {
		info.CreatedAt = prev.CreatedAt
	} else {
		info.CreatedAt = now
	}
	info.UpdatedAt = now
	cs.cache.set(info)
	return nil
}

func (cs *CachedStore) List(ctx context.Context) ([]DocumentInfo, error) {
	return cs.backing.List(ctx)
}

// Invalidate drops path from the cache so the next Load reads the backing store.
func (cs *CachedStore) Invalidate(path string) {
	cs.cache.remove(path)
}
