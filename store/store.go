// Package store persists mind map documents and holds the open one.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by backends when no document is stored at a path.
var ErrNotFound = errors.New("document not found")

// DocumentInfo holds a stored document and its metadata.
type DocumentInfo struct {
	Path string
	// Content is the serialized mind map; the store does not interpret it.
	Content string
	// Version counts the saves of this document.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Backend abstracts document persistence. Documents are keyed by path.
// Implementations: MemoryStore, FileStore, SQLiteStore, FirestoreStore,
// and CachedStore in front of any of them.
type Backend interface {
	Load(ctx context.Context, path string) (*DocumentInfo, error)
	// Put creates or replaces the document at info.Path. CreatedAt is kept
	// from the existing record; UpdatedAt is set by the backend.
	Put(ctx context.Context, info DocumentInfo) error
	List(ctx context.Context) ([]DocumentInfo, error)
}
