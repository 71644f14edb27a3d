package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps mind maps in a Firestore collection so they follow
// the user between machines. Each map is one Firestore document named by
// its escaped path.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// mapRecord is the Firestore shape of a stored map.
type mapRecord struct {
	Path      string    `firestore:"path"`
	Content   string    `firestore:"content"`
	Version   int       `firestore:"version"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (r mapRecord) info() *DocumentInfo {
	return &DocumentInfo{
		Path:      r.Path,
		Content:   r.Content,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewFirestoreStore stores maps in collection ("mindmaps" when empty).
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = "mindmaps"
	}
	return &FirestoreStore{client: client, collection: collection}
}

// docID maps a path to a Firestore document ID, which may not contain '/'.
func docID(path string) string {
	return url.PathEscape(path)
}

func (s *FirestoreStore) ref(path string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(docID(path))
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*DocumentInfo, error) {
	var rec mapRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	if rec.Path == "" {
		rec.Path, _ = url.PathUnescape(snap.Ref.ID)
	}
	return rec.info(), nil
}

func (s *FirestoreStore) Load(ctx context.Context, path string) (*DocumentInfo, error) {
	snap, err := s.ref(path).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get %q: %w", path, err)
	}
	return decodeSnapshot(snap)
}

// Put writes the map in a transaction so CreatedAt survives overwrites.
func (s *FirestoreStore) Put(ctx context.Context, info DocumentInfo) error {
	if info.Path == "" {
		return fmt.Errorf("put: empty path")
	}
	ref := s.ref(info.Path)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now().UTC()
		rec := mapRecord{
			Path:      info.Path,
			Content:   info.Content,
			Version:   info.Version,
			CreatedAt: now,
			UpdatedAt: now,
		}
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if old, derr := decodeSnapshot(snap); derr == nil && !old.CreatedAt.IsZero() {
				rec.CreatedAt = old.CreatedAt
			}
		}
		return tx.Set(ref, rec)
	})
	if err != nil {
		return fmt.Errorf("firestore put %q: %w", info.Path, err)
	}
	return nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]DocumentInfo, error) {
	it := s.client.Collection(s.collection).Documents(ctx)
	defer it.Stop()

	var result []DocumentInfo
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list: %w", err)
		}
		info, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, *info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// delete removes a stored map; tests use it to clean up.
func (s *FirestoreStore) delete(ctx context.Context, path string) error {
	_, err := s.ref(path).Delete(ctx)
	return err
}
