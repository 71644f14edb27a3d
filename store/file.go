package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileFormat identifies documents written by FileStore.
const fileFormat = "heimer/1"

// fileDoc is the on-disk envelope around a document's content.
type fileDoc struct {
	Format  string    `yaml:"format"`
	Version int       `yaml:"version"`
	Created time.Time `yaml:"created"`
	Updated time.Time `yaml:"updated"`
	Content string    `yaml:"content"`
}

// FileStore keeps each document in its own YAML file at its path.
// List walks Dir for files ending in Ext, skipping what it cannot read.
type FileStore struct {
	Dir string
	Ext string
}

func NewFileStore(dir, ext string) *FileStore {
	return &FileStore{Dir: dir, Ext: ext}
}

func (s *FileStore) Load(_ context.Context, path string) (*DocumentInfo, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeFile(path, data)
}

func decodeFile(path string, data []byte) (*DocumentInfo, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Format != fileFormat {
		return nil, fmt.Errorf("parse %s: unsupported format %q", path, doc.Format)
	}
	return &DocumentInfo{
		Path:      path,
		Content:   doc.Content,
		Version:   doc.Version,
		CreatedAt: doc.Created,
		UpdatedAt: doc.Updated,
	}, nil
}

// Put writes to a temporary file next to path and renames it into place,
// so a failed write never truncates an existing document.
func (s *FileStore) Put(ctx context.Context, info DocumentInfo) error {
	if info.Path == "" {
		return fmt.Errorf("put: empty path")
	}
	now := time.Now().UTC()
	created := now
	if prev, err := s.Load(ctx, info.Path); err == nil && !prev.CreatedAt.IsZero() {
		created = prev.CreatedAt
	}
	data, err := yaml.Marshal(fileDoc{
		Format:  fileFormat,
		Version: info.Version,
		Created: created,
		Updated: now,
		Content: info.Content,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", info.Path, err)
	}

	dir := filepath.Dir(info.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(info.Path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", info.Path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", info.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", info.Path, err)
	}
	if err := os.Rename(tmp.Name(), info.Path); err != nil {
		return fmt.Errorf("write %s: %w", info.Path, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]DocumentInfo, error) {
	if s.Dir == "" {
		return nil, nil
	}
	var result []DocumentInfo
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return skipUnreadable(path == s.Dir, d, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, s.Ext) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return skipUnreadable(false, d, err)
		}
		info, err := decodeFile(path, data)
		if err != nil {
			// Not one of ours; skip it.
			return nil
		}
		result = append(result, *info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Dir, err)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// skipUnreadable keeps one unreadable entry from failing a whole listing.
// A missing root lists nothing.
func skipUnreadable(root bool, d fs.DirEntry, err error) error {
	switch {
	case root && errors.Is(err, fs.ErrNotExist):
		return fs.SkipAll
	case errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrNotExist):
		if d != nil && d.IsDir() {
			return fs.SkipDir
		}
		return nil
	}
	return err
}
