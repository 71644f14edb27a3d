package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/alimasry/heimer/ot"
)

// Workspace holds the single open document and moves it in and out of a
// Backend. It tracks the document version at the last open or save to
// answer HasUnsavedChanges.
//
// Workspace is not safe for concurrent use; the front end's event loop
// owns it.
type Workspace struct {
	backend Backend
	log     *slog.Logger

	doc      *ot.Document
	path     string // where the stored copy lives, empty before a save
	saved    int    // doc.Version at the last open or save
	revision int    // DocumentInfo.Version of the stored copy at path
}

func NewWorkspace(backend Backend, log *slog.Logger) *Workspace {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workspace{
		backend: backend,
		log:     log,
		doc:     ot.NewDocument(""),
	}
}

// Document returns the open document.
func (w *Workspace) Document() *ot.Document { return w.doc }

// New replaces the open document with an empty one.
func (w *Workspace) New() {
	w.doc = ot.NewDocument("")
	w.path = ""
	w.saved = 0
	w.revision = 0
}

// Open replaces the open document with the one stored at path. On error
// the open document is kept.
func (w *Workspace) Open(ctx context.Context, path string) error {
	info, err := w.backend.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	w.doc = ot.NewDocument(info.Content)
	w.path = path
	w.saved = 0
	w.revision = info.Version
	w.log.Debug("workspace: loaded", "path", path, "revision", info.Version, "bytes", len(info.Content))
	return nil
}

// Save writes the open document to path.
func (w *Workspace) Save(ctx context.Context, path string) error {
	return w.write(ctx, path)
}

// SaveAs writes the open document to a new path.
func (w *Workspace) SaveAs(ctx context.Context, path string) error {
	return w.write(ctx, path)
}

// write stores the document one revision past the copy already at path.
func (w *Workspace) write(ctx context.Context, path string) error {
	base := w.revision
	if path != w.path {
		base = 0
		if prev, err := w.backend.Load(ctx, path); err == nil {
			base = prev.Version
		} else if !errors.Is(err, ErrNotFound) {
			w.log.Debug("workspace: overwriting unreadable copy", "path", path, "err", err)
		}
	}
	info := DocumentInfo{
		Path:    path,
		Content: w.doc.Content,
		Version: base + 1,
	}
	if err := w.backend.Put(ctx, info); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	w.path = path
	w.saved = w.doc.Version
	w.revision = info.Version
	w.log.Debug("workspace: stored", "path", path, "revision", info.Version)
	return nil
}

// HasUnsavedChanges reports whether the document changed since it was
// last opened or saved.
func (w *Workspace) HasUnsavedChanges() bool {
	return w.doc.Version != w.saved
}

// List returns the documents the backend knows about.
func (w *Workspace) List(ctx context.Context) ([]DocumentInfo, error) {
	return w.backend.List(ctx)
}
