// Package lifecycle tracks whether the open mind map is named, dirty,
// undoable and redoable, and decides which file and edit actions are
// available after every user action.
package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// EditHistory is the undo/redo stack maintained next to the document.
type EditHistory interface {
	CanUndo() bool
	CanRedo() bool
	Undo() bool
	Redo() bool
	Reset()
}

// DocumentStore loads and persists the open document.
type DocumentStore interface {
	New()
	Open(ctx context.Context, path string) error
	Save(ctx context.Context, path string) error
	SaveAs(ctx context.Context, path string) error
	HasUnsavedChanges() bool
}

// Sink observes the controller. Update is called after every transition,
// Alert after every failed open or save.
type Sink interface {
	Update(Availability)
	Alert(*Error)
}

// Dialogs asks the user for a path. Front ends that cannot block return
// false and call Open or SaveAs themselves once the user answers.
type Dialogs interface {
	OpenPath(dir string) (string, bool)
	SavePath(dir string) (string, bool)
}

// RecentPaths remembers where the user last opened or saved a document.
type RecentPaths interface {
	RecentPath() string
	SetRecentPath(path string)
}

// DefaultExtension is appended by SaveAs to paths that lack it.
const DefaultExtension = ".heimer"

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Identity  Identity
	Extension string
	Sink      Sink
	Dialogs   Dialogs
	Recent    RecentPaths
	Logger    *slog.Logger
}

// Controller owns the State of the single open document. Its methods must
// be called from one goroutine; front ends serialize user actions.
type Controller struct {
	history EditHistory
	store   DocumentStore
	sink    Sink
	dialogs Dialogs
	recent  RecentPaths
	id      Identity
	ext     string
	log     *slog.Logger

	state State
}

// NewController returns a controller with no document loaded.
func NewController(h EditHistory, st DocumentStore, opts Options) *Controller {
	c := &Controller{
		history: h,
		store:   st,
		sink:    opts.Sink,
		dialogs: opts.Dialogs,
		recent:  opts.Recent,
		id:      opts.Identity,
		ext:     opts.Extension,
		log:     opts.Logger,
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	if c.dialogs == nil {
		c.dialogs = nopDialogs{}
	}
	if c.recent == nil {
		c.recent = &memoryRecent{}
	}
	if c.ext == "" {
		c.ext = DefaultExtension
	}
	if c.id.Untitled == "" {
		c.id.Untitled = "New file"
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Attach replaces the sink and dialogs and pushes the current availability
// to the new sink.
func (c *Controller) Attach(sink Sink, dialogs Dialogs) {
	if sink != nil {
		c.sink = sink
	}
	if dialogs != nil {
		c.dialogs = dialogs
	}
	c.sink.Update(c.Availability())
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Availability derives the enabled actions and title from the current state.
func (c *Controller) Availability() Availability { return Derive(c.state, c.id) }

// Extension returns the file extension enforced by SaveAs.
func (c *Controller) Extension() string { return c.ext }

// HasUnsavedChanges reports whether quitting now would lose edits.
func (c *Controller) HasUnsavedChanges() bool {
	return c.state.Loaded && (c.state.Dirty || c.store.HasUnsavedChanges())
}

// NewDocument replaces the open document with an empty, untitled one.
func (c *Controller) NewDocument() {
	c.log.Info("new document")
	c.store.New()
	c.history.Reset()
	c.state = State{Loaded: true}
	c.commit()
}

// RequestOpen asks the dialogs for a path, starting at the recent path,
// and opens it. A cancelled dialog is not an error.
func (c *Controller) RequestOpen(ctx context.Context) error {
	path, ok := c.dialogs.OpenPath(c.recent.RecentPath())
	if !ok || path == "" {
		return nil
	}
	return c.Open(ctx, path)
}

// Open loads the document at path. On failure the previously open
// document, its state and the recent path are left untouched.
func (c *Controller) Open(ctx context.Context, path string) error {
	c.log.Info("opening document", "path", path)
	if path == "" {
		return c.fail(OpenFailed, path, errors.New("empty path"))
	}
	if err := c.store.Open(ctx, path); err != nil {
		return c.fail(OpenFailed, path, err)
	}
	c.history.Reset()
	c.state = State{Path: path, Loaded: true}
	c.recent.SetRecentPath(path)
	c.commit()
	c.log.Info("document opened", "path", path)
	return nil
}

// EditPerformed records that an edit was applied through the history.
func (c *Controller) EditPerformed() error {
	if !c.state.Loaded {
		return ErrNoDocument
	}
	c.state.Dirty = true
	c.commit()
	return nil
}

// Undo reverts the last edit. It reports false, without notifying, when
// the history has nothing to undo. A history that fails to undo may drop
// its entries; the flags are re-read and pushed when that happens.
func (c *Controller) Undo() bool {
	if !c.state.Loaded || !c.history.CanUndo() {
		return false
	}
	if !c.history.Undo() {
		c.resync()
		return false
	}
	c.state.Dirty = true
	c.commit()
	return true
}

// Redo re-applies the last undone edit. See Undo.
func (c *Controller) Redo() bool {
	if !c.state.Loaded || !c.history.CanRedo() {
		return false
	}
	if !c.history.Redo() {
		c.resync()
		return false
	}
	c.state.Dirty = true
	c.commit()
	return true
}

// Save writes the document to its current path, or behaves like
// RequestSaveAs when it has none.
func (c *Controller) Save(ctx context.Context) error {
	if !c.state.Loaded {
		return ErrNoDocument
	}
	if !c.state.HasPath() {
		return c.RequestSaveAs(ctx)
	}
	path := c.state.Path
	c.log.Info("saving document", "path", path)
	if err := c.store.Save(ctx, path); err != nil {
		return c.fail(SaveFailed, path, err)
	}
	c.state.Dirty = false
	c.commit()
	c.log.Info("document saved", "path", path)
	return nil
}

// RequestSaveAs asks the dialogs for a path, starting in the directory of
// the recent path, and saves there.
func (c *Controller) RequestSaveAs(ctx context.Context) error {
	if !c.state.Loaded {
		return ErrNoDocument
	}
	path, ok := c.dialogs.SavePath(saveDir(c.recent.RecentPath()))
	if !ok || path == "" {
		return nil
	}
	return c.SaveAs(ctx, path)
}

// SaveAs writes the document to candidate, appending the extension when
// it is missing. An empty candidate is a cancelled dialog.
func (c *Controller) SaveAs(ctx context.Context, candidate string) error {
	if !c.state.Loaded {
		return ErrNoDocument
	}
	if candidate == "" {
		return nil
	}
	path := EnsureExtension(candidate, c.ext)
	c.log.Info("saving document as", "path", path)
	if err := c.store.SaveAs(ctx, path); err != nil {
		return c.fail(SaveAsFailed, path, err)
	}
	c.state.Path = path
	c.state.Dirty = false
	c.recent.SetRecentPath(path)
	c.commit()
	c.log.Info("document saved", "path", path)
	return nil
}

// saveDir returns the directory a save-as dialog starts in. Recent paths
// name the last opened or saved file; only the default is a directory.
func saveDir(recent string) string {
	if recent == "" {
		return ""
	}
	if fi, err := os.Stat(recent); err == nil && fi.IsDir() {
		return recent
	}
	return filepath.Dir(recent)
}

// EnsureExtension appends ext to path unless path already ends with it.
func EnsureExtension(path, ext string) string {
	if ext == "" || strings.HasSuffix(path, ext) {
		return path
	}
	return path + ext
}

// commit re-reads the history flags and notifies the sink. Every
// successful transition ends here, so the flags never drift from the
// history.
func (c *Controller) commit() {
	c.state.Undoable = c.history.CanUndo()
	c.state.Redoable = c.history.CanRedo()
	c.sink.Update(c.Availability())
}

// resync commits only when the history flags moved without a transition.
func (c *Controller) resync() {
	if c.state.Undoable != c.history.CanUndo() || c.state.Redoable != c.history.CanRedo() {
		c.log.Warn("edit history changed under a failed undo or redo")
		c.commit()
	}
}

func (c *Controller) fail(kind Kind, path string, err error) error {
	e := &Error{Kind: kind, Path: path, Err: err}
	c.log.Error(e.Message(), "path", path, "err", err)
	c.sink.Alert(e)
	return e
}

type nopSink struct{}

func (nopSink) Update(Availability) {}
func (nopSink) Alert(*Error)        {}

type nopDialogs struct{}

func (nopDialogs) OpenPath(string) (string, bool) { return "", false }
func (nopDialogs) SavePath(string) (string, bool) { return "", false }

type memoryRecent struct{ path string }

func (m *memoryRecent) RecentPath() string     { return m.path }
func (m *memoryRecent) SetRecentPath(p string) { m.path = p }
