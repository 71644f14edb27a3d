package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alimasry/heimer/history"
	"github.com/alimasry/heimer/lifecycle"
	"github.com/alimasry/heimer/settings"
	"github.com/alimasry/heimer/store"
)

type fixture struct {
	m       *Model
	backend *store.MemoryStore
	ws      *store.Workspace
	window  *settings.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := store.NewMemoryStore()
	ws := store.NewWorkspace(backend, nil)
	hist := history.New(ws, 100)
	st, err := settings.Load("", nil)
	require.NoError(t, err)
	window := st.Group("MainWindow")
	ctrl := lifecycle.NewController(hist, ws, lifecycle.Options{
		Identity: lifecycle.Identity{Name: "Heimer", Version: "1.0"},
		Recent:   window,
	})
	m := New(ctrl, hist, ws, Options{
		Identity: lifecycle.Identity{Name: "Heimer", Version: "1.0"},
		Window:   window,
	})
	return &fixture{m: m, backend: backend, ws: ws, window: window}
}

func loadedFixture(t *testing.T) *fixture {
	f := newFixture(t)
	f.press(tea.KeyCtrlN)
	return f
}

func (f *fixture) press(k tea.KeyType) tea.Cmd {
	_, cmd := f.m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func (f *fixture) typeText(s string) {
	for _, r := range s {
		f.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (f *fixture) content() string { return f.ws.Document().Content }

func TestNewDocumentTitleAndMenu(t *testing.T) {
	f := loadedFixture(t)

	require.Equal(t, "Heimer 1.0 - New file", f.m.avail.Title)
	require.False(t, f.m.avail.Save)
	require.True(t, f.m.avail.SaveAs)
	require.Contains(t, f.m.View(), "Heimer 1.0 - New file")
	require.Contains(t, f.m.View(), "^S save")
}

func TestTypingRecordsEdits(t *testing.T) {
	f := loadedFixture(t)

	f.typeText("ab")
	require.Equal(t, "ab", f.content())
	require.Equal(t, "ab", f.m.editor.Value())
	require.True(t, f.m.avail.Save)
	require.True(t, f.m.avail.Undo)
	require.False(t, f.m.avail.Redo)
}

func TestUndoRedoKeys(t *testing.T) {
	f := loadedFixture(t)
	f.typeText("ab")

	f.press(tea.KeyCtrlZ)
	require.Equal(t, "a", f.content())
	require.Equal(t, "a", f.m.editor.Value())
	require.True(t, f.m.avail.Redo)

	f.press(tea.KeyCtrlZ)
	require.Equal(t, "", f.content())
	require.False(t, f.m.avail.Undo)
	require.True(t, f.m.avail.Save, "undo leaves the document dirty")

	// Nothing left to undo: no change.
	f.press(tea.KeyCtrlZ)
	require.Equal(t, "", f.content())

	f.press(tea.KeyCtrlY)
	require.Equal(t, "a", f.content())
	require.Equal(t, "a", f.m.editor.Value())
}

func TestSaveUntitledPromptsForPath(t *testing.T) {
	f := loadedFixture(t)
	f.typeText("hi")

	f.press(tea.KeyCtrlS)
	require.Equal(t, promptSaveAs, f.m.prompting)
	require.Contains(t, f.m.View(), "Save as:")

	f.m.prompt.SetValue("/maps/new")
	f.press(tea.KeyEnter)

	require.Equal(t, promptNone, f.m.prompting)
	info, err := f.backend.Load(context.Background(), "/maps/new.heimer")
	require.NoError(t, err)
	require.Equal(t, "hi", info.Content)
	require.False(t, f.m.avail.Save)
	require.Equal(t, "Heimer 1.0 - /maps/new.heimer", f.m.avail.Title)
	require.Equal(t, "/maps/new.heimer", f.window.RecentPath())
}

func TestSaveAsDialogStartsInRecentDirectory(t *testing.T) {
	f := loadedFixture(t)
	f.window.SetRecentPath("/maps/old.heimer")

	f.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}, Alt: true})
	require.Equal(t, promptSaveAs, f.m.prompting)
	require.Equal(t, filepath.FromSlash("/maps")+string(filepath.Separator), f.m.prompt.Value())

	f.press(tea.KeyEsc)
	require.Equal(t, promptNone, f.m.prompting)
	require.Equal(t, "", f.m.ctrl.State().Path)
}

func TestOpenFromPrompt(t *testing.T) {
	f := loadedFixture(t)
	require.NoError(t, f.backend.Put(context.Background(), store.DocumentInfo{
		Path:    "/maps/a.heimer",
		Content: "root\n  child",
	}))

	f.press(tea.KeyCtrlO)
	require.Equal(t, promptOpen, f.m.prompting)
	f.m.prompt.SetValue("/maps/a.heimer")
	f.press(tea.KeyEnter)

	require.Equal(t, "root\n  child", f.m.editor.Value())
	require.Equal(t, "Heimer 1.0 - /maps/a.heimer", f.m.avail.Title)
	require.False(t, f.m.avail.Save)
	require.False(t, f.m.avail.Undo)
	require.Equal(t, "/maps/a.heimer", f.window.RecentPath())
}

func TestOpenFailureShowsAlertAndKeepsDocument(t *testing.T) {
	f := loadedFixture(t)
	f.typeText("keep")

	f.press(tea.KeyCtrlO)
	f.m.prompt.SetValue("/nope.heimer")
	f.press(tea.KeyEnter)

	require.Equal(t, "Failed to open file '/nope.heimer'.", f.m.alert)
	require.Contains(t, f.m.View(), "Failed to open file")
	require.Equal(t, "keep", f.content())
	require.Equal(t, "keep", f.m.editor.Value())
	require.True(t, f.m.avail.Save)
}

func TestEditsIgnoredBeforeDocument(t *testing.T) {
	f := newFixture(t)

	require.False(t, f.m.avail.SaveAs)
	f.typeText("x")
	require.Equal(t, "", f.content())
	require.Equal(t, "", f.m.editor.Value())
	require.Equal(t, lifecycle.ErrNoDocument.Error(), f.m.alert)

	f.press(tea.KeyCtrlS)
	require.Equal(t, promptNone, f.m.prompting)
}

func TestQuitWithUnsavedChangesNeedsSecondPress(t *testing.T) {
	f := loadedFixture(t)
	f.typeText("x")

	require.Nil(t, f.press(tea.KeyCtrlW))
	require.Contains(t, f.m.status, "Unsaved changes")

	// Any other key disarms the confirmation.
	f.typeText("y")
	require.Nil(t, f.press(tea.KeyCtrlW))

	cmd := f.press(tea.KeyCtrlW)
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestQuitPersistsWindowSize(t *testing.T) {
	f := loadedFixture(t)
	f.m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	cmd := f.press(tea.KeyCtrlW)
	require.NotNil(t, cmd)
	require.Equal(t, settings.Size{Width: 120, Height: 40}, f.window.WindowSize(defaultSize))
}

func TestAbout(t *testing.T) {
	f := loadedFixture(t)
	f.press(tea.KeyF1)
	require.Contains(t, f.m.View(), "Heimer 1.0: a mind map editor")
}
