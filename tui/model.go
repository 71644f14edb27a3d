// Package tui is the terminal front end: a text editor over the open
// document with the file and edit actions bound to keys.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alimasry/heimer/history"
	"github.com/alimasry/heimer/lifecycle"
	"github.com/alimasry/heimer/ot"
	"github.com/alimasry/heimer/settings"
)

// chrome is the number of lines around the editor: title, menu, status.
const chrome = 3

var defaultSize = settings.Size{Width: 80, Height: 24}

type promptKind int

const (
	promptNone promptKind = iota
	promptOpen
	promptSaveAs
)

// Options configures a Model.
type Options struct {
	Identity lifecycle.Identity
	// Window persists the terminal size between runs. May be nil.
	Window *settings.Group
	Logger *slog.Logger
}

// Model is the bubbletea model. It owns the event loop the controller,
// the history and the document are driven from.
type Model struct {
	ctx    context.Context
	ctrl   *lifecycle.Controller
	hist   *history.History
	buf    history.Buffer
	id     lifecycle.Identity
	window *settings.Group
	log    *slog.Logger
	keys   keyMap

	editor    textarea.Model
	prompt    textinput.Model
	prompting promptKind

	avail     lifecycle.Availability
	alert     string
	status    string
	quitArmed bool

	width, height int
}

// New creates the model and attaches it to ctrl as sink and dialogs.
func New(ctrl *lifecycle.Controller, hist *history.History, buf history.Buffer, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	editor := textarea.New()
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.ShowLineNumbers = false
	editor.Placeholder = "Start typing your mind map..."
	editor.Focus()

	prompt := textinput.New()
	prompt.CharLimit = 0

	m := &Model{
		ctx:    context.Background(),
		ctrl:   ctrl,
		hist:   hist,
		buf:    buf,
		id:     opts.Identity,
		window: opts.Window,
		log:    log.With("component", "tui"),
		keys:   newKeyMap(),
		editor: editor,
		prompt: prompt,
	}

	size := defaultSize
	if m.window != nil {
		size = m.window.WindowSize(defaultSize)
	}
	m.resize(size.Width, size.Height)

	ctrl.Attach(presenter{m}, presenter{m})
	m.syncEditor()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, m.quit()
		}
		m.quitArmed = false
		if m.prompting != promptNone {
			return m, m.updatePrompt(msg)
		}
		if cmd, handled := m.handleAction(msg); handled {
			return m, cmd
		}
	}

	if m.prompting != promptNone {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, m.updateEditor(msg)
}

func (m *Model) handleAction(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.New):
		m.clearMessages()
		m.ctrl.NewDocument()
		m.syncEditor()
	case key.Matches(msg, m.keys.Open):
		m.clearMessages()
		if err := m.ctrl.RequestOpen(m.ctx); err == nil {
			m.syncEditor()
		}
	case key.Matches(msg, m.keys.Save):
		if !m.avail.Save {
			return nil, true
		}
		m.clearMessages()
		m.report(m.ctrl.Save(m.ctx))
	case key.Matches(msg, m.keys.SaveAs):
		if !m.avail.SaveAs {
			return nil, true
		}
		m.clearMessages()
		m.report(m.ctrl.RequestSaveAs(m.ctx))
	case key.Matches(msg, m.keys.Undo):
		if m.ctrl.Undo() {
			m.syncEditor()
		}
	case key.Matches(msg, m.keys.Redo):
		if m.ctrl.Redo() {
			m.syncEditor()
		}
	case key.Matches(msg, m.keys.About):
		m.status = fmt.Sprintf("%s %s: a mind map editor", m.id.Name, m.id.Version)
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.endPrompt()
		return nil
	case key.Matches(msg, m.keys.Submit):
		kind, path := m.prompting, m.prompt.Value()
		m.endPrompt()
		switch kind {
		case promptOpen:
			if m.ctrl.Open(m.ctx, path) == nil {
				m.syncEditor()
			}
		case promptSaveAs:
			m.report(m.ctrl.SaveAs(m.ctx, path))
		}
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// updateEditor feeds msg to the textarea and records any change to the
// text as one operation in the history.
func (m *Model) updateEditor(msg tea.Msg) tea.Cmd {
	doc := m.buf.Document()
	if m.editor.Value() != doc.Content {
		m.syncEditor()
	}
	before := doc.Content

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	after := m.editor.Value()
	if after == before {
		return cmd
	}

	if !m.ctrl.State().Loaded {
		m.syncEditor()
		m.alert = lifecycle.ErrNoDocument.Error()
		return cmd
	}
	if err := m.hist.Apply(ot.FromDiff(before, after)); err != nil {
		m.log.Error("edit rejected", "err", err)
		m.syncEditor()
		return cmd
	}
	m.report(m.ctrl.EditPerformed())
	return cmd
}

// quit exits unless there are unsaved changes, in which case the first
// press only warns.
func (m *Model) quit() tea.Cmd {
	if m.ctrl.HasUnsavedChanges() && !m.quitArmed {
		m.quitArmed = true
		m.status = "Unsaved changes. Press ^W again to quit without saving."
		return nil
	}
	if m.window != nil {
		m.window.SetWindowSize(settings.Size{Width: m.width, Height: m.height})
	}
	m.log.Info("quit", "unsaved", m.ctrl.HasUnsavedChanges())
	return tea.Quit
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.editor.SetWidth(w)
	m.editor.SetHeight(max(h-chrome, 1))
	m.prompt.Width = max(w-len(m.prompt.Prompt)-12, 10)
}

// Refresh reloads the editor from the document, for callers that replaced
// it outside the event loop before the program starts.
func (m *Model) Refresh() { m.syncEditor() }

func (m *Model) syncEditor() {
	m.editor.SetValue(m.buf.Document().Content)
}

func (m *Model) startPrompt(kind promptKind, value string) {
	m.prompting = kind
	m.prompt.SetValue(value)
	m.prompt.Focus()
	m.editor.Blur()
}

func (m *Model) endPrompt() {
	m.prompting = promptNone
	m.prompt.Blur()
	m.prompt.SetValue("")
	m.editor.Focus()
}

func (m *Model) clearMessages() {
	m.alert = ""
	m.status = ""
}

// report surfaces errors the controller does not alert on itself.
func (m *Model) report(err error) {
	if err == nil {
		return
	}
	var lerr *lifecycle.Error
	if errors.As(err, &lerr) {
		return
	}
	m.alert = err.Error()
}

// presenter adapts the model to lifecycle.Sink and lifecycle.Dialogs.
// Dialogs open the path prompt and return no path; submitting the prompt
// calls Open or SaveAs.
type presenter struct{ m *Model }

func (p presenter) Update(a lifecycle.Availability) { p.m.avail = a }

func (p presenter) Alert(e *lifecycle.Error) {
	p.m.alert = e.Message()
}

func (p presenter) OpenPath(dir string) (string, bool) {
	p.m.startPrompt(promptOpen, dir)
	return "", false
}

func (p presenter) SavePath(dir string) (string, bool) {
	if dir != "" {
		dir += string(filepath.Separator)
	}
	p.m.startPrompt(promptSaveAs, dir)
	return "", false
}
