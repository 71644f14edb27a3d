package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New    key.Binding
	Open   key.Binding
	Save   key.Binding
	SaveAs key.Binding
	Undo   key.Binding
	Redo   key.Binding
	About  key.Binding
	Quit   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		New:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("^N", "new")),
		Open:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "open")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "save")),
		SaveAs: key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("M-s", "save as")),
		Undo:   key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("^Z", "undo")),
		Redo:   key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^Y", "redo")),
		About:  key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "about")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+w", "ctrl+c"), key.WithHelp("^W", "quit")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
