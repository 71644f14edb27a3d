package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	enabledStyle  = lipgloss.NewStyle()
	disabledStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Bold(true)
	statusStyle   = lipgloss.NewStyle().Faint(true)
	promptStyle   = lipgloss.NewStyle().Bold(true)
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Width(max(m.width, 1)).Render(m.avail.Title))
	b.WriteByte('\n')
	b.WriteString(m.menu())
	b.WriteByte('\n')
	b.WriteString(m.editor.View())
	b.WriteByte('\n')
	b.WriteString(m.footer())
	return b.String()
}

func (m *Model) menu() string {
	items := []struct {
		binding key.Binding
		enabled bool
	}{
		{m.keys.New, true},
		{m.keys.Open, true},
		{m.keys.Save, m.avail.Save},
		{m.keys.SaveAs, m.avail.SaveAs},
		{m.keys.Undo, m.avail.Undo},
		{m.keys.Redo, m.avail.Redo},
		{m.keys.About, true},
		{m.keys.Quit, true},
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		h := it.binding.Help()
		style := enabledStyle
		if !it.enabled {
			style = disabledStyle
		}
		parts = append(parts, style.Render(h.Key+" "+h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) footer() string {
	switch {
	case m.prompting == promptOpen:
		return promptStyle.Render("Open: ") + m.prompt.View()
	case m.prompting == promptSaveAs:
		return promptStyle.Render("Save as: ") + m.prompt.View()
	case m.alert != "":
		return alertStyle.Render(m.alert)
	default:
		return statusStyle.Render(m.status)
	}
}
