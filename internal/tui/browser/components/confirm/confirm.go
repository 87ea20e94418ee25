package confirm

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Request describes the record a deletion dialog asks about.
type Request struct {
	ID    string
	Title string
	// Groups lists the labels of every group the record appears in.
	Groups []string
}

// ConfirmedMsg is sent when the user accepts the deletion.
type ConfirmedMsg struct {
	ID string
}

// CancelledMsg is sent when the user backs out.
type CancelledMsg struct{}

// Model is a modal yes/no dialog for deleting one record.
type Model struct {
	Active bool
	req    Request
	keys   keyMap
	help   help.Model
}

func New() Model {
	return Model{keys: defaultKeyMap, help: help.New()}
}

// Ask opens the dialog for req.
func (m *Model) Ask(req Request) {
	m.req = req
	m.Active = true
}

// Pending is the request currently shown.
func (m Model) Pending() Request { return m.req }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !m.Active || !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.Active = false
		id := m.req.ID
		return m, func() tea.Msg { return ConfirmedMsg{ID: id} }
	case key.Matches(keyMsg, m.keys.Cancel):
		m.Active = false
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("208")).
			Padding(1, 2)
	titleStyle = lipgloss.NewStyle().Bold(true)
	groupStyle = lipgloss.NewStyle().Faint(true)
)

func (m Model) View() string {
	if !m.Active {
		return ""
	}
	var b strings.Builder
	b.WriteString("Delete ")
	b.WriteString(titleStyle.Render(m.req.Title))
	b.WriteString("?")
	switch n := len(m.req.Groups); {
	case n == 1:
		b.WriteString("\n" + groupStyle.Render("in "+m.req.Groups[0]))
	case n > 1:
		b.WriteString("\n" + groupStyle.Render("listed in "+strings.Join(m.req.Groups, ", ")))
	}
	box := boxStyle.Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Center, box, m.help.ShortHelpView(m.keys.bindings()))
}

type keyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func (k keyMap) bindings() []key.Binding { return []key.Binding{k.Confirm, k.Cancel} }

var defaultKeyMap = keyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "delete"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "keep"),
	),
}
