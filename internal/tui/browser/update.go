package browser

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-slots/internal/render"
	"github.com/mattsolo1/grove-slots/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-slots/pkg/filter"
	"github.com/mattsolo1/grove-slots/pkg/grouping"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.adjustScroll()
		return m, nil

	case confirm.ConfirmedMsg:
		m.deleteRecord(msg.ID)
		return m, nil

	case confirm.CancelledMsg:
		m.statusMessage = "Delete cancelled"
		return m, nil

	case tea.KeyMsg:
		if m.confirm.Active {
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
		if m.filterInput.Focused() {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	before := m.filterInput.Value()
	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterInput.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m *Model) applyFilter() {
	m.ctrl.SetFilter(filter.Parse(m.filterInput.Value()))
	m.cursor = 0
	m.scrollOffset = 0
	m.clampCursor()
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""
	if m.lastKey == "z" {
		m.lastKey = ""
		if m.foldCommand(msg.String()) {
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.slots.TotalSlots()-1 {
			m.cursor++
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.PageUp):
		pageSize := m.viewportHeight() / 2
		if pageSize < 1 {
			pageSize = 1
		}
		m.cursor -= pageSize
		m.clampCursor()
	case key.Matches(msg, m.keys.PageDown):
		pageSize := m.viewportHeight() / 2
		if pageSize < 1 {
			pageSize = 1
		}
		m.cursor += pageSize
		m.clampCursor()
	case key.Matches(msg, m.keys.GoToTop):
		// Handle 'gg' - go to top when g is pressed twice
		if m.lastKey == "g" {
			m.cursor = 0
			m.adjustScroll()
			m.lastKey = ""
		} else {
			m.lastKey = "g"
		}
		return m, nil
	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = m.slots.TotalSlots() - 1
		m.clampCursor()
	case key.Matches(msg, m.keys.Fold):
		m.closeFold()
	case key.Matches(msg, m.keys.Unfold):
		m.openFold()
	case key.Matches(msg, m.keys.FoldPrefix):
		m.lastKey = "z"
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.filterInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.ClearSearch):
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.applyFilter()
		}
	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.slots.Item(m.cursor); ok {
			m.confirm.Ask(m.deleteRequest(r))
		}
	}
	m.lastKey = ""
	return m, nil
}

// foldCommand handles the second key of a z sequence.
func (m *Model) foldCommand(k string) bool {
	switch k {
	case "a":
		m.toggleFold()
	case "o":
		m.openFold()
	case "c":
		m.closeFold()
	case "A":
		m.toggleFoldRecursive()
	case "O":
		m.setFoldRecursive(false)
	case "C":
		m.setFoldRecursive(true)
	case "M":
		m.closeAllFolds()
	case "R":
		m.openAllFolds()
	default:
		return false
	}
	return true
}

// Folding methods

func (m *Model) toggleFold() {
	h, ok := m.currentHeader()
	if !ok {
		return
	}
	m.slots.ToggleCollapse(h.ID())
	m.cursor = h.Index()
	m.clampCursor()
}

func (m *Model) openFold() {
	h, ok := m.currentHeader()
	if !ok {
		return
	}
	m.slots.Expand(h.ID())
	m.cursor = h.Index()
	m.clampCursor()
}

func (m *Model) closeFold() {
	h, ok := m.currentHeader()
	if !ok {
		return
	}
	m.slots.Collapse(h.ID())
	m.cursor = h.Index()
	m.clampCursor()
}

func (m *Model) toggleFoldRecursive() {
	h, ok := m.currentHeader()
	if !ok {
		return
	}
	m.setFoldRecursive(!h.IsCollapsed)
}

// setFoldRecursive collapses or expands the group under the cursor together
// with every group below it.
func (m *Model) setFoldRecursive(collapse bool) {
	h, ok := m.currentHeader()
	if !ok {
		return
	}
	node := h.Node
	within := func(info slots.GroupInfo[string, models.Record]) bool {
		for n := info.Node; n != nil; n = n.Parent() {
			if n == node {
				return true
			}
		}
		return false
	}
	if collapse {
		m.slots.CollapseWhere(within)
	} else {
		m.slots.ExpandWhere(within)
	}
	m.focusNode(node)
}

func (m *Model) closeAllFolds() {
	top, ok := m.topLevelGroup()
	m.slots.CollapseAll()
	if ok {
		m.focusNode(top)
	} else {
		m.clampCursor()
	}
}

func (m *Model) openAllFolds() {
	h, ok := m.currentHeader()
	m.slots.ExpandAll()
	if ok {
		m.focusNode(h.Node)
	} else {
		m.clampCursor()
	}
}

// topLevelGroup is the outermost group containing the cursor.
func (m Model) topLevelGroup() (*grouping.Node, bool) {
	h, ok := m.currentHeader()
	if !ok {
		return nil, false
	}
	n := h.Node
	for n.Parent() != nil && n.Parent().HasParent() {
		n = n.Parent()
	}
	return n, true
}

func (m *Model) focusNode(node *grouping.Node) {
	if i := m.headerIndex(node); i >= 0 {
		m.cursor = i
	}
	m.clampCursor()
}

// deleteRequest lists every group holding r, since deleting it removes all
// of its slots.
func (m Model) deleteRequest(r models.Record) confirm.Request {
	req := confirm.Request{ID: r.ID, Title: r.Title}
	for n := range m.ctrl.Root().Descendants() {
		if n.Has(r.ID) {
			req.Groups = append(req.Groups, render.NodeLabel(n))
		}
	}
	return req
}

// deleteRecord removes id and moves the cursor to the neighbouring item.
func (m *Model) deleteRecord(id string) {
	next, hasNext := m.slots.AdjacentItem(id)
	if m.deleter != nil {
		if err := m.deleter.Delete(id); err != nil {
			m.statusMessage = errorStyle.Render("Delete failed: " + err.Error())
			return
		}
	}
	if !m.ctrl.Delete(id) {
		m.statusMessage = "Record already gone"
		return
	}
	m.log.WithField("record", id).Info("deleted record")
	if hasNext {
		if i := m.slots.IndexOfKey(next.ID); i >= 0 {
			m.cursor = i
		}
	}
	m.clampCursor()
	m.statusMessage = "Deleted 1 record"
}
