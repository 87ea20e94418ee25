package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-slots/internal/render"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
)

func (m Model) View() string {
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}

	title := headerStyle.Render("Records")
	if q := m.ctrl.Query(); q.IsNotEmpty() {
		title += " " + mutedStyle.Render(fmt.Sprintf("[filter: %s]", q.String()))
	}

	body := m.renderTreeView()
	if m.confirm.Active {
		body = m.confirm.View()
	}

	var footer string
	switch {
	case m.filterInput.Focused():
		footer = m.filterInput.View()
	case m.statusMessage != "":
		footer = m.statusMessage
	default:
		footer = m.help.View(m.keys)
	}

	return "\n" + lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		"",
		footer,
	)
}

// renderTreeView renders only the slots inside the viewport.
func (m Model) renderTreeView() string {
	total := m.slots.TotalSlots()
	if total == 0 {
		if m.ctrl.Query().IsNotEmpty() {
			return mutedStyle.Render("No records match the filter.")
		}
		return mutedStyle.Render("No records.")
	}

	var b strings.Builder
	viewportHeight := m.viewportHeight()
	prefixes := render.NewPrefixer(m.slots)
	window := m.slots.SlotRange(m.scrollOffset, viewportHeight)

	for _, s := range window {
		isSelected := s.Index() == m.cursor
		cursor := "  "
		if isSelected {
			cursor = highlightStyle.Render("▶ ")
		}
		prefix := mutedStyle.Render(prefixes.Prefix(s.Index()))
		b.WriteString(cursor + prefix + m.styleSlot(s, isSelected))
		b.WriteString("\n")
	}

	if total > viewportHeight {
		start := m.scrollOffset + 1
		end := m.scrollOffset + len(window)
		b.WriteString("\n")
		b.WriteString(faintStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start, end, total)))
	}

	return b.String()
}

func (m Model) styleSlot(s slots.Slot, isSelected bool) string {
	switch v := s.(type) {
	case *render.Header:
		line := render.FoldIndicator(v) + render.Label(v)
		if isSelected {
			line = groupStyle.Render(line)
		}
		line += " " + mutedStyle.Render(render.Counts(v))
		if agg := render.Aggregates(v.Aggregates); agg != "" {
			line += "  " + faintStyle.Render(agg)
		}
		return line
	case *slots.ItemSlot[string, models.Record]:
		line := v.Item.Title
		if isSelected {
			line = selectedStyle.Render(line)
		}
		if v.Item.Kind != "" {
			line += " " + mutedStyle.Render(string(v.Item.Kind))
		}
		return line
	}
	return ""
}
