package browser

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-slots/internal/tui/browser/components/confirm"
	"github.com/mattsolo1/grove-slots/pkg/controller"
	"github.com/mattsolo1/grove-slots/pkg/grouping"
	"github.com/mattsolo1/grove-slots/pkg/models"
	"github.com/mattsolo1/grove-slots/pkg/slots"
)

// Deleter removes a record from persistent storage.
type Deleter interface {
	Delete(id string) error
}

// Manager is the slot projection the browser renders.
type Manager = slots.Manager[string, models.Record]

// Model is the main model for the record browser TUI. It never copies the
// projection: every frame reads only the visible window from the manager.
type Model struct {
	ctrl    *controller.Controller
	slots   *Manager
	deleter Deleter
	log     logrus.FieldLogger

	keys         KeyMap
	help         help.Model
	filterInput  textinput.Model
	confirm      confirm.Model
	cursor       int
	scrollOffset int
	width        int
	height       int
	lastKey      string // For detecting 'gg' and 'z' sequences

	statusMessage string
}

// New creates a browser over a controller and its slot manager. deleter may
// be nil when records are not backed by a store.
func New(ctrl *controller.Controller, m *Manager, deleter Deleter, log logrus.FieldLogger) Model {
	ti := textinput.New()
	ti.Placeholder = "text #tag kind:x"
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.SetValue(ctrl.Query().String())

	return Model{
		ctrl:        ctrl,
		slots:       m,
		deleter:     deleter,
		log:         log,
		keys:        keys,
		help:        help.New(),
		filterInput: ti,
		confirm:     confirm.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Cursor is the index of the selected slot.
func (m Model) Cursor() int { return m.cursor }

// currentHeader returns the header under the cursor, or the header of the
// group containing the item under the cursor.
func (m Model) currentHeader() (*slots.GroupHeaderSlot[string, models.Record], bool) {
	if h, ok := m.slots.Header(m.cursor); ok {
		return h, true
	}
	s, ok := m.slots.Slot(m.cursor)
	if !ok {
		return nil, false
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if h, ok := m.slots.Header(i); ok && h.Depth() < s.Depth() {
			return h, true
		}
	}
	return nil, false
}

// headerIndex finds the visible header of node.
func (m Model) headerIndex(node *grouping.Node) int {
	for i, n := 0, m.slots.TotalSlots(); i < n; i++ {
		if h, ok := m.slots.Header(i); ok && h.Node == node {
			return i
		}
	}
	return -1
}

func (m *Model) clampCursor() {
	total := m.slots.TotalSlots()
	if m.cursor >= total {
		m.cursor = total - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScroll()
}

// adjustScroll ensures the cursor is visible in the viewport.
func (m *Model) adjustScroll() {
	viewportHeight := m.viewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if m.cursor >= m.scrollOffset+viewportHeight {
		m.scrollOffset = m.cursor - viewportHeight + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// viewportHeight is the number of slot rows that fit between the title and
// the footer.
func (m Model) viewportHeight() int {
	h := m.height - 6
	if h < 1 {
		return 1
	}
	return h
}
