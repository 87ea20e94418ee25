package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestConfirm(t *testing.T) {
	m := New()
	m.Ask(Request{ID: "tv", Title: "Television", Groups: []string{"Electronics", "Sale"}})
	assert.Contains(t, m.View(), "Electronics, Sale")

	m, cmd := m.Update(runes("y"))
	require.NotNil(t, cmd)
	assert.False(t, m.Active)
	assert.Equal(t, ConfirmedMsg{ID: "tv"}, cmd())
}

func TestCancel(t *testing.T) {
	m := New()
	m.Ask(Request{ID: "tv", Title: "Television"})

	m, cmd := m.Update(runes("q"))
	assert.Nil(t, cmd, "other keys are ignored")
	assert.True(t, m.Active)

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelledMsg{}, cmd())
	assert.Empty(t, m.View())
}
