package browser

import "github.com/charmbracelet/lipgloss"

// Styles used by the browser. Colors are ANSI 256 so they degrade on
// limited terminals.
var (
	orange = lipgloss.Color("208")
	blue   = lipgloss.Color("39")
	gray   = lipgloss.Color("245")
	red    = lipgloss.Color("203")

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(blue)
	highlightStyle = lipgloss.NewStyle().Foreground(orange)
	groupStyle     = lipgloss.NewStyle().Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(orange)
	mutedStyle     = lipgloss.NewStyle().Foreground(gray)
	faintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(red)
)
