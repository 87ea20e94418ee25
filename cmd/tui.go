package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-slots/internal/tui/browser"
)

// NewTuiCmd creates the `slots tui` command.
func NewTuiCmd(app **App) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the grouped records interactively",
		Long: `Launch an interactive Terminal User Interface over the slot projection.
Only the rows inside the viewport are read, so large record sets stay fast.
Folds follow vim: za zo zc zA zO zC zM zR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			a := *app
			f := flags.merge(cmd, a.Config)
			records, err := a.loadRecords(f.file)
			if err != nil {
				return err
			}
			p, err := a.newProjection(records, f)
			if err != nil {
				return err
			}
			defer p.Close()

			var deleter browser.Deleter
			if f.file == "" {
				st, err := a.openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				deleter = st
			}

			model := browser.New(p.ctrl, p.slots, deleter, a.Log)
			prog := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := prog.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
