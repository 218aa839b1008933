package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fluxcrm/flux/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive client",
	Long: `Open the full-screen interactive client.

The UI restores your stored session, then walks the same screens as the web
client: sign in, organization selection, and the CRM tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsInteractive() {
			return fmt.Errorf("the interactive client needs a terminal")
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		program := tea.NewProgram(tui.NewModel(a.ctrl), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	},
}
