package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-jupyter/internal/tui/browser"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

// NewTuiCmd creates the `jx tui` command.
func NewTuiCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [path]",
		Short: "Browse the server in an interactive tree",
		Long: `Launch an interactive Terminal User Interface for browsing the contents
server. Directories expand in place; files and notebooks open in your editor
and are saved back when the editor exits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check for TTY
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("TUI mode requires an interactive terminal")
			}

			root := "/"
			if len(args) > 0 {
				root = args[0]
			}

			model, err := browser.New(*svc, root)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model, tea.WithAltScreen())
			_, runErr := p.Run()

			kept, err := model.Close()
			for _, local := range kept {
				fmt.Fprintf(os.Stderr, "Unsaved edits kept in %s\n", local)
			}
			if runErr != nil {
				return fmt.Errorf("error running TUI: %w", runErr)
			}
			return err
		},
	}
	return cmd
}
