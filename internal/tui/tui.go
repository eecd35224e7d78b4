package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"groundcite/internal/session"
)

// Run starts the TUI for s and blocks until the user quits. API keys are
// wiped when it returns.
func Run(s *session.Session, exportPath string) error {
	if !isTerminal() {
		return fmt.Errorf("groundcite TUI requires a terminal. Use subcommands for non-interactive mode")
	}
	defer s.Close()

	m := NewModel(s).WithExportPath(exportPath)

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
	}
	if os.Getenv("TERM") != "" {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(m, opts...)
	_, err := p.Run()
	return err
}

// isTerminal checks if stdin is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
