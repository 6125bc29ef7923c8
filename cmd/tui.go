package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/clipworks/clipctl/internal/shared"
	"github.com/clipworks/clipctl/internal/ui"
)

// Tui launches the interactive library browser.
func (r *Runner) Tui(ctx context.Context, cmd *cli.Command) error {
	poll := r.pollOptions()

	// Log to a file while the TUI owns the terminal.
	logPath := filepath.Join(os.TempDir(), "clipctl-tui.log")
	if fileLogger, err := shared.NewFileLogger(logPath); err == nil {
		poll.Logger = shared.WithLogger(fileLogger, "component", "tui")
	}

	model := ui.NewModel(ctx, r.lib, r.client, poll)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse the library interactively",
		Action: r.Tui,
	}
}
