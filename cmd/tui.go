package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/tasks"
	"github.com/desertthunder/spt/internal/ui"
)

// TUI launches the interactive now-playing view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.currentConfig().Log.File
	if logPath == "" {
		var err error
		if logPath, err = shared.DefaultLogPath(); err != nil {
			return err
		}
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.logger = fileLogger
	if r.spotify != nil {
		r.spotify.SetLogger(shared.WithLogger(fileLogger, "service", r.spotify.Name()))
	}

	updates := make(chan tasks.Update, 32)
	engine, err := r.ready(ctx, updates)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, updates, ui.OptionsFrom(r.currentConfig()))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
