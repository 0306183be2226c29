package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tessera/internal/shared"
	"github.com/desertthunder/tessera/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the liked-songs terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file so they don't tear the rendered view
	fileLogger, err := shared.NewFileLogger(shared.DefaultLogPath())
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.openSpotify(ctx); err != nil {
		return err
	}

	loader, cache := r.newLoader(0)
	state := loader.State()

	model := ui.NewModel(ctx, ui.Options{
		Catalog:     loader,
		Cache:       cache,
		Collages:    r.collageEngine(),
		CollageOpts: r.collageDefaults(),
		Login: func(ctx context.Context) error {
			if err := r.login(ctx, true); err != nil {
				return err
			}
			state.SetAuthenticated(true)
			return nil
		},
		OpenURL: r.openURL,
		Logger:  r.logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
