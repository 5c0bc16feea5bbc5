package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/formatter"
	"github.com/desertthunder/tunetx/internal/shared"
	"github.com/desertthunder/tunetx/internal/tasks"
	"github.com/desertthunder/tunetx/internal/ui"
)

// TUI launches the interactive terminal UI for playlist transfer.
//
// Logs go to the log file only while the UI owns the terminal, so --logs is best left off.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	from, to, err := r.route(cmd.String("from"), cmd.String("to"))
	if err != nil {
		return err
	}

	origin, err := r.service(ctx, from.Token)
	if err != nil {
		return fmt.Errorf("%s: %w", from.Name, err)
	}
	destination, err := r.service(ctx, to.Token)
	if err != nil {
		return fmt.Errorf("%s: %w", to.Name, err)
	}

	dry := cmd.Bool("dry")
	logger := shared.WithLogger(r.logger, "from", from.Token, "to", to.Token, "ui", true)

	model := ui.NewModel(ctx, ui.Options{
		Origin:      origin,
		Destination: to,
		DryRun:      dry,
		Transferer: func(progress chan<- tasks.ProgressUpdate) *tasks.Transferer {
			return tasks.NewTransferer(origin, destination,
				tasks.WithDryRun(dry),
				tasks.WithLogger(logger),
				tasks.WithProgress(progress),
			)
		},
	})

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	m, ok := final.(*ui.Model)
	if !ok {
		return nil
	}
	batch, err := m.Result()
	if len(batch.Results) > 0 {
		formatter.SummaryTable(r.output, batch.Results)
	}
	return err
}
