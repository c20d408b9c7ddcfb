package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"github.com/zetachan/encore/internal/pipeline"
	"github.com/zetachan/encore/internal/shared"
	"github.com/zetachan/encore/internal/ui"
)

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Build a playlist in the interactive terminal UI",
		ArgsUsage: "<url-or-file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Continue the interrupted run instead of starting a new one",
			},
		},
		Action: r.TUI,
	}
}

// TUI launches the interactive terminal UI for a playlist run.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.acquireLock(); err != nil {
		return err
	}
	defer r.releaseLock()

	store, err := r.openStore()
	if err != nil {
		return err
	}

	service, err := r.newCatalog(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath, err := r.logFilePath()
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	r.SetLogger(shared.NewLogger(logFile))

	assembler := pipeline.NewAssembler(service, store, r.logger)

	var events <-chan pipeline.Event
	if cmd.Bool("resume") {
		events, err = assembler.Resume(ctx)
		if err != nil {
			return err
		}
	} else {
		source := cmd.Args().First()
		if source == "" {
			return fmt.Errorf("%w: setlist URL or file path", shared.ErrMissingArgument)
		}
		sl, err := r.loadSetlist(ctx, source)
		if err != nil {
			return err
		}
		events = assembler.Start(ctx, *sl)
	}

	model := ui.NewModel(ctx, assembler, events)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func (r *Runner) logFilePath() (string, error) {
	dir, err := shared.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "encore-tui.log"), nil
}
