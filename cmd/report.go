package main

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"github.com/zetachan/encore/internal/report"
)

func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Show the summary of the most recent run",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the report as JSON",
			},
		},
		Action: r.Report,
	}
}

// Report rebuilds and prints the most recent run's summary from its
// checkpoint rows.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore()
	if err != nil {
		return err
	}

	run, err := store.LoadLatest()
	if err != nil {
		return err
	}

	rep := run.Report()
	if cmd.Bool("json") {
		return r.writeJSON(rep, true)
	}

	pretty := isatty.IsTerminal(os.Stdout.Fd())
	return r.writePlain("%s", report.Render(rep, pretty))
}
