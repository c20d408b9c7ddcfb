package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/match"
	"github.com/zetachan/encore/internal/pipeline"
	"github.com/zetachan/encore/internal/report"
	"github.com/zetachan/encore/internal/shared"
)

func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Build a playlist from a setlist.fm URL or a local setlist JSON file",
		ArgsUsage: "<url-or-file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "discard",
				Usage: "Discard an interrupted run instead of refusing to start",
			},
		},
		Action: r.Run,
	}
}

func resumeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "resume",
		Usage:  "Continue an interrupted run from its last checkpoint",
		Action: r.Resume,
	}
}

// Run starts a fresh playlist build and drives it to completion on the
// terminal, prompting for selections as they come up.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	source := cmd.Args().First()
	if source == "" {
		return fmt.Errorf("%w: setlist URL or file path", shared.ErrMissingArgument)
	}

	if err := r.acquireLock(); err != nil {
		return err
	}
	defer r.releaseLock()

	store, err := r.openStore()
	if err != nil {
		return err
	}

	if existing, err := store.Load(); err == nil {
		if !cmd.Bool("discard") {
			return fmt.Errorf("%w: resume it with 'encore resume' or pass --discard", shared.ErrRunInProgress)
		}
		if err := store.Abandon(existing.ID); err != nil {
			return err
		}
		r.logger.Info("discarded interrupted run", "id", existing.ID)
	} else if !errors.Is(err, shared.ErrNoCheckpoint) {
		return err
	}

	sl, err := r.loadSetlist(ctx, source)
	if err != nil {
		return err
	}
	r.logger.Info("loaded setlist", "artist", sl.Artist, "venue", sl.Venue, "songs", len(sl.Songs))

	service, err := r.newCatalog(ctx)
	if err != nil {
		return err
	}

	assembler := pipeline.NewAssembler(service, store, r.logger)
	events := assembler.Start(ctx, *sl)
	return r.consumeEvents(ctx, assembler, events)
}

// Resume continues the persisted run, re-presenting a pending selection
// if the interruption happened mid-question.
func (r *Runner) Resume(ctx context.Context, cmd *cli.Command) error {
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

	assembler := pipeline.NewAssembler(service, store, r.logger)
	events, err := assembler.Resume(ctx)
	if err != nil {
		return err
	}
	return r.consumeEvents(ctx, assembler, events)
}

// consumeEvents drains the run's event stream, prompting on stdin when
// a song needs disambiguation.
func (r *Runner) consumeEvents(ctx context.Context, assembler *pipeline.Assembler, events <-chan pipeline.Event) error {
	scanner := bufio.NewScanner(r.input)

	for event := range events {
		switch event := event.(type) {
		case pipeline.ProgressUpdate:
			if event.Processed < event.Total {
				r.writePlain("[%d/%d] %s\n", event.Processed+1, event.Total, event.CurrentSong)
			}

		case pipeline.SelectionRequested:
			if err := r.promptSelection(ctx, assembler, scanner, event.Pending); err != nil {
				return err
			}

		case pipeline.RunSucceeded:
			pretty := isatty.IsTerminal(os.Stdout.Fd())
			r.writePlainln("%s", report.Render(event.Report, pretty))
			return nil

		case pipeline.RunFailed:
			return event.Err
		}
	}
	return nil
}

// promptSelection shows the candidate list and loops on stdin until the
// user selects a track, asks for more results, or skips the song.
func (r *Runner) promptSelection(ctx context.Context, assembler *pipeline.Assembler, scanner *bufio.Scanner, pending *match.PendingSelection) error {
	r.writePlainHeader(fmt.Sprintf("No exact match for %q", pending.Title))
	r.printCandidates(pending.Candidates, 0)

	for {
		r.writePlain("\nSelect a number, (m)ore results, or (s)kip: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read selection: %w", err)
			}
			return fmt.Errorf("%w: input closed during selection", shared.ErrInvalidInput)
		}
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))

		switch answer {
		case "s", "skip":
			return assembler.Skip()
		case "m", "more":
			shown := len(pending.Candidates)
			page, err := assembler.MoreCandidates(ctx)
			if errors.Is(err, shared.ErrNoResults) {
				r.writePlain("No more results.\n")
				continue
			}
			if err != nil {
				return err
			}
			r.printCandidates(page, shown)
			if match.Exhausted(len(page)) {
				r.writePlain("End of results.\n")
			}
		default:
			n, err := strconv.Atoi(answer)
			if err != nil || n < 1 || n > len(pending.Candidates) {
				r.writePlain("Enter a number between 1 and %d, m, or s.\n", len(pending.Candidates))
				continue
			}
			candidate := pending.Candidates[n-1]
			return assembler.SubmitSelection(&candidate)
		}
	}
}

func (r *Runner) printCandidates(candidates []catalog.Candidate, offset int) {
	for i, c := range candidates {
		line := fmt.Sprintf("  %d. %s by %s", offset+i+1, c.Name, c.ArtistName)
		if c.AlbumName != "" {
			line += fmt.Sprintf(" (%s)", c.AlbumName)
		}
		r.writePlain("%s\n", line)
	}
}
