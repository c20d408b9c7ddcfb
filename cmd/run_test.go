package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/pipeline"
	"github.com/zetachan/encore/internal/setlist"
	"github.com/zetachan/encore/internal/shared"
	tu "github.com/zetachan/encore/internal/testing"
)

// nullStore discards checkpoints; the prompt tests only care about the
// terminal conversation.
type nullStore struct{}

func (nullStore) Save(*pipeline.Run) error     { return nil }
func (nullStore) Load() (*pipeline.Run, error) { return nil, shared.ErrNoCheckpoint }
func (nullStore) Complete(*pipeline.Run) error { return nil }
func (nullStore) Abandon(string) error         { return nil }

func promptSetlist(titles ...string) setlist.Setlist {
	songs := make([]setlist.Song, len(titles))
	for i, title := range titles {
		songs[i] = setlist.Song{Title: title}
	}
	return setlist.Setlist{
		Artist:    "Radiohead",
		EventDate: "2023-07-01",
		Venue:     "Madison Square Garden, New York, USA",
		City:      "New York, USA",
		Songs:     songs,
	}
}

func TestPromptSelection(t *testing.T) {
	run := func(t *testing.T, service *tu.MockCatalog, input string) (string, error) {
		t.Helper()
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Output: output,
			Input:  strings.NewReader(input),
			Logger: shared.NewLogger(io.Discard),
		})

		assembler := pipeline.NewAssembler(service, nullStore{}, runner.logger)
		events := assembler.Start(context.Background(), promptSetlist("Creep"))
		err := runner.consumeEvents(context.Background(), assembler, events)
		return output.String(), err
	}

	t.Run("short further page reports the end of results", func(t *testing.T) {
		service := &tu.MockCatalog{
			SearchByTitleFunc: func(ctx context.Context, title string, offset int) ([]catalog.Candidate, error) {
				if offset == 0 {
					return []catalog.Candidate{
						{ID: "c1", Name: "Creep", ArtistName: "Cover Band"},
						{ID: "c2", Name: "Creep", ArtistName: "Someone"},
						{ID: "c3", Name: "Creep", ArtistName: "Someone Else"},
					}, nil
				}
				return []catalog.Candidate{{ID: "c4", Name: "Creep (Live)", ArtistName: "Bar Band"}}, nil
			},
		}

		out, err := run(t, service, "m\n4\n")
		if err != nil {
			t.Fatalf("expected the run to complete, got %v", err)
		}
		if !strings.Contains(out, "4. Creep (Live) by Bar Band") {
			t.Errorf("expected the further page printed with offset numbering, got %q", out)
		}
		if !strings.Contains(out, "End of results.") {
			t.Errorf("expected the exhaustion notice after a short page, got %q", out)
		}
		if len(service.AppendedTracks) != 1 || service.AppendedTracks[0] != "c4" {
			t.Errorf("expected the picked track appended, got %v", service.AppendedTracks)
		}
	})

	t.Run("skip resolves the question without an append", func(t *testing.T) {
		service := &tu.MockCatalog{
			SearchByTitleFunc: func(ctx context.Context, title string, offset int) ([]catalog.Candidate, error) {
				return []catalog.Candidate{{ID: "c1", Name: "Creep", ArtistName: "Cover Band"}}, nil
			},
		}

		out, err := run(t, service, "s\n")
		if err != nil {
			t.Fatalf("expected the run to complete, got %v", err)
		}
		if !strings.Contains(out, "No exact match for \"Creep\"") {
			t.Errorf("expected the prompt header, got %q", out)
		}
		if len(service.AppendedTracks) != 0 {
			t.Errorf("expected no appends after a skip, got %v", service.AppendedTracks)
		}
	})
}
