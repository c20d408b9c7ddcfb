package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/match"
	"github.com/zetachan/encore/internal/setlist"
	"github.com/zetachan/encore/internal/shared"
)

// Assembler drives a playlist run from scraped setlist to final report.
// It processes songs strictly in setlist order, persists a checkpoint
// before every suspension point, and surfaces disambiguation requests
// through its event channel. At most one run is in flight per Assembler.
type Assembler struct {
	service catalog.Service
	store   Store
	logger  *log.Logger

	selection *SelectionChannel

	mu     sync.Mutex
	run    *Run
	events chan Event
}

// NewAssembler creates an Assembler backed by the given catalog service
// and checkpoint store.
func NewAssembler(service catalog.Service, store Store, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{
		service:   service,
		store:     store,
		logger:    logger,
		selection: NewSelectionChannel(),
	}
}

// Start begins a fresh run for the setlist and returns the event stream.
// The channel closes after a terminal RunSucceeded or RunFailed event.
func (a *Assembler) Start(ctx context.Context, sl setlist.Setlist) <-chan Event {
	events := make(chan Event, 16)
	run := NewRun(sl)

	a.mu.Lock()
	a.run = run
	a.events = events
	a.mu.Unlock()

	go a.execute(ctx, run, events)
	return events
}

// Resume picks up the persisted active run, if any, and continues it
// from its checkpoint. A pending selection is re-presented through a
// SelectionRequested event before any further processing.
func (a *Assembler) Resume(ctx context.Context) (<-chan Event, error) {
	run, err := a.store.Load()
	if err != nil {
		return nil, err
	}

	events := make(chan Event, 16)

	a.mu.Lock()
	a.run = run
	a.events = events
	a.mu.Unlock()

	a.logger.Info("resuming run", "id", run.ID, "processed", run.Processed, "total", len(run.Setlist.Songs))

	go a.execute(ctx, run, events)
	return events, nil
}

// SubmitSelection resolves the outstanding disambiguation with the
// chosen candidate.
func (a *Assembler) SubmitSelection(choice *catalog.Candidate) error {
	if choice == nil {
		return fmt.Errorf("%w: selection candidate is nil", shared.ErrInvalidInput)
	}
	return a.selection.Resolve(choice)
}

// Skip resolves the outstanding disambiguation by leaving the song
// unmatched.
func (a *Assembler) Skip() error {
	return a.selection.Resolve(nil)
}

// MoreCandidates fetches the next page for the outstanding selection,
// appends it to the pending candidate list, and re-persists the
// checkpoint. The selection stays open; the new page is returned so the
// caller can extend its display. An empty page past the end returns
// shared.ErrNoResults.
func (a *Assembler) MoreCandidates(ctx context.Context) ([]catalog.Candidate, error) {
	a.mu.Lock()
	run := a.run
	a.mu.Unlock()

	if run == nil || run.Pending == nil {
		return nil, fmt.Errorf("%w: no selection is awaiting a decision", shared.ErrInvalidInput)
	}
	pending := run.Pending

	page, err := a.service.SearchByTitle(ctx, pending.Query, pending.NextOffset)
	if err != nil {
		return nil, fmt.Errorf("further results for %q: %w", pending.Query, err)
	}
	if len(page) == 0 {
		return nil, fmt.Errorf("%w: no further results for %q", shared.ErrNoResults, pending.Query)
	}

	pending.Candidates = append(pending.Candidates, page...)
	pending.NextOffset += catalog.PageSize
	if err := a.store.Save(run); err != nil {
		return nil, fmt.Errorf("failed to checkpoint further results: %w", err)
	}
	return page, nil
}

// AwaitSelection implements match.Selector. The pending selection is
// written to the checkpoint before the wait begins, so a crash while
// blocked restarts at the same question. The SelectionRequested event
// only goes out once the checkpoint write has succeeded.
func (a *Assembler) AwaitSelection(ctx context.Context, pending *match.PendingSelection) (*catalog.Candidate, error) {
	a.mu.Lock()
	run := a.run
	events := a.events
	run.Pending = pending
	a.mu.Unlock()

	if err := a.store.Save(run); err != nil {
		return nil, fmt.Errorf("failed to checkpoint pending selection: %w", err)
	}

	ch, err := a.selection.Request()
	if err != nil {
		return nil, err
	}
	events <- SelectionRequested{Pending: pending}
	return a.selection.Await(ctx, ch)
}

// execute walks the setlist from the run's checkpoint to completion.
func (a *Assembler) execute(ctx context.Context, run *Run, events chan<- Event) {
	defer close(events)

	fail := func(err error) {
		a.logger.Error("run failed", "id", run.ID, "error", err)
		events <- RunFailed{Err: err}
	}

	if run.PlaylistID == "" {
		playlist, err := a.createPlaylist(ctx, run.Setlist)
		if err != nil {
			fail(err)
			return
		}
		run.PlaylistID = playlist.ID
		run.PlaylistURL = playlist.URL
		run.PlaylistName = playlist.Name
		if err := a.store.Save(run); err != nil {
			fail(fmt.Errorf("failed to checkpoint playlist: %w", err))
			return
		}
		a.logger.Info("created playlist", "name", playlist.Name, "url", playlist.URL)
	}

	resolver := match.NewResolver(a.service, a, run.Setlist.Artist)
	songs := run.Setlist.Songs
	total := len(songs)

	for i := run.Processed; i < total; i++ {
		song := songs[i]

		events <- ProgressUpdate{
			CurrentSong: displayTitle(songs, i),
			Processed:   i,
			Total:       total,
			Added:       run.AddedCount(),
		}

		var outcome match.Outcome
		var err error
		if run.Pending != nil {
			// Restored checkpoint: the question was already asked, so the
			// persisted candidates are re-presented without a new search.
			outcome, err = resolver.ResumePending(ctx, run.Pending)
		} else {
			outcome, err = resolver.Resolve(ctx, song.Title)
		}
		if err != nil {
			fail(err)
			return
		}

		if outcome.Matched() {
			if err := a.service.AppendTrack(ctx, run.PlaylistID, outcome.Candidate.ID); err != nil {
				fail(fmt.Errorf("failed to add %q: %w", outcome.Candidate.Name, err))
				return
			}
		}

		run.Outcomes = append(run.Outcomes, outcome)
		run.Processed = i + 1
		run.Pending = nil
		if err := a.store.Save(run); err != nil {
			fail(fmt.Errorf("failed to checkpoint progress: %w", err))
			return
		}

		events <- ProgressUpdate{
			CurrentSong: song.Title,
			Processed:   run.Processed,
			Total:       total,
			Added:       run.AddedCount(),
		}
	}

	if err := a.store.Complete(run); err != nil {
		fail(fmt.Errorf("failed to finalize run: %w", err))
		return
	}

	report := run.Report()
	a.logger.Info("run complete", "added", report.AddedCount(), "total", report.TotalSongs)
	events <- RunSucceeded{Report: report}
}

// displayTitle annotates the song following a medley-origin title so
// progress output keeps the joined-performance context visible.
func displayTitle(songs []setlist.Song, i int) string {
	if i > 0 && songs[i-1].FromMedley {
		return songs[i].Title + " (part of medley)"
	}
	return songs[i].Title
}

// createPlaylist builds the destination playlist named for the show.
func (a *Assembler) createPlaylist(ctx context.Context, sl setlist.Setlist) (*catalog.Playlist, error) {
	name := fmt.Sprintf("%s - %s - %s", sl.Artist, sl.City, sl.EventDate)
	description := fmt.Sprintf("Live at %s. Created from setlist.fm", sl.Venue)
	playlist, err := a.service.CreatePlaylist(ctx, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	return playlist, nil
}
