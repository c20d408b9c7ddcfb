package match

import (
	"context"
	"fmt"

	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/shared"
)

// Outcome is the terminal result for one song title. Candidate is nil
// when the title stayed unresolved; exactly one Outcome exists per input
// title.
type Outcome struct {
	Title             string
	Candidate         *catalog.Candidate
	ViaOriginalArtist bool
}

// Matched reports whether the title resolved to a catalog track.
func (o Outcome) Matched() bool {
	return o.Candidate != nil
}

// PendingSelection is a suspended disambiguation: the broad search found
// candidates but the automatic-accept rule did not apply, so a human
// must pick one (or skip). NextOffset is where the next "more results"
// page starts.
type PendingSelection struct {
	Title      string              `json:"title"`
	Candidates []catalog.Candidate `json:"candidates"`
	Query      string              `json:"query"`
	NextOffset int                 `json:"next_offset"`
}

// Exhausted reports whether a further results page of size n means the
// catalog has no more hits (fewer than a full page came back).
func Exhausted(pageLen int) bool {
	return pageLen < catalog.PageSize
}

// Selector suspends the per-song loop until an external decision
// arrives. AwaitSelection returns the chosen candidate, or nil for an
// explicit skip. Implementations persist the pending selection before
// blocking so the wait survives a process restart.
type Selector interface {
	AwaitSelection(ctx context.Context, pending *PendingSelection) (*catalog.Candidate, error)
}

// Resolver runs the per-song decision machine:
//
//	SearchExact -> SearchBroad -> AwaitingSelection -> Resolved
//
// An artist-scoped hit resolves immediately and never asks for a
// selection. A broad search with no hits resolves to Unresolved. No
// state is re-entered; each title gets a fresh pass through Resolve.
type Resolver struct {
	service  catalog.Service
	selector Selector
	artist   string
}

// NewResolver creates a Resolver matching against the given artist.
func NewResolver(service catalog.Service, selector Selector, artist string) *Resolver {
	return &Resolver{service: service, selector: selector, artist: artist}
}

// Resolve decides the outcome for one title.
func (r *Resolver) Resolve(ctx context.Context, title string) (Outcome, error) {
	// SearchExact: the top artist-scoped hit is accepted as-is, with no
	// similarity check against the requested title.
	candidate, err := r.service.SearchWithArtist(ctx, title, r.artist)
	if err != nil {
		return Outcome{}, fmt.Errorf("artist search for %q: %w", title, err)
	}
	if candidate != nil {
		return Outcome{Title: title, Candidate: candidate, ViaOriginalArtist: true}, nil
	}

	// SearchBroad: title-only, first page.
	candidates, err := r.service.SearchByTitle(ctx, title, 0)
	if err != nil {
		return Outcome{}, fmt.Errorf("title search for %q: %w", title, err)
	}
	if len(candidates) == 0 {
		return Outcome{Title: title}, nil
	}

	pending := &PendingSelection{
		Title:      title,
		Candidates: candidates,
		Query:      title,
		NextOffset: catalog.PageSize,
	}
	return r.ResumePending(ctx, pending)
}

// ResumePending enters the machine at AwaitingSelection with an already
// constructed (possibly restored-from-checkpoint) pending selection.
func (r *Resolver) ResumePending(ctx context.Context, pending *PendingSelection) (Outcome, error) {
	if r.selector == nil {
		return Outcome{}, fmt.Errorf("%w: no selector configured for %q", shared.ErrInvalidInput, pending.Title)
	}

	choice, err := r.selector.AwaitSelection(ctx, pending)
	if err != nil {
		return Outcome{}, fmt.Errorf("selection for %q: %w", pending.Title, err)
	}
	if choice == nil {
		return Outcome{Title: pending.Title}, nil
	}
	return Outcome{Title: pending.Title, Candidate: choice, ViaOriginalArtist: false}, nil
}
