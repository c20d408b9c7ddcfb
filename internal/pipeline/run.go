package pipeline

import (
	"fmt"

	"github.com/zetachan/encore/internal/match"
	"github.com/zetachan/encore/internal/report"
	"github.com/zetachan/encore/internal/setlist"
	"github.com/zetachan/encore/internal/shared"
)

// Run is the checkpointed state of one playlist build. The assembler is
// its single writer; every mutation is persisted through a Store before
// the next suspension point.
//
// Invariants: Processed == len(Outcomes) whenever Pending is nil, at
// most one Pending exists, and a non-nil Pending always belongs to the
// song at index Processed.
type Run struct {
	ID           string
	Setlist      setlist.Setlist
	PlaylistID   string
	PlaylistURL  string
	PlaylistName string
	Outcomes     []match.Outcome
	Processed    int
	Pending      *match.PendingSelection
}

// NewRun starts a fresh run for the given setlist.
func NewRun(sl setlist.Setlist) *Run {
	return &Run{
		ID:      shared.GenerateID(),
		Setlist: sl,
	}
}

// AddedCount counts outcomes that put a track in the playlist.
func (r *Run) AddedCount() int {
	added := 0
	for _, o := range r.Outcomes {
		if o.Matched() {
			added++
		}
	}
	return added
}

// Report builds the final summary from the recorded outcomes.
func (r *Run) Report() report.Report {
	rep := report.Report{
		Message:     fmt.Sprintf("Created playlist: %s", r.PlaylistName),
		PlaylistURL: r.PlaylistURL,
		Venue:       r.Setlist.Venue,
		TotalSongs:  len(r.Setlist.Songs),
		HasMedleys:  r.Setlist.HasMedleys(),
	}

	for _, o := range r.Outcomes {
		switch {
		case o.Matched() && o.ViaOriginalArtist:
			rep.AddedSongs = append(rep.AddedSongs, o.Title)
		case o.Matched():
			rep.AddedWithDifferentArtist = append(rep.AddedWithDifferentArtist, report.AlternateMatch{
				Original:    o.Title,
				FoundName:   o.Candidate.Name,
				FoundArtist: o.Candidate.ArtistName,
			})
		default:
			rep.MissingSongs = append(rep.MissingSongs, o.Title)
		}
	}

	return rep
}

// Store persists run checkpoints. Save must complete fully before the
// caller reaches its next suspension point so a crash never corrupts
// recorded outcomes.
type Store interface {
	// Save writes the run's full state.
	Save(run *Run) error

	// Load returns the active (resumable) run, or shared.ErrNoCheckpoint.
	Load() (*Run, error)

	// Complete marks the run finished; it is no longer resumable.
	Complete(run *Run) error

	// Abandon discards an interrupted run's checkpoint.
	Abandon(id string) error
}
