package pipeline

import (
	"github.com/zetachan/encore/internal/match"
	"github.com/zetachan/encore/internal/report"
)

// Event is the closed set of notifications a run emits. The marker
// method keeps the union sealed so consumers can switch exhaustively.
type Event interface {
	isEvent()
}

// ProgressUpdate is emitted before and after each song is processed.
// Added counts every track appended so far, by either search strategy.
type ProgressUpdate struct {
	CurrentSong string
	Processed   int
	Total       int
	Added       int
}

// SelectionRequested is emitted when a song needs human disambiguation.
// The same pending selection is re-presented after a restart.
type SelectionRequested struct {
	Pending *match.PendingSelection
}

// RunSucceeded carries the final report.
type RunSucceeded struct {
	Report report.Report
}

// RunFailed is emitted when the run aborts. The checkpoint keeps its
// last persisted state; nothing is retried automatically.
type RunFailed struct {
	Err error
}

func (ProgressUpdate) isEvent()     {}
func (SelectionRequested) isEvent() {}
func (RunSucceeded) isEvent()       {}
func (RunFailed) isEvent()          {}
