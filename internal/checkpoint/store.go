// package checkpoint persists run state to SQLite so an interrupted
// playlist build resumes exactly where it stopped.
package checkpoint

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/match"
	"github.com/zetachan/encore/internal/pipeline"
	"github.com/zetachan/encore/internal/setlist"
	"github.com/zetachan/encore/internal/shared"
)

// SQLiteStore implements pipeline.Store over the runs schema. Saves are
// whole-state writes inside one transaction; a run is small enough that
// rewriting its rows beats tracking deltas.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save writes the run's full state, replacing any previous checkpoint
// for the same run id.
func (s *SQLiteStore) Save(run *pipeline.Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin checkpoint transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, status, artist, event_date, venue, city, playlist_id, playlist_url, playlist_name, processed)
		VALUES (?, 'active', ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			playlist_id = excluded.playlist_id,
			playlist_url = excluded.playlist_url,
			playlist_name = excluded.playlist_name,
			processed = excluded.processed,
			updated_at = CURRENT_TIMESTAMP`,
		run.ID, run.Setlist.Artist, run.Setlist.EventDate, run.Setlist.Venue, run.Setlist.City,
		run.PlaylistID, run.PlaylistURL, run.PlaylistName, run.Processed)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if err := s.saveSongs(tx, run); err != nil {
		return err
	}
	if err := s.saveOutcomes(tx, run); err != nil {
		return err
	}
	if err := s.savePending(tx, run); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint: %w", err)
	}
	return nil
}

func (s *SQLiteStore) saveSongs(tx *sql.Tx, run *pipeline.Run) error {
	if _, err := tx.Exec(`DELETE FROM run_songs WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}
	for i, song := range run.Setlist.Songs {
		_, err := tx.Exec(`INSERT INTO run_songs (run_id, position, title, from_medley) VALUES (?, ?, ?, ?)`,
			run.ID, i, song.Title, boolToInt(song.FromMedley))
		if err != nil {
			return fmt.Errorf("failed to save song %d: %w", i, err)
		}
	}
	return nil
}

func (s *SQLiteStore) saveOutcomes(tx *sql.Tx, run *pipeline.Run) error {
	if _, err := tx.Exec(`DELETE FROM run_outcomes WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to clear outcomes: %w", err)
	}
	for i, outcome := range run.Outcomes {
		var uri, trackID, name, artistName, albumName string
		if outcome.Candidate != nil {
			uri = outcome.Candidate.URI
			trackID = outcome.Candidate.ID
			name = outcome.Candidate.Name
			artistName = outcome.Candidate.ArtistName
			albumName = outcome.Candidate.AlbumName
		}
		_, err := tx.Exec(`
			INSERT INTO run_outcomes (run_id, position, title, matched, uri, track_id, name, artist_name, album_name, via_original_artist)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, outcome.Title, boolToInt(outcome.Matched()),
			uri, trackID, name, artistName, albumName, boolToInt(outcome.ViaOriginalArtist))
		if err != nil {
			return fmt.Errorf("failed to save outcome %d: %w", i, err)
		}
	}
	return nil
}

func (s *SQLiteStore) savePending(tx *sql.Tx, run *pipeline.Run) error {
	if _, err := tx.Exec(`DELETE FROM run_pending WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to clear pending selection: %w", err)
	}
	if run.Pending == nil {
		return nil
	}

	candidates, err := json.Marshal(run.Pending.Candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO run_pending (run_id, position, title, search_query, next_offset, candidates)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Processed, run.Pending.Title, run.Pending.Query, run.Pending.NextOffset, string(candidates))
	if err != nil {
		return fmt.Errorf("failed to save pending selection: %w", err)
	}
	return nil
}

// Load returns the active run, rebuilt from its checkpoint rows.
func (s *SQLiteStore) Load() (*pipeline.Run, error) {
	run := &pipeline.Run{}
	err := s.db.QueryRow(`
		SELECT id, artist, event_date, venue, city, playlist_id, playlist_url, playlist_name, processed
		FROM runs WHERE status = 'active' ORDER BY updated_at DESC LIMIT 1`).Scan(
		&run.ID, &run.Setlist.Artist, &run.Setlist.EventDate, &run.Setlist.Venue, &run.Setlist.City,
		&run.PlaylistID, &run.PlaylistURL, &run.PlaylistName, &run.Processed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	if run.Setlist.Songs, err = s.loadSongs(run.ID); err != nil {
		return nil, err
	}
	if run.Outcomes, err = s.loadOutcomes(run.ID); err != nil {
		return nil, err
	}
	if run.Pending, err = s.loadPending(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) loadSongs(runID string) ([]setlist.Song, error) {
	rows, err := s.db.Query(`SELECT title, from_medley FROM run_songs WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}
	defer rows.Close()

	var songs []setlist.Song
	for rows.Next() {
		var song setlist.Song
		var medley int
		if err := rows.Scan(&song.Title, &medley); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		song.FromMedley = medley != 0
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func (s *SQLiteStore) loadOutcomes(runID string) ([]match.Outcome, error) {
	rows, err := s.db.Query(`
		SELECT title, matched, uri, track_id, name, artist_name, album_name, via_original_artist
		FROM run_outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []match.Outcome
	for rows.Next() {
		var outcome match.Outcome
		var matched, via int
		var candidate catalog.Candidate
		err := rows.Scan(&outcome.Title, &matched, &candidate.URI, &candidate.ID,
			&candidate.Name, &candidate.ArtistName, &candidate.AlbumName, &via)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		if matched != 0 {
			outcome.Candidate = &candidate
		}
		outcome.ViaOriginalArtist = via != 0
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

func (s *SQLiteStore) loadPending(runID string) (*match.PendingSelection, error) {
	pending := &match.PendingSelection{}
	var candidates string
	err := s.db.QueryRow(`
		SELECT title, search_query, next_offset, candidates
		FROM run_pending WHERE run_id = ?`, runID).Scan(
		&pending.Title, &pending.Query, &pending.NextOffset, &candidates)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending selection: %w", err)
	}
	if err := json.Unmarshal([]byte(candidates), &pending.Candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	return pending, nil
}

// Complete marks the run finished. Its rows stay behind for reporting
// but it no longer resolves as the active run.
func (s *SQLiteStore) Complete(run *pipeline.Run) error {
	if err := s.Save(run); err != nil {
		return err
	}
	_, err := s.db.Exec(`UPDATE runs SET status = 'completed', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// Abandon discards a run's checkpoint entirely.
func (s *SQLiteStore) Abandon(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin abandon transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM run_pending WHERE run_id = ?`,
		`DELETE FROM run_outcomes WHERE run_id = ?`,
		`DELETE FROM run_songs WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return fmt.Errorf("failed to abandon run: %w", err)
		}
	}
	return tx.Commit()
}

// LoadLatest returns the most recently updated run regardless of
// status, for after-the-fact reporting.
func (s *SQLiteStore) LoadLatest() (*pipeline.Run, error) {
	run := &pipeline.Run{}
	err := s.db.QueryRow(`
		SELECT id, artist, event_date, venue, city, playlist_id, playlist_url, playlist_name, processed
		FROM runs ORDER BY updated_at DESC LIMIT 1`).Scan(
		&run.ID, &run.Setlist.Artist, &run.Setlist.EventDate, &run.Setlist.Venue, &run.Setlist.City,
		&run.PlaylistID, &run.PlaylistURL, &run.PlaylistName, &run.Processed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	if run.Setlist.Songs, err = s.loadSongs(run.ID); err != nil {
		return nil, err
	}
	if run.Outcomes, err = s.loadOutcomes(run.ID); err != nil {
		return nil, err
	}
	if run.Pending, err = s.loadPending(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
