// package setlist extracts concert setlists from setlist.fm pages.
//
// A setlist row may record a medley (several songs joined by "/"); those
// lines are split into independent titles before the matching pipeline
// sees them, with each unit tagged as medley-derived.
package setlist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zetachan/encore/internal/shared"
)

// Song is a single performed title after medley splitting.
type Song struct {
	Title      string `json:"title"`
	FromMedley bool   `json:"from_medley"`
}

// Setlist holds everything scraped from one concert page.
type Setlist struct {
	Artist    string `json:"artist"`
	EventDate string `json:"event_date"`
	Venue     string `json:"venue"`
	City      string `json:"city"`
	Songs     []Song `json:"songs"`
}

// HasMedleys reports whether any song was split out of a medley line.
func (s *Setlist) HasMedleys() bool {
	for _, song := range s.Songs {
		if song.FromMedley {
			return true
		}
	}
	return false
}

// Titles returns the ordered song titles.
func (s *Setlist) Titles() []string {
	titles := make([]string, len(s.Songs))
	for i, song := range s.Songs {
		titles[i] = song.Title
	}
	return titles
}

// SplitSongs expands raw setlist lines into individual songs.
// A line containing "/" is a medley; each part becomes its own Song
// tagged FromMedley. Empty parts and empty lines are dropped.
func SplitSongs(lines []string) []Song {
	var songs []Song
	for _, line := range lines {
		parts := strings.Split(line, "/")
		medley := len(parts) > 1
		for _, part := range parts {
			title := strings.TrimSpace(part)
			if title == "" {
				continue
			}
			songs = append(songs, Song{Title: title, FromMedley: medley})
		}
	}
	return songs
}

// IsURL reports whether the source argument is a web address rather
// than a local file path.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// CityFromVenue extracts the city portion of a venue string, which
// setlist.fm formats as "Venue Name, City, Country".
func CityFromVenue(venue string) string {
	parts := strings.Split(venue, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.Join(parts[1:], ","))
}

// fileSetlist is the on-disk JSON shape accepted by LoadFile. Songs are
// raw lines; medley splitting happens on load.
type fileSetlist struct {
	Artist    string   `json:"artist"`
	EventDate string   `json:"event_date"`
	Venue     string   `json:"venue"`
	City      string   `json:"city"`
	Songs     []string `json:"songs"`
}

// LoadFile reads a setlist from a JSON file, applying the same medley
// splitting and validation as the scraper.
func LoadFile(path string) (*Setlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read setlist file: %w", err)
	}

	var raw fileSetlist
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid setlist JSON: %v", shared.ErrScrape, err)
	}

	sl := &Setlist{
		Artist:    strings.TrimSpace(raw.Artist),
		EventDate: strings.TrimSpace(raw.EventDate),
		Venue:     strings.TrimSpace(raw.Venue),
		City:      strings.TrimSpace(raw.City),
		Songs:     SplitSongs(raw.Songs),
	}
	if sl.City == "" {
		sl.City = CityFromVenue(sl.Venue)
	}

	if err := sl.validate(); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *Setlist) validate() error {
	if s.Artist == "" {
		return fmt.Errorf("%w: could not find artist name on the page", shared.ErrScrape)
	}
	if s.EventDate == "" {
		return fmt.Errorf("%w: could not find event date on the page", shared.ErrScrape)
	}
	if s.Venue == "" {
		return fmt.Errorf("%w: could not find venue information on the page", shared.ErrScrape)
	}
	if len(s.Songs) == 0 {
		return fmt.Errorf("%w: no songs found on the page, make sure this is a setlist page", shared.ErrScrape)
	}
	return nil
}
