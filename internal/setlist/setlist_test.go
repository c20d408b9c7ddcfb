package setlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zetachan/encore/internal/shared"
)

func TestSplitSongs(t *testing.T) {
	t.Run("plain lines stay single songs", func(t *testing.T) {
		songs := SplitSongs([]string{"Airbag", "Creep"})
		if len(songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(songs))
		}
		for _, song := range songs {
			if song.FromMedley {
				t.Errorf("expected %s untagged, got medley", song.Title)
			}
		}
	})

	t.Run("medley lines split and tag each part", func(t *testing.T) {
		songs := SplitSongs([]string{"Paranoid Android / Creep / Just"})
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}
		want := []string{"Paranoid Android", "Creep", "Just"}
		for i, song := range songs {
			if song.Title != want[i] {
				t.Errorf("song %d: expected %q, got %q", i, want[i], song.Title)
			}
			if !song.FromMedley {
				t.Errorf("expected %s tagged as medley", song.Title)
			}
		}
	})

	t.Run("empty lines and parts are dropped", func(t *testing.T) {
		songs := SplitSongs([]string{"", "  ", "Airbag /  / Creep"})
		if len(songs) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(songs))
		}
	})
}

func TestHasMedleys(t *testing.T) {
	sl := Setlist{Songs: []Song{{Title: "Airbag"}}}
	if sl.HasMedleys() {
		t.Error("expected no medleys")
	}
	sl.Songs = append(sl.Songs, Song{Title: "Creep", FromMedley: true})
	if !sl.HasMedleys() {
		t.Error("expected medleys detected")
	}
}

func TestCityFromVenue(t *testing.T) {
	tests := []struct {
		venue string
		want  string
	}{
		{"Madison Square Garden, New York, USA", "New York, USA"},
		{"Wembley Stadium, London, England", "London, England"},
		{"Some Venue Without City", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := CityFromVenue(tc.venue); got != tc.want {
			t.Errorf("CityFromVenue(%q) = %q, want %q", tc.venue, got, tc.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://www.setlist.fm/setlist/x.html") {
		t.Error("expected https URL recognized")
	}
	if !IsURL("http://example.com") {
		t.Error("expected http URL recognized")
	}
	if IsURL("setlist.json") {
		t.Error("expected file path not recognized as URL")
	}
}

func TestLoadFile(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "setlist.json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
		return path
	}

	t.Run("valid file loads with medley splitting", func(t *testing.T) {
		path := writeFile(t, `{
			"artist": "Radiohead",
			"event_date": "July 1, 2023",
			"venue": "Madison Square Garden, New York, USA",
			"songs": ["Airbag", "Paranoid Android / Creep"]
		}`)

		sl, err := LoadFile(path)
		if err != nil {
			t.Fatalf("expected load to succeed, got %v", err)
		}
		if sl.Artist != "Radiohead" {
			t.Errorf("expected artist, got %q", sl.Artist)
		}
		if len(sl.Songs) != 3 {
			t.Fatalf("expected 3 songs after splitting, got %d", len(sl.Songs))
		}
		if !sl.Songs[2].FromMedley {
			t.Error("expected medley tag to apply")
		}
		if sl.City != "New York, USA" {
			t.Errorf("expected city derived from venue, got %q", sl.City)
		}
	})

	t.Run("missing artist fails validation", func(t *testing.T) {
		path := writeFile(t, `{"event_date": "July 1, 2023", "venue": "Somewhere, City", "songs": ["Airbag"]}`)
		if _, err := LoadFile(path); !errors.Is(err, shared.ErrScrape) {
			t.Errorf("expected scrape error, got %v", err)
		}
	})

	t.Run("no songs fails validation", func(t *testing.T) {
		path := writeFile(t, `{"artist": "Radiohead", "event_date": "July 1, 2023", "venue": "Somewhere, City", "songs": []}`)
		if _, err := LoadFile(path); !errors.Is(err, shared.ErrScrape) {
			t.Errorf("expected scrape error, got %v", err)
		}
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		path := writeFile(t, `not json`)
		if _, err := LoadFile(path); !errors.Is(err, shared.ErrScrape) {
			t.Errorf("expected scrape error, got %v", err)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := LoadFile("/nonexistent/setlist.json"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
