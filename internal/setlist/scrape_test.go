package setlist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zetachan/encore/internal/shared"
)

const setlistPage = `<!DOCTYPE html>
<html>
<body>
  <div class="breadcrumb">
    <a href="/setlists/radiohead-bd6bd12.html">Radiohead</a>
  </div>
  <div class="dateBlock eventDate">
    <span class="month">Jul</span> <span class="day">1</span> <span class="year">2023</span>
  </div>
  <span>
    <a href="/venue/madison-square-garden-new-york-ny-usa-23d61c07.html">Madison Square Garden, New York, NY, USA</a>
  </span>
  <div class="setlistList">
    <ol>
      <li><a class="songLabel" href="/song/1">Airbag</a></li>
      <li><a class="songLabel" href="/song/2">Paranoid Android / Creep</a></li>
      <li><a class="songLabel" href="/song/3">Lucky</a></li>
    </ol>
  </div>
</body>
</html>`

func TestParse(t *testing.T) {
	t.Run("extracts the full setlist", func(t *testing.T) {
		sl, err := Parse(strings.NewReader(setlistPage))
		if err != nil {
			t.Fatalf("expected parse to succeed, got %v", err)
		}

		if sl.Artist != "Radiohead" {
			t.Errorf("expected artist Radiohead, got %q", sl.Artist)
		}
		if sl.EventDate != "Jul 1 2023" {
			t.Errorf("expected event date, got %q", sl.EventDate)
		}
		if sl.Venue != "Madison Square Garden, New York, NY, USA" {
			t.Errorf("expected venue, got %q", sl.Venue)
		}
		if sl.City != "New York, NY, USA" {
			t.Errorf("expected city from venue, got %q", sl.City)
		}

		want := []Song{
			{Title: "Airbag"},
			{Title: "Paranoid Android", FromMedley: true},
			{Title: "Creep", FromMedley: true},
			{Title: "Lucky"},
		}
		if len(sl.Songs) != len(want) {
			t.Fatalf("expected %d songs, got %d", len(want), len(sl.Songs))
		}
		for i, song := range sl.Songs {
			if song != want[i] {
				t.Errorf("song %d: expected %+v, got %+v", i, want[i], song)
			}
		}
	})

	t.Run("artist falls back to the headline anchor", func(t *testing.T) {
		page := strings.Replace(setlistPage,
			`<div class="breadcrumb">
    <a href="/setlists/radiohead-bd6bd12.html">Radiohead</a>
  </div>`,
			`<h1 class="setlistHeadline"><a href="/x">Radiohead</a> Setlist</h1>`, 1)

		sl, err := Parse(strings.NewReader(page))
		if err != nil {
			t.Fatalf("expected parse to succeed, got %v", err)
		}
		if sl.Artist != "Radiohead" {
			t.Errorf("expected fallback artist, got %q", sl.Artist)
		}
	})

	t.Run("page without songs fails", func(t *testing.T) {
		page := `<html><body>
			<div class="breadcrumb"><a href="/setlists/x.html">Radiohead</a></div>
			<div class="eventDate">Jul 1 2023</div>
			<span><a href="/venue/x.html">Somewhere, City</a></span>
		</body></html>`
		if _, err := Parse(strings.NewReader(page)); !errors.Is(err, shared.ErrScrape) {
			t.Errorf("expected scrape error, got %v", err)
		}
	})

	t.Run("page without artist fails", func(t *testing.T) {
		page := strings.Replace(setlistPage, `href="/setlists/radiohead-bd6bd12.html"`, `href="/other"`, 1)
		if _, err := Parse(strings.NewReader(page)); !errors.Is(err, shared.ErrScrape) {
			t.Errorf("expected scrape error, got %v", err)
		}
	})
}

func TestScraperFetch(t *testing.T) {
	t.Run("fetches and parses a live page", func(t *testing.T) {
		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte(setlistPage))
		}))
		defer server.Close()

		scraper := NewScraper(5*time.Second, "encore-test/1.0")
		sl, err := scraper.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("expected fetch to succeed, got %v", err)
		}
		if sl.Artist != "Radiohead" {
			t.Errorf("expected parsed setlist, got %+v", sl)
		}
		if gotUA != "encore-test/1.0" {
			t.Errorf("expected custom user agent, got %q", gotUA)
		}
	})

	t.Run("non-200 status maps to upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		scraper := NewScraper(5*time.Second, "")
		if _, err := scraper.Fetch(context.Background(), server.URL); !errors.Is(err, shared.ErrUpstream) {
			t.Errorf("expected upstream error, got %v", err)
		}
	})

	t.Run("unreachable host maps to network error", func(t *testing.T) {
		scraper := NewScraper(time.Second, "")
		if _, err := scraper.Fetch(context.Background(), "http://127.0.0.1:1"); !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected network error, got %v", err)
		}
	})
}
