// package report renders the final summary of a playlist run.
package report

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// AlternateMatch records a song added under a different artist than the
// one that performed it.
type AlternateMatch struct {
	Original    string
	FoundName   string
	FoundArtist string
}

// Report summarizes a completed run.
type Report struct {
	Message                  string
	PlaylistURL              string
	Venue                    string
	TotalSongs               int
	AddedSongs               []string
	AddedWithDifferentArtist []AlternateMatch
	MissingSongs             []string
	HasMedleys               bool
}

// AddedCount counts every song that made it into the playlist,
// regardless of which search found it.
func (r Report) AddedCount() int {
	return len(r.AddedSongs) + len(r.AddedWithDifferentArtist)
}

// Render produces the full report with section tables. Set pretty=false
// for plain list output (non-terminal writers).
func Render(r Report, pretty bool) string {
	var b strings.Builder

	b.WriteString(r.Message + "\n")
	if r.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", r.Venue)
	}
	fmt.Fprintf(&b, "Added %d of %d songs\n", r.AddedCount(), r.TotalSongs)
	if r.HasMedleys {
		b.WriteString("Setlist contained medleys; joined titles were matched individually\n")
	}
	if r.PlaylistURL != "" {
		fmt.Fprintf(&b, "Playlist: %s\n", r.PlaylistURL)
	}

	if len(r.AddedSongs) > 0 {
		b.WriteString("\nAdded:\n")
		if pretty {
			b.WriteString(renderList("Song", r.AddedSongs))
		} else {
			for i, song := range r.AddedSongs {
				fmt.Fprintf(&b, "  %d. %s\n", i+1, song)
			}
		}
	}

	if len(r.AddedWithDifferentArtist) > 0 {
		b.WriteString("\nAdded with different artist:\n")
		if pretty {
			tw := newTable([]string{"Setlist Song", "Found Track", "Artist"})
			for _, m := range r.AddedWithDifferentArtist {
				tw.AppendRow(table.Row{m.Original, m.FoundName, m.FoundArtist})
			}
			b.WriteString(tw.Render() + "\n")
		} else {
			for _, m := range r.AddedWithDifferentArtist {
				fmt.Fprintf(&b, "  %s -> %s by %s\n", m.Original, m.FoundName, m.FoundArtist)
			}
		}
	}

	if len(r.MissingSongs) > 0 {
		b.WriteString("\nNot found on Spotify:\n")
		if pretty {
			b.WriteString(renderList("Song", r.MissingSongs))
		} else {
			for _, song := range r.MissingSongs {
				fmt.Fprintf(&b, "  - %s\n", song)
			}
		}
	}

	return b.String()
}

func newTable(headers []string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw
}

func renderList(header string, items []string) string {
	tw := newTable([]string{"#", header})
	for i, item := range items {
		tw.AppendRow(table.Row{i + 1, item})
	}
	return tw.Render() + "\n"
}
