package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/zetachan/encore/internal/catalog"
)

var _ list.Item = candidateItem{}

// candidateItem wraps [catalog.Candidate] to implement [list.Item].
type candidateItem struct {
	candidate catalog.Candidate
}

func (i candidateItem) FilterValue() string { return i.candidate.Name }
func (i candidateItem) Title() string       { return i.candidate.Name }
func (i candidateItem) Description() string {
	desc := i.candidate.ArtistName
	if i.candidate.AlbumName != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.candidate.AlbumName)
	}
	return desc
}
