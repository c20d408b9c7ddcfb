// package catalog adapts the Spotify Web API for setlist matching.
//
// The Service interface covers exactly the calls the pipeline needs:
// artist-scoped search, paged title search, playlist creation and track
// appends. Failures carry the shared error taxonomy so callers can tell
// an expired token from a transport failure.
package catalog

import "context"

// PageSize is how many candidates a title-only search returns per page.
const PageSize = 3

// Candidate is one search hit offered for matching. Immutable once
// returned by search.
type Candidate struct {
	URI           string `json:"uri"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	ArtistName    string `json:"artist"`
	AlbumName     string `json:"album"`
	AlbumImageURL string `json:"album_image,omitempty"`
}

// Playlist identifies a created destination playlist.
type Playlist struct {
	ID   string
	Name string
	URL  string
}

// User is the authenticated catalog account.
type User struct {
	ID          string
	DisplayName string
}

// Service defines the catalog operations used by the matching pipeline.
type Service interface {
	// CurrentUser returns the authenticated user's profile.
	CurrentUser(ctx context.Context) (*User, error)

	// CreatePlaylist creates an empty playlist owned by the current user.
	CreatePlaylist(ctx context.Context, name, description string) (*Playlist, error)

	// SearchWithArtist issues an artist-scoped track query limited to the
	// single best hit. Returns nil when nothing matches.
	SearchWithArtist(ctx context.Context, title, artist string) (*Candidate, error)

	// SearchByTitle issues a title-only query of PageSize results starting
	// at offset. Paging is stateless; the caller tracks the offset.
	SearchByTitle(ctx context.Context, title string, offset int) ([]Candidate, error)

	// AppendTrack adds one track to a playlist. The remote call is not
	// idempotent, so callers must not repeat it for the same addition.
	AppendTrack(ctx context.Context, playlistID, trackID string) error
}
