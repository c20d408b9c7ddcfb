// Spotify implementation of [Service] on top of zmb3/spotify.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"github.com/zetachan/encore/internal/shared"
)

// SpotifyClient implements [Service] against the Spotify Web API.
// All calls go through a shared rate limiter.
type SpotifyClient struct {
	client  *spotify.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewSpotifyClient wraps an authenticated HTTP client (see internal/auth).
// requestsPerSecond <= 0 disables throttling.
func NewSpotifyClient(httpClient *http.Client, requestsPerSecond float64, logger *log.Logger) *SpotifyClient {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &SpotifyClient{
		client:  spotify.New(httpClient),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

var _ Service = (*SpotifyClient)(nil)

// CurrentUser returns the authenticated user's profile.
func (s *SpotifyClient) CurrentUser(ctx context.Context) (*User, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return &User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// CreatePlaylist creates a private playlist for the current user.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, name, description string) (*Playlist, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	pl, err := s.client.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		return nil, classify(err)
	}

	s.logger.Info("created playlist", "id", pl.ID, "name", pl.Name)
	return &Playlist{
		ID:   string(pl.ID),
		Name: pl.Name,
		URL:  pl.ExternalURLs["spotify"],
	}, nil
}

// SearchWithArtist searches for a track scoped to the original artist,
// taking only the top hit.
func (s *SpotifyClient) SearchWithArtist(ctx context.Context, title, artist string) (*Candidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("track:%s artist:%s", title, artist)
	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, classify(err)
	}

	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, nil
	}
	candidate := fromFullTrack(result.Tracks.Tracks[0])
	return &candidate, nil
}

// SearchByTitle searches by title alone, returning up to PageSize hits
// starting at offset.
func (s *SpotifyClient) SearchByTitle(ctx context.Context, title string, offset int) ([]Candidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := s.client.Search(ctx, title, spotify.SearchTypeTrack, spotify.Limit(PageSize), spotify.Offset(offset))
	if err != nil {
		return nil, classify(err)
	}

	if result.Tracks == nil {
		return nil, nil
	}
	candidates := make([]Candidate, 0, len(result.Tracks.Tracks))
	for _, track := range result.Tracks.Tracks {
		candidates = append(candidates, fromFullTrack(track))
	}
	return candidates, nil
}

// AppendTrack adds a single track to the playlist.
func (s *SpotifyClient) AppendTrack(ctx context.Context, playlistID, trackID string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), spotify.ID(trackID)); err != nil {
		return classify(err)
	}
	return nil
}

// fromFullTrack converts an API track into a Candidate, preferring the
// medium album image when one exists.
func fromFullTrack(track spotify.FullTrack) Candidate {
	c := Candidate{
		URI:       string(track.URI),
		ID:        string(track.ID),
		Name:      track.Name,
		AlbumName: track.Album.Name,
	}
	if len(track.Artists) > 0 {
		c.ArtistName = track.Artists[0].Name
	}
	if len(track.Album.Images) > 1 {
		c.AlbumImageURL = track.Album.Images[1].URL
	} else if len(track.Album.Images) > 0 {
		c.AlbumImageURL = track.Album.Images[0].URL
	}
	return c
}

// classify maps API failures onto the shared error taxonomy. Errors are
// surfaced unmodified beyond wrapping; there is no retry here.
func classify(err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", shared.ErrTokenExpired, se.Message)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, se.Message)
		default:
			return fmt.Errorf("%w: status %d: %s", shared.ErrUpstream, se.Status, se.Message)
		}
	}
	return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
}
