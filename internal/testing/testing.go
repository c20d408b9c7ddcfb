// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"

	"github.com/zetachan/encore/internal/catalog"
)

// MockCatalog is a test double for [catalog.Service]. Each method
// delegates to the matching function field when set and returns zero
// values otherwise.
type MockCatalog struct {
	CurrentUserFunc      func(ctx context.Context) (*catalog.User, error)
	CreatePlaylistFunc   func(ctx context.Context, name, description string) (*catalog.Playlist, error)
	SearchWithArtistFunc func(ctx context.Context, title, artist string) (*catalog.Candidate, error)
	SearchByTitleFunc    func(ctx context.Context, title string, offset int) ([]catalog.Candidate, error)
	AppendTrackFunc      func(ctx context.Context, playlistID, trackID string) error

	AppendedTracks []string
}

var _ catalog.Service = (*MockCatalog)(nil)

func (m *MockCatalog) CurrentUser(ctx context.Context) (*catalog.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return &catalog.User{ID: "mock-user"}, nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name, description string) (*catalog.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, name, description)
	}
	return &catalog.Playlist{ID: "mock-playlist", Name: name, URL: "https://open.spotify.com/playlist/mock"}, nil
}

func (m *MockCatalog) SearchWithArtist(ctx context.Context, title, artist string) (*catalog.Candidate, error) {
	if m.SearchWithArtistFunc != nil {
		return m.SearchWithArtistFunc(ctx, title, artist)
	}
	return nil, nil
}

func (m *MockCatalog) SearchByTitle(ctx context.Context, title string, offset int) ([]catalog.Candidate, error) {
	if m.SearchByTitleFunc != nil {
		return m.SearchByTitleFunc(ctx, title, offset)
	}
	return nil, nil
}

func (m *MockCatalog) AppendTrack(ctx context.Context, playlistID, trackID string) error {
	m.AppendedTracks = append(m.AppendedTracks, trackID)
	if m.AppendTrackFunc != nil {
		return m.AppendTrackFunc(ctx, playlistID, trackID)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}
