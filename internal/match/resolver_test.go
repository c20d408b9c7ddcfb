package match

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zetachan/encore/internal/catalog"
	tu "github.com/zetachan/encore/internal/testing"
)

// stubSelector answers every selection with a fixed choice.
type stubSelector struct {
	choice *catalog.Candidate
	err    error
	asked  []*PendingSelection
}

func (s *stubSelector) AwaitSelection(ctx context.Context, pending *PendingSelection) (*catalog.Candidate, error) {
	s.asked = append(s.asked, pending)
	return s.choice, s.err
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("artist-scoped hit resolves immediately", func(t *testing.T) {
		hit := &catalog.Candidate{ID: "t1", Name: "Creep", ArtistName: "Radiohead"}
		service := &tu.MockCatalog{
			SearchWithArtistFunc: func(ctx context.Context, title, artist string) (*catalog.Candidate, error) {
				if artist != "Radiohead" {
					t.Errorf("expected artist Radiohead, got %s", artist)
				}
				return hit, nil
			},
		}
		selector := &stubSelector{}
		resolver := NewResolver(service, selector, "Radiohead")

		outcome, err := resolver.Resolve(ctx, "Creep")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !outcome.Matched() {
			t.Fatal("expected a matched outcome")
		}
		if !outcome.ViaOriginalArtist {
			t.Error("expected match via original artist")
		}
		if outcome.Candidate.ID != "t1" {
			t.Errorf("expected candidate t1, got %s", outcome.Candidate.ID)
		}
		if len(selector.asked) != 0 {
			t.Error("artist-scoped hit must not ask for a selection")
		}
	})

	t.Run("no hits anywhere resolves unmatched", func(t *testing.T) {
		service := &tu.MockCatalog{}
		resolver := NewResolver(service, &stubSelector{}, "Radiohead")

		outcome, err := resolver.Resolve(ctx, "Unknown Song")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome.Matched() {
			t.Error("expected unmatched outcome")
		}
		if outcome.Title != "Unknown Song" {
			t.Errorf("expected title preserved, got %s", outcome.Title)
		}
	})

	t.Run("broad hits suspend for selection", func(t *testing.T) {
		candidates := []catalog.Candidate{
			{ID: "c1", Name: "Creep", ArtistName: "Someone Else"},
			{ID: "c2", Name: "Creep (Cover)", ArtistName: "Cover Band"},
		}
		service := &tu.MockCatalog{
			SearchByTitleFunc: func(ctx context.Context, title string, offset int) ([]catalog.Candidate, error) {
				if offset != 0 {
					t.Errorf("expected first page, got offset %d", offset)
				}
				return candidates, nil
			},
		}
		selector := &stubSelector{choice: &candidates[1]}
		resolver := NewResolver(service, selector, "Radiohead")

		outcome, err := resolver.Resolve(ctx, "Creep")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !outcome.Matched() {
			t.Fatal("expected matched outcome from selection")
		}
		if outcome.ViaOriginalArtist {
			t.Error("selection match must not claim the original artist")
		}
		if outcome.Candidate.ID != "c2" {
			t.Errorf("expected chosen candidate, got %s", outcome.Candidate.ID)
		}

		if len(selector.asked) != 1 {
			t.Fatalf("expected exactly one selection, got %d", len(selector.asked))
		}
		pending := selector.asked[0]
		if pending.Query != "Creep" {
			t.Errorf("expected query Creep, got %s", pending.Query)
		}
		if pending.NextOffset != catalog.PageSize {
			t.Errorf("expected next offset %d, got %d", catalog.PageSize, pending.NextOffset)
		}
	})

	t.Run("nil choice means skip", func(t *testing.T) {
		service := &tu.MockCatalog{
			SearchByTitleFunc: func(ctx context.Context, title string, offset int) ([]catalog.Candidate, error) {
				return []catalog.Candidate{{ID: "c1"}}, nil
			},
		}
		resolver := NewResolver(service, &stubSelector{choice: nil}, "Radiohead")

		outcome, err := resolver.Resolve(ctx, "Creep")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome.Matched() {
			t.Error("expected skipped song to stay unmatched")
		}
	})

	t.Run("search errors propagate", func(t *testing.T) {
		boom := fmt.Errorf("search exploded")
		service := &tu.MockCatalog{
			SearchWithArtistFunc: func(ctx context.Context, title, artist string) (*catalog.Candidate, error) {
				return nil, boom
			},
		}
		resolver := NewResolver(service, &stubSelector{}, "Radiohead")

		if _, err := resolver.Resolve(ctx, "Creep"); !errors.Is(err, boom) {
			t.Errorf("expected wrapped search error, got %v", err)
		}
	})

	t.Run("selector errors propagate", func(t *testing.T) {
		boom := fmt.Errorf("selection aborted")
		service := &tu.MockCatalog{
			SearchByTitleFunc: func(ctx context.Context, title string, offset int) ([]catalog.Candidate, error) {
				return []catalog.Candidate{{ID: "c1"}}, nil
			},
		}
		resolver := NewResolver(service, &stubSelector{err: boom}, "Radiohead")

		if _, err := resolver.Resolve(ctx, "Creep"); !errors.Is(err, boom) {
			t.Errorf("expected wrapped selector error, got %v", err)
		}
	})
}

func TestExhausted(t *testing.T) {
	if Exhausted(catalog.PageSize) {
		t.Error("a full page is not exhausted")
	}
	if !Exhausted(catalog.PageSize - 1) {
		t.Error("a short page is exhausted")
	}
	if !Exhausted(0) {
		t.Error("an empty page is exhausted")
	}
}
