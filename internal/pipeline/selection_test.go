package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/shared"
)

func TestSelectionChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers exactly one decision", func(t *testing.T) {
		sc := NewSelectionChannel()
		ch, err := sc.Request()
		if err != nil {
			t.Fatalf("expected request to open, got %v", err)
		}

		want := &catalog.Candidate{ID: "c1"}
		if err := sc.Resolve(want); err != nil {
			t.Fatalf("expected resolve to succeed, got %v", err)
		}

		got, err := sc.Await(ctx, ch)
		if err != nil {
			t.Fatalf("expected await to succeed, got %v", err)
		}
		if got != want {
			t.Errorf("expected the submitted candidate back, got %v", got)
		}
	})

	t.Run("nil decision means skip", func(t *testing.T) {
		sc := NewSelectionChannel()
		ch, _ := sc.Request()

		if err := sc.Resolve(nil); err != nil {
			t.Fatalf("expected resolve to succeed, got %v", err)
		}
		got, err := sc.Await(ctx, ch)
		if err != nil {
			t.Fatalf("expected await to succeed, got %v", err)
		}
		if got != nil {
			t.Errorf("expected nil choice, got %v", got)
		}
	})

	t.Run("second request while one is open fails", func(t *testing.T) {
		sc := NewSelectionChannel()
		if _, err := sc.Request(); err != nil {
			t.Fatalf("first request should open, got %v", err)
		}
		if _, err := sc.Request(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected invalid input error, got %v", err)
		}
	})

	t.Run("resolve without an open request fails", func(t *testing.T) {
		sc := NewSelectionChannel()
		if err := sc.Resolve(&catalog.Candidate{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected invalid input error, got %v", err)
		}
	})

	t.Run("slot reopens after a decision", func(t *testing.T) {
		sc := NewSelectionChannel()
		ch, _ := sc.Request()
		sc.Resolve(nil)
		sc.Await(ctx, ch)

		if _, err := sc.Request(); err != nil {
			t.Errorf("expected a fresh request to open, got %v", err)
		}
	})

	t.Run("await honors context cancellation", func(t *testing.T) {
		sc := NewSelectionChannel()
		ch, _ := sc.Request()

		cancelCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		if _, err := sc.Await(cancelCtx, ch); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline error, got %v", err)
		}
	})
}
