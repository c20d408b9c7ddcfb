package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/zetachan/encore/internal/catalog"
	"github.com/zetachan/encore/internal/shared"
)

// SelectionChannel is a single-slot rendezvous between the run goroutine
// and whatever surface collects the human's choice. Request opens the
// slot; exactly one Resolve fulfills it. A nil candidate means skip.
type SelectionChannel struct {
	mu      sync.Mutex
	ch      chan *catalog.Candidate
	resolve sync.Once
}

// NewSelectionChannel creates an empty channel with no open request.
func NewSelectionChannel() *SelectionChannel {
	return &SelectionChannel{}
}

// Request opens the slot and returns the channel the decision will
// arrive on. It fails if a request is already outstanding.
func (s *SelectionChannel) Request() (<-chan *catalog.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		return nil, fmt.Errorf("%w: a selection is already awaiting a decision", shared.ErrInvalidInput)
	}
	s.ch = make(chan *catalog.Candidate, 1)
	s.resolve = sync.Once{}
	return s.ch, nil
}

// Resolve delivers the decision for the outstanding request. Extra
// calls after the first are ignored; calling with no open request is an
// error.
func (s *SelectionChannel) Resolve(choice *catalog.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil {
		return fmt.Errorf("%w: no selection is awaiting a decision", shared.ErrInvalidInput)
	}
	s.resolve.Do(func() {
		s.ch <- choice
		s.ch = nil
	})
	return nil
}

// Await blocks until the decision arrives or ctx is done. The slot is
// closed either way.
func (s *SelectionChannel) Await(ctx context.Context, ch <-chan *catalog.Candidate) (*catalog.Candidate, error) {
	select {
	case choice := <-ch:
		return choice, nil
	case <-ctx.Done():
		s.mu.Lock()
		s.ch = nil
		s.mu.Unlock()
		return nil, ctx.Err()
	}
}
