// Package memory is an in-process mirror used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ellinstar/offering-app/internal/core"
	"github.com/ellinstar/offering-app/internal/mirror"
)

type Store struct {
	mu    sync.Mutex
	items []core.ContributionRecord

	// FailNext makes the next Append fail once. Test hook.
	FailNext bool
}

var _ mirror.RecordAppender = (*Store)(nil)

func New() *Store { return &Store{} }

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r core.ContributionRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		s.FailNext = false
		return "", errors.New("append rejected")
	}
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Records returns a snapshot of everything appended so far.
func (s *Store) Records() []core.ContributionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ContributionRecord, len(s.items))
	copy(out, s.items)
	return out
}
