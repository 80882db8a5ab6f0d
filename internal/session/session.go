// Package session owns the application state that the original design kept
// in ambient globals: the in-memory record cache and its refresh lifecycle.
// Views subscribe for change notification; the aggregation engine itself
// stays a pure function invoked with cache snapshots.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ellinstar/offering-app/internal/core"
)

// SaveResult describes one successfully persisted entry batch.
type SaveResult struct {
	Records []core.ContributionRecord
	Date    string
	Type    string
	Count   int
}

// Session holds the record cache. The cache is loaded wholesale at startup
// and refreshed wholesale after every successful save; there is no
// incremental patching, so report reads never see half-applied state.
type Session struct {
	store RecordStore
	now   func() time.Time

	mu    sync.RWMutex
	cache []core.ContributionRecord

	subMu sync.Mutex
	subs  []func(SaveResult)
}

func New(store RecordStore) *Session {
	return &Session{store: store, now: time.Now}
}

// Load replaces the cache with a full scan of the store.
func (s *Session) Load(ctx context.Context) error {
	records, err := s.store.GetAllRecords(ctx)
	if err != nil {
		return fmt.Errorf("load record cache: %w", err)
	}
	s.mu.Lock()
	s.cache = records
	s.mu.Unlock()
	return nil
}

// SaveBatch validates and persists an entry batch. On validation or storage
// failure nothing is persisted and the cache is untouched, so readers never
// see unsaved data as saved. After a confirmed write the cache is reloaded
// and subscribers are notified.
func (s *Session) SaveBatch(ctx context.Context, batch core.EntryBatch) (SaveResult, error) {
	records, err := batch.Records(s.now())
	if err != nil {
		return SaveResult{}, err
	}

	saved, err := s.store.InsertRecords(ctx, records)
	if err != nil {
		return SaveResult{}, fmt.Errorf("save batch: %w", err)
	}

	if err := s.Load(ctx); err != nil {
		// The write is durable; a failed re-read only staled the cache.
		slog.WarnContext(ctx, "Cache reload after save failed", "error", err)
		s.mu.Lock()
		s.cache = append(s.cache, saved...)
		s.mu.Unlock()
	}

	res := SaveResult{
		Records: saved,
		Date:    batch.Date,
		Type:    batch.Type,
		Count:   len(saved),
	}
	s.notify(res)
	return res, nil
}

// Records returns a snapshot copy of the cache.
func (s *Session) Records() []core.ContributionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.ContributionRecord, len(s.cache))
	copy(out, s.cache)
	return out
}

// Summarize runs the aggregation engine over the current cache snapshot.
func (s *Session) Summarize(dim core.Dimension, year int, personFilter string) []core.SummaryRow {
	return core.Summarize(s.Records(), dim, year, personFilter)
}

// Years lists the distinct record years, newest first. The current year is
// always present so a fresh ledger still offers a report target.
func (s *Session) Years() []int {
	seen := map[int]bool{s.now().Year(): true}
	s.mu.RLock()
	for _, r := range s.cache {
		seen[r.Year] = true
	}
	s.mu.RUnlock()

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// PersonNames returns the sorted distinct contributor names in the cache,
// the feed for entry-form autocompletion.
func (s *Session) PersonNames() []string {
	seen := map[string]bool{}
	s.mu.RLock()
	for _, r := range s.cache {
		seen[r.Person] = true
	}
	s.mu.RUnlock()

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Types returns the category registry.
func (s *Session) Types(ctx context.Context) ([]core.ContributionType, error) {
	return s.store.GetTypes(ctx)
}

// AddType registers a category name.
func (s *Session) AddType(ctx context.Context, name string) error {
	return s.store.AddType(ctx, name)
}

// Subscribe registers a callback invoked after every successful save.
// Callbacks run synchronously on the saving goroutine.
func (s *Session) Subscribe(fn func(SaveResult)) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

func (s *Session) notify(res SaveResult) {
	s.subMu.Lock()
	subs := make([]func(SaveResult), len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(res)
	}
}
