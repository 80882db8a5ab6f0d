package worker

import (
	"context"
	"testing"
	"time"

	"github.com/ellinstar/offering-app/internal/amqp"
	"github.com/ellinstar/offering-app/internal/core"
	"github.com/ellinstar/offering-app/internal/mirror/memory"
)

type fakeSource struct {
	records  map[int64]core.ContributionRecord
	mirrored map[int64]bool
	attempts map[int64]int
}

func newFakeSource(records ...core.ContributionRecord) *fakeSource {
	f := &fakeSource{
		records:  map[int64]core.ContributionRecord{},
		mirrored: map[int64]bool{},
		attempts: map[int64]int{},
	}
	for _, r := range records {
		f.records[r.ID] = r
	}
	return f
}

func (f *fakeSource) UnmirroredByIDs(ctx context.Context, ids []int64) ([]core.ContributionRecord, error) {
	var out []core.ContributionRecord
	for _, id := range ids {
		if r, ok := f.records[id]; ok && !f.mirrored[id] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) PendingMirror(ctx context.Context, limit int) ([]core.ContributionRecord, error) {
	var out []core.ContributionRecord
	for id := int64(1); len(out) < limit && id <= int64(len(f.records)); id++ {
		if r, ok := f.records[id]; ok && !f.mirrored[id] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) MarkMirrored(ctx context.Context, id int64) error {
	f.mirrored[id] = true
	return nil
}

func (f *fakeSource) MarkMirrorError(ctx context.Context, id int64) error {
	f.attempts[id]++
	return nil
}

func record(id int64, person string) core.ContributionRecord {
	return core.ContributionRecord{
		ID:        id,
		Date:      "2024-01-08",
		Year:      2024,
		WeekEnd:   "2024-01-14",
		Type:      "tithe",
		Person:    person,
		Amount:    100,
		CreatedAt: time.Now(),
	}
}

func TestHandleBatchSavedMirrorsAndMarks(t *testing.T) {
	source := newFakeSource(record(1, "Alice"), record(2, "Bob"))
	dest := memory.New()
	w := NewMirrorWorker(source, dest, 10)

	msg := amqp.NewBatchSavedMessage([]int64{1, 2}, "2024-01-08", "tithe")
	if err := w.HandleBatchSaved(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := len(dest.Records()); got != 2 {
		t.Fatalf("mirrored %d records, want 2", got)
	}
	if !source.mirrored[1] || !source.mirrored[2] {
		t.Fatalf("mirrored flags = %v", source.mirrored)
	}

	// Redelivery of the same message must not duplicate rows.
	if err := w.HandleBatchSaved(context.Background(), msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got := len(dest.Records()); got != 2 {
		t.Fatalf("after redelivery %d records, want 2", got)
	}
}

func TestHandleBatchSavedPartialFailure(t *testing.T) {
	source := newFakeSource(record(1, "Alice"), record(2, "Bob"))
	dest := memory.New()
	dest.FailNext = true
	w := NewMirrorWorker(source, dest, 10)

	msg := amqp.NewBatchSavedMessage([]int64{1, 2}, "2024-01-08", "tithe")
	if err := w.HandleBatchSaved(context.Background(), msg); err == nil {
		t.Fatal("expected error when an append fails")
	}

	// Record 1 failed and stays pending; record 2 went through.
	if source.mirrored[1] {
		t.Fatal("failed record marked as mirrored")
	}
	if source.attempts[1] != 1 {
		t.Fatalf("attempts[1] = %d, want 1", source.attempts[1])
	}
	if !source.mirrored[2] {
		t.Fatal("successful record not marked")
	}

	// The retry only has to mirror the failed record.
	if err := w.HandleBatchSaved(context.Background(), msg); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := len(dest.Records()); got != 2 {
		t.Fatalf("after retry %d records, want 2", got)
	}
}

func TestStartupCheckDrainsBacklog(t *testing.T) {
	source := newFakeSource(record(1, "Alice"), record(2, "Bob"), record(3, "Carol"))
	source.mirrored[2] = true
	dest := memory.New()
	w := NewMirrorWorker(source, dest, 10)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if got := len(dest.Records()); got != 2 {
		t.Fatalf("mirrored %d records, want 2", got)
	}
	if !source.mirrored[1] || !source.mirrored[3] {
		t.Fatalf("mirrored flags = %v", source.mirrored)
	}
}

func TestProcessPendingEmptyIsNoop(t *testing.T) {
	source := newFakeSource()
	dest := memory.New()
	w := NewMirrorWorker(source, dest, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(dest.Records()) != 0 {
		t.Fatal("nothing should have been mirrored")
	}
}
