package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ellinstar/offering-app/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testBatch(t *testing.T, persons ...string) []core.ContributionRecord {
	t.Helper()
	rows := make([]core.EntryRow, len(persons))
	for i, p := range persons {
		rows[i] = core.EntryRow{Person: p, Amount: "1000"}
	}
	records, err := core.EntryBatch{Date: "2024-01-08", Type: "tithe", Rows: rows}.Records(time.Now())
	if err != nil {
		t.Fatalf("build batch: %v", err)
	}
	return records
}

func TestInsertAndScanRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.InsertRecords(ctx, testBatch(t, "Alice", "Bob"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved %d records, want 2", len(saved))
	}
	for _, r := range saved {
		if r.ID == 0 {
			t.Fatalf("record without assigned id: %+v", r)
		}
	}

	all, err := repo.GetAllRecords(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d records, want 2", len(all))
	}
	for _, r := range all {
		if r.Date != "2024-01-08" || r.WeekEnd != "2024-01-14" || r.Year != 2024 {
			t.Fatalf("round-tripped record wrong: %+v", r)
		}
	}

	got, err := repo.GetRecord(ctx, saved[0].ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.Person != saved[0].Person || got.Amount != saved[0].Amount {
		t.Fatalf("get record = %+v, want %+v", got, saved[0])
	}
}

func TestInsertRecordsAtomicity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertRecords(ctx, testBatch(t, "Alice")); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	// A record violating the amount check mid-batch must roll back the
	// whole batch.
	bad := testBatch(t, "Bob", "Carol")
	bad[1].Amount = -1
	if _, err := repo.InsertRecords(ctx, bad); err == nil {
		t.Fatal("expected insert failure")
	}

	all, err := repo.GetAllRecords(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d records after failed batch, want prior state of 1", len(all))
	}
}

func TestSeededTypesAndAddType(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	types, err := repo.GetTypes(ctx)
	if err != nil {
		t.Fatalf("get types: %v", err)
	}
	if len(types) != 4 {
		t.Fatalf("seeded %d types, want 4", len(types))
	}

	if err := repo.AddType(ctx, "mission"); err != nil {
		t.Fatalf("add type: %v", err)
	}
	// Name is the identity: re-adding is a no-op.
	if err := repo.AddType(ctx, "mission"); err != nil {
		t.Fatalf("re-add type: %v", err)
	}

	types, err = repo.GetTypes(ctx)
	if err != nil {
		t.Fatalf("get types: %v", err)
	}
	if len(types) != 5 {
		t.Fatalf("got %d types, want 5", len(types))
	}
	for i := 1; i < len(types); i++ {
		if types[i-1].Name > types[i].Name {
			t.Fatalf("types not sorted: %v", types)
		}
	}
}

func TestMetaRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.GetMeta(ctx, "pin_hash"); err != nil || ok {
		t.Fatalf("missing key = ok %v, err %v; want absent", ok, err)
	}

	if err := repo.SetMeta(ctx, "pin_hash", "abc"); err != nil {
		t.Fatalf("set meta: %v", err)
	}
	if err := repo.SetMeta(ctx, "pin_hash", "def"); err != nil {
		t.Fatalf("overwrite meta: %v", err)
	}
	v, ok, err := repo.GetMeta(ctx, "pin_hash")
	if err != nil || !ok {
		t.Fatalf("get meta: ok %v, err %v", ok, err)
	}
	if v != "def" {
		t.Fatalf("meta = %q, want %q", v, "def")
	}

	if err := repo.DeleteMeta(ctx, "pin_hash"); err != nil {
		t.Fatalf("delete meta: %v", err)
	}
	if _, ok, err := repo.GetMeta(ctx, "pin_hash"); err != nil || ok {
		t.Fatalf("deleted key = ok %v, err %v; want absent", ok, err)
	}
}

func TestMirrorBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.InsertRecords(ctx, testBatch(t, "Alice", "Bob", "Carol"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := repo.PendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}

	if err := repo.MarkMirrored(ctx, saved[0].ID); err != nil {
		t.Fatalf("mark mirrored: %v", err)
	}
	if err := repo.MarkMirrorError(ctx, saved[1].ID); err != nil {
		t.Fatalf("mark mirror error: %v", err)
	}

	pending, err = repo.PendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	// A failed attempt keeps the record pending; only mirrored ones drop out.
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	limited, err := repo.PendingMirror(ctx, 1)
	if err != nil {
		t.Fatalf("pending limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited pending = %d, want 1", len(limited))
	}

	ids := []int64{saved[0].ID, saved[1].ID, saved[2].ID}
	unmirrored, err := repo.UnmirroredByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("unmirrored by ids: %v", err)
	}
	// saved[0] is already mirrored, the other two are not.
	if len(unmirrored) != 2 {
		t.Fatalf("unmirrored = %d, want 2", len(unmirrored))
	}

	if got, err := repo.UnmirroredByIDs(ctx, nil); err != nil || got != nil {
		t.Fatalf("UnmirroredByIDs(nil) = %v, %v", got, err)
	}
}
