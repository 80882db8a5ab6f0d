package core

import (
	"errors"
	"testing"
	"time"
)

func TestEntryBatchRecords(t *testing.T) {
	now := time.Now()
	batch := EntryBatch{
		Date: "2024-01-08",
		Type: "tithe",
		Rows: []EntryRow{
			{Person: "Alice", Amount: "100000"},
			{Person: "", Amount: ""}, // blank rows are skipped
			{Person: "Bob", Amount: "50000"},
		},
	}
	records, err := batch.Records(now)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.Date != "2024-01-08" || r.Type != "tithe" {
			t.Fatalf("record did not inherit batch fields: %+v", r)
		}
		if r.Year != 2024 {
			t.Fatalf("year = %d, want 2024", r.Year)
		}
		if r.WeekEnd != "2024-01-14" {
			t.Fatalf("weekEnd = %s, want 2024-01-14", r.WeekEnd)
		}
		if !r.CreatedAt.Equal(now) {
			t.Fatalf("createdAt = %v, want %v", r.CreatedAt, now)
		}
	}
	if records[0].Amount != 100000 || records[1].Amount != 50000 {
		t.Fatalf("amounts = %d, %d", records[0].Amount, records[1].Amount)
	}
}

func TestEntryBatchValidation(t *testing.T) {
	cases := []struct {
		name  string
		batch EntryBatch
		want  error
	}{
		{"empty date", EntryBatch{Type: "tithe", Rows: []EntryRow{{Person: "A", Amount: "1"}}}, ErrEmptyDate},
		{"empty type", EntryBatch{Date: "2024-01-08", Rows: []EntryRow{{Person: "A", Amount: "1"}}}, ErrEmptyType},
		{"bad date", EntryBatch{Date: "01/08/2024", Type: "t", Rows: []EntryRow{{Person: "A", Amount: "1"}}}, ErrBadDate},
		{"name without amount", EntryBatch{Date: "2024-01-08", Type: "t", Rows: []EntryRow{{Person: "A"}}}, ErrMissingAmount},
		{"amount without name", EntryBatch{Date: "2024-01-08", Type: "t", Rows: []EntryRow{{Amount: "100"}}}, ErrMissingPerson},
		{"non-numeric amount", EntryBatch{Date: "2024-01-08", Type: "t", Rows: []EntryRow{{Person: "A", Amount: "12x"}}}, ErrInvalidAmount},
		{"zero amount", EntryBatch{Date: "2024-01-08", Type: "t", Rows: []EntryRow{{Person: "A", Amount: "0"}}}, ErrInvalidAmount},
		{"all rows blank", EntryBatch{Date: "2024-01-08", Type: "t", Rows: []EntryRow{{}, {}}}, ErrEmptyBatch},
		{"no rows", EntryBatch{Date: "2024-01-08", Type: "t"}, ErrEmptyBatch},
	}
	for _, tc := range cases {
		records, err := tc.batch.Records(time.Now())
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
		if records != nil {
			t.Fatalf("%s: expected no records, got %d", tc.name, len(records))
		}
	}
}

func TestEntryBatchOneBadRowRejectsAll(t *testing.T) {
	batch := EntryBatch{
		Date: "2024-01-08",
		Type: "tithe",
		Rows: []EntryRow{
			{Person: "Alice", Amount: "100"},
			{Person: "Bob", Amount: ""}, // name but blank amount
		},
	}
	if _, err := batch.Records(time.Now()); !errors.Is(err, ErrMissingAmount) {
		t.Fatalf("err = %v, want ErrMissingAmount", err)
	}
}

func TestDimensionIsValid(t *testing.T) {
	for _, d := range []Dimension{ByPerson, ByType, ByDate, ByWeek} {
		if !d.IsValid() {
			t.Fatalf("%s should be valid", d)
		}
	}
	if Dimension("month").IsValid() {
		t.Fatal("unknown dimension should be invalid")
	}
}
