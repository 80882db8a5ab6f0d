package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ellinstar/offering-app/internal/core"
)

func testRecords() []core.ContributionRecord {
	rec := func(date, typ, person string, amount int64) core.ContributionRecord {
		week, _ := core.SettlementKey(date)
		return core.ContributionRecord{
			Date:      date,
			Year:      core.YearOf(date),
			WeekEnd:   week,
			Type:      typ,
			Person:    person,
			Amount:    amount,
			CreatedAt: time.Now(),
		}
	}
	return []core.ContributionRecord{
		rec("2024-01-07", "tithe", "Alice", 100), // Sunday, closes week 2024-01-07
		rec("2024-01-08", "tithe", "Bob", 50),    // Monday, week 2024-01-14
		rec("2024-01-10", "thanksgiving", "Alice", 30),
	}
}

func TestSettlementWorkbookLayout(t *testing.T) {
	data, err := SettlementWorkbook(testRecords(), 2024)
	if err != nil {
		t.Fatalf("render workbook: %v", err)
	}

	xlsx, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer xlsx.Close()

	want := []string{"Weeks", "Persons", "Types"}
	got := xlsx.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sheets = %v, want %v", got, want)
		}
	}

	// First data row of the week sheet is the earliest settlement week.
	start, _ := xlsx.GetCellValue("Weeks", "A2")
	end, _ := xlsx.GetCellValue("Weeks", "B2")
	if start != "2024-01-01" || end != "2024-01-07" {
		t.Fatalf("first week = %s..%s, want 2024-01-01..2024-01-07", start, end)
	}
	total, _ := xlsx.GetCellValue("Weeks", "C2")
	if total != "100" {
		t.Fatalf("first week total = %q, want 100", total)
	}

	// Persons ordered by total descending.
	person, _ := xlsx.GetCellValue("Persons", "A2")
	if person != "Alice" {
		t.Fatalf("top person = %q, want Alice", person)
	}

	// Every sheet ends with a grand total of 180 in its amount column.
	for sheet, col := range map[string]int{"Weeks": 2, "Persons": 1, "Types": 1} {
		rows, err := xlsx.GetRows(sheet)
		if err != nil {
			t.Fatalf("read %s: %v", sheet, err)
		}
		last := rows[len(rows)-1]
		if last[0] != "Total" || last[col] != "180" {
			t.Fatalf("%s total row = %v", sheet, last)
		}
	}
}

func TestSettlementWorkbookEmptyYear(t *testing.T) {
	data, err := SettlementWorkbook(testRecords(), 2019)
	if err != nil {
		t.Fatalf("render workbook: %v", err)
	}

	xlsx, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer xlsx.Close()

	// No data rows: header then the zero total.
	name, _ := xlsx.GetCellValue("Weeks", "A2")
	total, _ := xlsx.GetCellValue("Weeks", "C2")
	if name != "Total" || total != "0" {
		t.Fatalf("empty year sheet = %q %q", name, total)
	}
}
