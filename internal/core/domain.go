package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ByPerson Dimension = "person"
	ByType   Dimension = "type"
	ByDate   Dimension = "date"
	ByWeek   Dimension = "week"
)

type (
	// Dimension selects the attribute records are grouped by in a report.
	Dimension string

	// ContributionRecord is one committed ledger line. Records are immutable
	// once persisted; Year and WeekEnd are derived from Date at write time and
	// stored redundantly for fast filtering.
	ContributionRecord struct {
		ID        int64
		Date      string // YYYY-MM-DD, local calendar date
		Year      int
		WeekEnd   string // closing Sunday of the settlement week containing Date
		Type      string
		Person    string
		Amount    int64 // smallest currency unit, always positive
		CreatedAt time.Time
	}

	// ContributionType is a user-defined category; the name is the identity.
	ContributionType struct {
		Name string
	}

	// EntryRow is one not-yet-committed line of an entry form.
	EntryRow struct {
		Person string
		Amount string // raw input, digits only
	}

	// EntryBatch is a single save action. Every populated row shares the
	// batch date and type.
	EntryBatch struct {
		Date string
		Type string
		Rows []EntryRow
	}
)

var (
	ErrEmptyDate     = errors.New("empty date")
	ErrEmptyType     = errors.New("empty contribution type")
	ErrMissingPerson = errors.New("row has an amount but no contributor name")
	ErrMissingAmount = errors.New("row has a contributor name but no amount")
	ErrInvalidAmount = errors.New("amount must be a positive whole number")
	ErrEmptyBatch    = errors.New("nothing to save")
)

func (d Dimension) IsValid() bool {
	switch d {
	case ByPerson, ByType, ByDate, ByWeek:
		return true
	}
	return false
}

// Records validates the batch and expands it into contribution records.
// Fully blank rows are skipped; any other inconsistency rejects the whole
// batch before anything is persisted. Year and settlement key are derived
// once from the batch date and shared by every row.
func (b EntryBatch) Records(now time.Time) ([]ContributionRecord, error) {
	if strings.TrimSpace(b.Date) == "" {
		return nil, ErrEmptyDate
	}
	if strings.TrimSpace(b.Type) == "" {
		return nil, ErrEmptyType
	}
	weekEnd, err := SettlementKey(b.Date)
	if err != nil {
		return nil, err
	}
	year := YearOf(b.Date)

	var out []ContributionRecord
	for _, row := range b.Rows {
		person := strings.TrimSpace(row.Person)
		amountStr := strings.TrimSpace(row.Amount)
		if person == "" && amountStr == "" {
			continue
		}
		if person == "" {
			return nil, ErrMissingPerson
		}
		if amountStr == "" {
			return nil, ErrMissingAmount
		}
		amount, err := ParseAmount(amountStr)
		if err != nil {
			return nil, err
		}
		out = append(out, ContributionRecord{
			Date:      b.Date,
			Year:      year,
			WeekEnd:   weekEnd,
			Type:      b.Type,
			Person:    person,
			Amount:    amount,
			CreatedAt: now,
		})
	}
	if len(out) == 0 {
		return nil, ErrEmptyBatch
	}
	return out, nil
}
