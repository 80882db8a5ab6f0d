package session

import (
	"context"

	"github.com/ellinstar/offering-app/internal/core"
)

// RecordStore is the persistence contract the session depends on. The
// SQLite repository satisfies it; tests substitute fakes.
type RecordStore interface {
	// GetAllRecords returns every record; order is not guaranteed.
	GetAllRecords(ctx context.Context) ([]core.ContributionRecord, error)

	// InsertRecords persists a batch all-or-nothing and assigns ids.
	InsertRecords(ctx context.Context, records []core.ContributionRecord) ([]core.ContributionRecord, error)

	GetTypes(ctx context.Context) ([]core.ContributionType, error)
	AddType(ctx context.Context, name string) error
}
