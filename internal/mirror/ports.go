// Package mirror defines the outbound port for copying confirmed records
// to an external backup destination.
package mirror

import (
	"context"

	"github.com/ellinstar/offering-app/internal/core"
)

// RecordAppender appends one confirmed record to the mirror and returns an
// opaque reference to where it landed.
type RecordAppender interface {
	Append(ctx context.Context, r core.ContributionRecord) (rowRef string, err error)
}
