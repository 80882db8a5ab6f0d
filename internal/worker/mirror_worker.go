// Package worker copies confirmed contribution records to the configured
// mirror, driven by AMQP messages with a periodic sweep as backup.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ellinstar/offering-app/internal/amqp"
	"github.com/ellinstar/offering-app/internal/core"
	"github.com/ellinstar/offering-app/internal/mirror"
)

// RecordSource is the storage surface the worker needs. The SQLite
// repository satisfies it.
type RecordSource interface {
	UnmirroredByIDs(ctx context.Context, ids []int64) ([]core.ContributionRecord, error)
	PendingMirror(ctx context.Context, limit int) ([]core.ContributionRecord, error)
	MarkMirrored(ctx context.Context, id int64) error
	MarkMirrorError(ctx context.Context, id int64) error
}

type MirrorWorker struct {
	storage   RecordSource
	mirror    mirror.RecordAppender
	batchSize int
}

func NewMirrorWorker(storage RecordSource, mirror mirror.RecordAppender, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleBatchSaved mirrors the records named by one batch-saved message.
// Records a previous delivery already mirrored are skipped, so redelivery
// is safe. Returns an error when any record fails, which requeues the
// message; the mirrored flag keeps the retry incremental.
func (w *MirrorWorker) HandleBatchSaved(ctx context.Context, msg *amqp.BatchSavedMessage) error {
	slog.InfoContext(ctx, "Processing batch saved message",
		"count", msg.Count,
		"date", msg.Date,
		"type", msg.Type)

	records, err := w.storage.UnmirroredByIDs(ctx, msg.IDs)
	if err != nil {
		return fmt.Errorf("load records for mirror: %w", err)
	}
	if len(records) == 0 {
		slog.InfoContext(ctx, "Batch already mirrored", "date", msg.Date)
		return nil
	}

	failed := 0
	for _, rec := range records {
		if err := w.mirrorRecord(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror record", "id", rec.ID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("mirror batch: %d of %d records failed", failed, len(records))
	}
	return nil
}

// ProcessPending sweeps records the AMQP path missed. Backup mechanism in
// case messages are lost.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingMirror(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending mirror records", "count", len(pending))

	for _, rec := range pending {
		if err := w.mirrorRecord(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending record", "id", rec.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains the pending backlog once at worker startup, useful
// to recover from missed messages or worker downtime.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingMirror(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending mirror records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending mirror records on startup", "count", len(pending))

	mirrored := 0
	failed := 0
	for _, rec := range pending {
		if err := w.mirrorRecord(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror record during startup", "id", rec.ID, "error", err)
			failed++
			continue
		}
		mirrored++
	}

	slog.InfoContext(ctx, "Startup mirror check completed",
		"total", len(pending),
		"mirrored", mirrored,
		"errors", failed)

	return nil
}

func (w *MirrorWorker) mirrorRecord(ctx context.Context, rec core.ContributionRecord) error {
	ref, err := w.mirror.Append(ctx, rec)
	if err != nil {
		if markErr := w.storage.MarkMirrorError(ctx, rec.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark mirror error", "id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkMirrored(ctx, rec.ID); err != nil {
		// The append worked; a failed flag update only means one extra copy
		// on the next sweep.
		slog.ErrorContext(ctx, "Failed to mark as mirrored", "id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Record mirrored",
		"id", rec.ID,
		"sheet", ref,
		"date", rec.Date,
		"amount", rec.Amount)

	return nil
}
