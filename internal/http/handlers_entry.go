package http

import (
	"encoding/json"
	"net/http"

	"github.com/ellinstar/offering-app/internal/amqp"
	"github.com/ellinstar/offering-app/internal/core"
)

type entryRowRequest struct {
	Person string `json:"person"`
	Amount string `json:"amount"`
}

type entryRequest struct {
	Date string            `json:"date"`
	Type string            `json:"type"`
	Rows []entryRowRequest `json:"rows"`
}

type entryResponse struct {
	Count   int     `json:"count"`
	Date    string  `json:"date"`
	WeekEnd string  `json:"weekEnd"`
	Type    string  `json:"type"`
	IDs     []int64 `json:"ids"`
}

// handleSaveEntries persists one entry batch. The whole batch is rejected
// when any non-blank row is inconsistent.
func (s *Server) handleSaveEntries(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch := core.EntryBatch{
		Date: sanitizeInput(req.Date),
		Type: sanitizeInput(req.Type),
	}
	for _, row := range req.Rows {
		batch.Rows = append(batch.Rows, core.EntryRow{
			Person: sanitizeInput(row.Person),
			Amount: sanitizeInput(row.Amount),
		})
	}

	res, err := s.session.SaveBatch(r.Context(), batch)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Entry batch rejected", "error", err, "date", batch.Date)
		respondError(w, entryStatus(err), err.Error())
		return
	}

	ids := make([]int64, len(res.Records))
	for i, rec := range res.Records {
		ids[i] = rec.ID
	}

	if s.publisher != nil {
		msg := amqp.NewBatchSavedMessage(ids, res.Date, res.Type)
		if err := s.publisher.PublishBatchSaved(r.Context(), msg); err != nil {
			// The pending sweep mirrors the batch later.
			s.logger.WarnContext(r.Context(), "Failed to publish batch saved message", "error", err)
		}
	}

	weekEnd := ""
	if len(res.Records) > 0 {
		weekEnd = res.Records[0].WeekEnd
	}

	respondJSON(w, http.StatusCreated, entryResponse{
		Count:   res.Count,
		Date:    res.Date,
		WeekEnd: weekEnd,
		Type:    res.Type,
		IDs:     ids,
	})
}
