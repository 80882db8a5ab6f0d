package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ellinstar/offering-app/internal/export"
)

// handleExport streams the settlement workbook for a year. The rendered
// bytes are cached until the next save.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	year := parseYear(r)

	key := strconv.Itoa(year)
	data, found := s.exportCache.Get(key)
	if !found {
		var err error
		data, err = export.SettlementWorkbook(s.session.Records(), year)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to render workbook", "error", err, "year", year)
			respondError(w, http.StatusInternalServerError, "failed to render workbook")
			return
		}
		s.exportCache.Set(key, data)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="offering-%d.xlsx"`, year))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
