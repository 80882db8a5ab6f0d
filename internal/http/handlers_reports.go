package http

import (
	"net/http"
	"strconv"

	"github.com/ellinstar/offering-app/internal/core"
)

type reportRow struct {
	Key            string `json:"key"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"totalFormatted"`
	Breakdown      string `json:"breakdown,omitempty"`
	WeekStart      string `json:"weekStart,omitempty"`
	WeekEnd        string `json:"weekEnd,omitempty"`
}

type reportResponse struct {
	Dimension string      `json:"dimension"`
	Year      int         `json:"year"`
	Rows      []reportRow `json:"rows"`
	Total     int64       `json:"total"`
}

// handleReport renders one report dimension for a year. Rows are cached per
// query until the next save.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	dim := core.Dimension(r.PathValue("dimension"))
	if !dim.IsValid() {
		respondError(w, http.StatusNotFound, "unknown report dimension")
		return
	}

	year := parseYear(r)
	person := r.URL.Query().Get("q")
	if dim != core.ByPerson {
		person = ""
	}

	key := string(dim) + "|" + strconv.Itoa(year) + "|" + person
	rows, found := s.reportCache.Get(key)
	if !found {
		rows = buildReportRows(s.session.Summarize(dim, year, person), dim)
		s.reportCache.Set(key, rows)
	}

	var total int64
	for _, row := range rows {
		total += row.Total
	}

	respondJSON(w, http.StatusOK, reportResponse{
		Dimension: string(dim),
		Year:      year,
		Rows:      rows,
		Total:     total,
	})
}

func buildReportRows(summary []core.SummaryRow, dim core.Dimension) []reportRow {
	rows := make([]reportRow, 0, len(summary))
	for _, sr := range summary {
		row := reportRow{
			Key:            sr.Key,
			Total:          sr.Total,
			TotalFormatted: core.FormatAmount(sr.Total),
			Breakdown:      sr.Breakdown,
		}
		if dim == core.ByWeek {
			if start, end, err := core.SettlementRange(sr.Key); err == nil {
				row.WeekStart = start
				row.WeekEnd = end
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]int{"years": s.session.Years()})
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	names := s.session.PersonNames()
	if names == nil {
		names = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"names": names})
}
