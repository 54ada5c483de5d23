package http

import (
	"log/slog"
	"net/http"
	"strings"

	"finledger/internal/core"
)

// handleSummary returns the month rollup for ?month=YYYY-MM, cached per month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	month, err := core.ParseMonth(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := string(month)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "month", key)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.records.Summarize(month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}
