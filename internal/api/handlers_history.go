package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/openriskhq/decisionguide/internal/analytics"
	"github.com/openriskhq/decisionguide/internal/history"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.EnableHistory {
		jsonError(w, "history disabled", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	filter := history.Filter{
		TreeID:   q.Get("tree_id"),
		Decision: q.Get("decision"),
		Query:    q.Get("q"),
		Limit:    10,
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := q.Get("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.Since = t
		}
	}
	if v := q.Get("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.Until = t
		}
	}

	entries, err := s.history.Search(filter)
	if err != nil {
		s.log.Error("history query failed", "error", err)
		jsonError(w, "history query failed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.EnableHistory {
		jsonError(w, "history disabled", http.StatusServiceUnavailable)
		return
	}
	if err := s.history.Clear(); err != nil {
		s.log.Error("history clear failed", "error", err)
		jsonError(w, "history clear failed", http.StatusInternalServerError)
		return
	}
	s.log.Info("history cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.EnableAnalytics {
		jsonError(w, "analytics disabled", http.StatusServiceUnavailable)
		return
	}
	stats, err := analytics.Compute(s.history.DB(), time.Now())
	if err != nil {
		s.log.Error("stats computation failed", "error", err)
		jsonError(w, "stats computation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
