package api

import (
	"net/http"
	"os"
)

// handleHealth reports service health: healthy when trees are loaded and the
// history store answers, degraded when the tree directory is empty, and
// unhealthy when the tree directory is missing or the store is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := make(map[string]any)

	dirInfo, err := os.Stat(s.cfg.TreeDir)
	dirOK := err == nil && dirInfo.IsDir()
	checks["tree_directory"] = map[string]any{
		"path":   s.cfg.TreeDir,
		"exists": dirOK,
	}

	checks["trees"] = map[string]any{
		"loaded": s.registry.Len(),
	}

	historyOK := true
	if s.cfg.EnableHistory {
		if err := s.history.DB().Ping(); err != nil {
			historyOK = false
		}
	}
	checks["history_store"] = map[string]any{
		"enabled":   s.cfg.EnableHistory,
		"reachable": historyOK,
	}

	switch {
	case !dirOK || !historyOK:
		status = "unhealthy"
	case s.registry.Len() == 0:
		status = "degraded"
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
