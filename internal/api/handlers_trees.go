package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openriskhq/decisionguide/internal/engine"
)

func (s *Server) handleListTrees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"trees": s.registry.List()})
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")
	doc, ok := s.registry.Get(treeID)
	if !ok {
		jsonError(w, "tree not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleEvaluate runs a stateless traversal over a caller-supplied answer
// list. Partial answer sets are fine; the response reports the next pending
// question.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")
	doc, ok := s.registry.Get(treeID)
	if !ok {
		jsonError(w, "tree not found", http.StatusNotFound)
		return
	}

	var req struct {
		Answers []engine.Answer `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	answers := engine.NewAnswerSet(req.Answers...)
	ev, err := s.evaluate(doc, answers)
	if err != nil {
		var invalid *engine.InvalidOptionError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error": invalid.Error(),
				"path":  ev.Path,
			})
			return
		}
		s.log.Error("evaluate failed", "tree_id", treeID, "error", err)
		jsonError(w, "evaluation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ev)
}
