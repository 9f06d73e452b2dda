package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openriskhq/decisionguide/internal/engine"
	"github.com/openriskhq/decisionguide/internal/export"
	"github.com/openriskhq/decisionguide/internal/history"
	"github.com/openriskhq/decisionguide/internal/scoring"
	"github.com/openriskhq/decisionguide/internal/session"
	"github.com/openriskhq/decisionguide/internal/tree"
)

// sessionState is the wire view of one interactive assessment.
type sessionState struct {
	SessionID string `json:"session_id"`
	TreeID    string `json:"tree_id"`
	TreeTitle string `json:"tree_title"`
	evaluation
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TreeID string `json:"tree_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.TreeID == "" {
		jsonError(w, "tree_id is required", http.StatusBadRequest)
		return
	}
	doc, ok := s.registry.Get(req.TreeID)
	if !ok {
		jsonError(w, "tree not found", http.StatusNotFound)
		return
	}

	sess := s.sessions.Create(req.TreeID)
	s.log.Info("session started", "session_id", sess.ID, "tree_id", req.TreeID)

	state, err := s.sessionStateView(sess, doc)
	if err != nil {
		s.log.Error("session evaluate failed", "session_id", sess.ID, "error", err)
		jsonError(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, doc, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	sess.Touch()

	state, err := s.sessionStateView(sess, doc)
	if err != nil {
		s.log.Error("session evaluate failed", "session_id", sess.ID, "error", err)
		jsonError(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess, doc, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req struct {
		NodeID string `json:"node_id"`
		Choice string `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.NodeID == "" || req.Choice == "" {
		jsonError(w, "node_id and choice are required", http.StatusBadRequest)
		return
	}

	node, exists := doc.Nodes[req.NodeID]
	if !exists {
		jsonError(w, fmt.Sprintf("node %q not found in tree", req.NodeID), http.StatusBadRequest)
		return
	}
	if _, declared := node.Options[req.Choice]; !declared {
		jsonError(w, fmt.Sprintf("choice %q is not an option of node %q", req.Choice, req.NodeID), http.StatusUnprocessableEntity)
		return
	}

	sess.Answer(req.NodeID, req.Choice)

	state, err := s.sessionStateView(sess, doc)
	if err != nil {
		s.log.Error("session evaluate failed", "session_id", sess.ID, "error", err)
		jsonError(w, "evaluation failed", http.StatusInternalServerError)
		return
	}

	if state.State == engine.StateDecided {
		s.recordCompletion(sess, doc, state)
	}

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.EnableBackNavigation {
		jsonError(w, "back navigation disabled", http.StatusServiceUnavailable)
		return
	}
	sess, doc, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if removed := sess.Back(); removed == "" {
		jsonError(w, "nothing to undo", http.StatusConflict)
		return
	}

	state, err := s.sessionStateView(sess, doc)
	if err != nil {
		s.log.Error("session evaluate failed", "session_id", sess.ID, "error", err)
		jsonError(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, doc, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	sess.Reset()

	state, err := s.sessionStateView(sess, doc)
	if err != nil {
		s.log.Error("session evaluate failed", "session_id", sess.ID, "error", err)
		jsonError(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, doc, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format == "csv" && !s.cfg.EnableCSVExport {
		jsonError(w, "csv export disabled", http.StatusServiceUnavailable)
		return
	}
	formatter, err := export.ForFormat(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	answers := sess.Answers()
	result, err := engine.Run(doc, answers)
	if err != nil {
		s.log.Error("session evaluate failed", "session_id", sess.ID, "error", err)
		jsonError(w, "evaluation failed", http.StatusInternalServerError)
		return
	}
	if !result.Decided() {
		jsonError(w, "assessment is not complete", http.StatusConflict)
		return
	}

	now := time.Now()
	report := export.Report{
		TreeTitle:   doc.Title,
		GeneratedAt: now,
		Result:      result,
	}
	if doc.HasScoring() && s.cfg.EnableRiskScoring {
		risk := scoring.Score(doc, answers)
		report.Risk = &risk
	}

	data, err := formatter.Format(report)
	if err != nil {
		s.log.Error("export failed", "session_id", sess.ID, "format", format, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", formatter.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(doc.Title, formatter.Ext(), now)))
	w.Write(data)
}

// recordCompletion appends the finished assessment to history, once per
// session completion.
func (s *Server) recordCompletion(sess *session.Session, doc *tree.Document, state sessionState) {
	if !s.cfg.EnableHistory || !sess.MarkRecorded() {
		return
	}

	entry := history.Entry{
		Timestamp:   time.Now().UTC(),
		TreeID:      doc.ID,
		TreeTitle:   doc.Title,
		Decision:    state.Decision,
		Explanation: state.Explanation,
		Path:        state.Path,
		Answers:     sess.Answers().All(),
	}
	if state.Risk != nil {
		score := state.Risk.Score
		entry.Score = &score
		entry.Level = state.Risk.Level
	}

	if err := s.history.Append(entry); err != nil {
		s.log.Error("failed to record history", "session_id", sess.ID, "error", err)
		return
	}
	s.log.Info("assessment recorded",
		"session_id", sess.ID, "tree_id", doc.ID, "decision", state.Decision)
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, *tree.Document, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	sess := s.sessions.Get(sessionID)
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, nil, false
	}
	doc, ok := s.registry.Get(sess.TreeID)
	if !ok {
		jsonError(w, "tree no longer available", http.StatusGone)
		return nil, nil, false
	}
	return sess, doc, true
}

func (s *Server) sessionStateView(sess *session.Session, doc *tree.Document) (sessionState, error) {
	ev, err := s.evaluate(doc, sess.Answers())
	if err != nil {
		var invalid *engine.InvalidOptionError
		if errors.As(err, &invalid) {
			// Stale answer against an edited tree; surface the partial path.
			ev.State = engine.StateAwaitingInput
		} else {
			return sessionState{}, err
		}
	}
	return sessionState{
		SessionID:  sess.ID,
		TreeID:     sess.TreeID,
		TreeTitle:  doc.Title,
		evaluation: ev,
	}, nil
}
