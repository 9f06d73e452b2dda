package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openriskhq/decisionguide/internal/config"
	"github.com/openriskhq/decisionguide/internal/history"
	"github.com/openriskhq/decisionguide/internal/session"
	"github.com/openriskhq/decisionguide/internal/tree"
)

// Server is the HTTP API server for decisionguide.
type Server struct {
	router   chi.Router
	registry *tree.Registry
	sessions *session.Store
	history  *history.Store
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(registry *tree.Registry, sessions *session.Store, hist *history.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		registry: registry,
		sessions: sessions,
		history:  hist,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/trees", s.handleListTrees)
		r.Get("/api/trees/{treeID}", s.handleGetTree)
		r.Post("/api/trees/{treeID}/evaluate", s.handleEvaluate)

		r.Post("/api/sessions", s.handleCreateSession)
		r.Get("/api/sessions/{sessionID}", s.handleGetSession)
		r.Post("/api/sessions/{sessionID}/answers", s.handleAnswer)
		r.Post("/api/sessions/{sessionID}/back", s.handleBack)
		r.Post("/api/sessions/{sessionID}/reset", s.handleReset)
		r.Get("/api/sessions/{sessionID}/export", s.handleExport)

		r.Get("/api/history", s.handleHistory)
		r.Delete("/api/history", s.handleClearHistory)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
