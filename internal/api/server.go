// Package api exposes the session engine over HTTP. The bot process is the
// primary caller; the surface is a thin JSON mapping with no game logic.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AetCloud/nappbot-engine/internal/ledger"
	"github.com/AetCloud/nappbot-engine/internal/session"
)

// Server handles HTTP requests.
type Server struct {
	engine *session.Engine
	ledger ledger.Ledger
}

// NewServer creates a new API server.
func NewServer(engine *session.Engine, led ledger.Ledger) *Server {
	return &Server{engine: engine, ledger: led}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Post("/sessions", s.handleStartSession)
	r.Get("/sessions/{id}", s.handleGetSession)
	r.Post("/sessions/{id}/moves", s.handleSubmitMove)
	r.Post("/replay", s.handleReplay)
	r.Get("/users/{id}/balance", s.handleGetBalance)
	r.Get("/games", s.handleListGames)

	return r
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
