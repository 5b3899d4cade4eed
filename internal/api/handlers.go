package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AetCloud/nappbot-engine/internal/games"
)

type startSessionRequest struct {
	UserID string         `json:"user_id"`
	Game   games.Kind     `json:"game"`
	Stake  int64          `json:"stake"`
	Params map[string]any `json:"params,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		s.writeBadRequest(w, "user_id is required")
		return
	}

	view, err := s.engine.StartSession(r.Context(), req.UserID, req.Game, req.Stake, req.Params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	view, err := s.engine.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

type submitMoveRequest struct {
	Move games.Move `json:"move"`
}

func (s *Server) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeBadRequest(w, "invalid session id")
		return
	}
	var req submitMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}

	view, err := s.engine.SubmitMove(r.Context(), id, req.Move)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

type replayRequest struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req replayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid JSON body")
		return
	}
	token, err := uuid.Parse(req.Token)
	if err != nil {
		s.writeBadRequest(w, "invalid replay token")
		return
	}

	view, err := s.engine.Replay(r.Context(), token, req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	balance, err := s.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	streak, err := s.ledger.GetStreak(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"balance": balance,
		"streak":  streak,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"games": games.List()})
}
