package api

import (
	"errors"
	"net/http"

	"github.com/AetCloud/nappbot-engine/internal/games"
	"github.com/AetCloud/nappbot-engine/internal/ledger"
	"github.com/AetCloud/nappbot-engine/internal/session"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// codes returned in the "code" field so callers can branch without parsing
// messages.
var errorCodes = []struct {
	sentinel error
	status   int
	code     string
}{
	{session.ErrInsufficientFunds, http.StatusConflict, "insufficient_funds"},
	{session.ErrSessionAlreadyActive, http.StatusConflict, "session_already_active"},
	{session.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{session.ErrSessionTerminal, http.StatusConflict, "session_already_terminal"},
	{session.ErrUnknownGame, http.StatusBadRequest, "unknown_game"},
	{session.ErrInvalidStake, http.StatusBadRequest, "invalid_stake"},
	{session.ErrReplayExpired, http.StatusGone, "replay_expired"},
	{session.ErrForbidden, http.StatusForbidden, "forbidden"},
	{games.ErrIllegalMove, http.StatusUnprocessableEntity, "illegal_move"},
	{games.ErrBadParams, http.StatusBadRequest, "bad_params"},
	{ledger.ErrUnknownUser, http.StatusNotFound, "unknown_user"},
	{ledger.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
}

// writeError maps an engine error onto a status code and JSON envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	for _, m := range errorCodes {
		if errors.Is(err, m.sentinel) {
			s.writeJSON(w, m.status, errorResponse{Error: err.Error(), Code: m.code})
			return
		}
	}
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// writeBadRequest reports a malformed request body or parameter.
func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}
