// Package session implements the wager session state machine and the engine
// that drives it: stake debit, decision handling, deadline expiry, single
// settlement and replay.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AetCloud/nappbot-engine/internal/games"
)

// State is a session's position in the lifecycle.
type State string

const (
	StateCreated          State = "created"
	StateAwaitingDecision State = "awaiting_decision"
	StateResolving        State = "resolving"
	StateSettled          State = "settled"
	StateExpired          State = "expired"
	StateErrored          State = "errored"
)

// Terminal reports whether no transition may leave the state.
func (s State) Terminal() bool {
	switch s {
	case StateSettled, StateExpired, StateErrored:
		return true
	default:
		return false
	}
}

// Outcome is the settled result of a session. Payout is the signed net
// balance change: +stake*multiplier for a win, -stake for a loss, 0 for a push.
type Outcome struct {
	Result games.Result `json:"result"`
	Payout int64        `json:"payout"`
}

// Session is one wager round from stake to settlement. All mutation happens
// under mu via the engine; the round itself is only touched by whichever
// event claimed the resolving transition.
type Session struct {
	mu sync.Mutex

	ID         uuid.UUID
	UserID     string
	Game       games.Kind
	Stake      int64
	State      State
	Round      games.Round
	Params     map[string]any
	CreatedAt  time.Time
	DeadlineAt time.Time
	Outcome    *Outcome

	cancelTimer func()
}

// claim atomically moves the session from `from` to StateResolving, returning
// false if the session is in any other state. The winner of a decision/expiry
// race claims; the loser sees a non-matching state.
func (s *Session) claim(from State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State != from {
		return false
	}
	s.State = StateResolving
	return true
}

// transition moves the session to a new state.
func (s *Session) transition(to State) {
	s.mu.Lock()
	s.State = to
	s.mu.Unlock()
}

// View is an immutable render-friendly snapshot of a session.
type View struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Game        games.Kind     `json:"game"`
	Stake       int64          `json:"stake"`
	State       State          `json:"state"`
	LegalMoves  []games.Move   `json:"legal_moves,omitempty"`
	Round       map[string]any `json:"round,omitempty"`
	Outcome     *Outcome       `json:"outcome,omitempty"`
	DeadlineAt  time.Time      `json:"deadline_at"`
	ReplayToken string         `json:"replay_token,omitempty"`
}

// view snapshots the session under its lock.
func (s *Session) view() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:         s.ID.String(),
		UserID:     s.UserID,
		Game:       s.Game,
		Stake:      s.Stake,
		State:      s.State,
		DeadlineAt: s.DeadlineAt,
	}
	if s.Round != nil {
		v.Round = s.Round.Snapshot()
		if s.State == StateAwaitingDecision {
			v.LegalMoves = s.Round.Moves()
		}
	}
	if s.Outcome != nil {
		out := *s.Outcome
		v.Outcome = &out
	}
	return v
}
