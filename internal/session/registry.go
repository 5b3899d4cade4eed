package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/AetCloud/nappbot-engine/internal/games"
)

// activeKey identifies the one live session a user may hold per game kind.
type activeKey struct {
	userID string
	game   games.Kind
}

// registry tracks live sessions. Inserts and evictions for unrelated users
// only contend on the map lock for the duration of a map operation.
type registry struct {
	mu     sync.Mutex
	active map[activeKey]uuid.UUID
	byID   map[uuid.UUID]*Session
}

func newRegistry() *registry {
	return &registry{
		active: make(map[activeKey]uuid.UUID),
		byID:   make(map[uuid.UUID]*Session),
	}
}

// claim registers the session, failing with ErrSessionAlreadyActive if the
// user already has a live session of the same kind.
func (r *registry) claim(s *Session) error {
	key := activeKey{userID: s.UserID, game: s.Game}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[key]; ok {
		return ErrSessionAlreadyActive
	}
	r.active[key] = s.ID
	r.byID[s.ID] = s
	return nil
}

// get looks a live session up by id.
func (r *registry) get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	return s, ok
}

// evict removes a session that reached a terminal state.
func (r *registry) evict(s *Session) {
	key := activeKey{userID: s.UserID, game: s.Game}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[key] == s.ID {
		delete(r.active, key)
	}
	delete(r.byID, s.ID)
}

// all snapshots the live sessions, for the stale-session sweep.
func (r *registry) all() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}
