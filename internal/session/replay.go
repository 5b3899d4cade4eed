package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AetCloud/nappbot-engine/internal/games"
)

// replayGrant remembers enough of a settled session to start it again.
type replayGrant struct {
	userID    string
	game      games.Kind
	stake     int64
	params    map[string]any
	expiresAt time.Time
}

// replayGrants is the bounded-lifetime replay token store. Expired grants are
// pruned lazily on every insert.
type replayGrants struct {
	mu     sync.Mutex
	grants map[uuid.UUID]replayGrant
}

func newReplayGrants() *replayGrants {
	return &replayGrants{grants: make(map[uuid.UUID]replayGrant)}
}

// grant issues a token for replaying the given session until expiresAt.
func (r *replayGrants) grant(s *Session, expiresAt time.Time) uuid.UUID {
	token := uuid.New()
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for t, g := range r.grants {
		if now.After(g.expiresAt) {
			delete(r.grants, t)
		}
	}
	r.grants[token] = replayGrant{
		userID:    s.UserID,
		game:      s.Game,
		stake:     s.Stake,
		params:    s.Params,
		expiresAt: expiresAt,
	}
	return token
}

// take consumes a grant. Unknown or expired tokens return ErrReplayExpired;
// a token presented by the wrong user returns ErrForbidden without consuming
// the grant.
func (r *replayGrants) take(token uuid.UUID, userID string) (replayGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.grants[token]
	if !ok {
		return replayGrant{}, ErrReplayExpired
	}
	if time.Now().After(g.expiresAt) {
		delete(r.grants, token)
		return replayGrant{}, ErrReplayExpired
	}
	if g.userID != userID {
		return replayGrant{}, ErrForbidden
	}
	delete(r.grants, token)
	return g, nil
}
