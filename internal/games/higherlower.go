package games

import (
	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// HigherLowerGame deals a number in [1,100] and asks the player to call the
// next draw higher or lower. Exact ties are excluded from the second draw
// domain by redrawing, so every round resolves as a win or a loss.
type HigherLowerGame struct{}

const (
	higherLowerMin = 1
	higherLowerMax = 100
)

// Kind returns the game identifier.
func (g *HigherLowerGame) Kind() Kind { return HigherLower }

// Deal draws the starting number; the guess is the single decision.
func (g *HigherLowerGame) Deal(src rng.Source, params map[string]any) (Round, error) {
	return &higherLowerRound{current: rng.Uniform(src, higherLowerMin, higherLowerMax)}, nil
}

type higherLowerRound struct {
	current int
	next    int
	guess   Move
	done    bool
}

func (r *higherLowerRound) Moves() []Move {
	if r.done {
		return nil
	}
	return []Move{MoveHigher, MoveLower}
}

func (r *higherLowerRound) DoublesStake(Move) bool { return false }

func (r *higherLowerRound) Apply(src rng.Source, m Move) error {
	if r.done || (m != MoveHigher && m != MoveLower) {
		return ErrIllegalMove
	}
	r.guess = m
	// Redraw on ties: the draw domain excludes the current number.
	r.next = r.current
	for r.next == r.current {
		r.next = rng.Uniform(src, higherLowerMin, higherLowerMax)
	}
	r.done = true
	return nil
}

func (r *higherLowerRound) Finished() bool { return r.done }

func (r *higherLowerRound) Resolve(src rng.Source) (Outcome, error) {
	if !r.done {
		return Outcome{}, ErrRoundInProgress
	}
	won := (r.guess == MoveHigher && r.next > r.current) ||
		(r.guess == MoveLower && r.next < r.current)
	if won {
		return Outcome{Result: Win, Multiplier: decimal.NewFromInt(1)}, nil
	}
	return Outcome{Result: Loss}, nil
}

func (r *higherLowerRound) Snapshot() map[string]any {
	snap := map[string]any{"current": r.current}
	if r.done {
		snap["guess"] = string(r.guess)
		snap["next"] = r.next
	}
	return snap
}
