package games

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// WarGame implements casino war: one card each, higher rank wins, ace high.
// Equal ranks push. Single-shot; both cards come from the same deck so the
// player and dealer can never draw the same card.
type WarGame struct{}

// Kind returns the game identifier.
func (g *WarGame) Kind() Kind { return War }

// Deal draws the player and dealer cards immediately.
func (g *WarGame) Deal(src rng.Source, params map[string]any) (Round, error) {
	deck := NewDeck()
	pc, err := deck.Draw(src)
	if err != nil {
		return nil, fmt.Errorf("draw player card: %w", err)
	}
	dc, err := deck.Draw(src)
	if err != nil {
		return nil, fmt.Errorf("draw dealer card: %w", err)
	}
	return &warRound{player: pc, dealer: dc}, nil
}

type warRound struct {
	player Card
	dealer Card
}

func (r *warRound) Moves() []Move                      { return nil }
func (r *warRound) DoublesStake(Move) bool             { return false }
func (r *warRound) Apply(src rng.Source, m Move) error { return ErrIllegalMove }
func (r *warRound) Finished() bool                     { return true }

func (r *warRound) Resolve(src rng.Source) (Outcome, error) {
	pv, dv := warRankValue(r.player.Rank), warRankValue(r.dealer.Rank)
	switch {
	case pv > dv:
		return Outcome{Result: Win, Multiplier: decimal.NewFromInt(1)}, nil
	case pv == dv:
		return Outcome{Result: Push}, nil
	default:
		return Outcome{Result: Loss}, nil
	}
}

func (r *warRound) Snapshot() map[string]any {
	return map[string]any{
		"player_card": r.player.String(),
		"dealer_card": r.dealer.String(),
	}
}
