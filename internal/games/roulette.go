package games

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// RouletteGame implements European roulette (pockets 0-36). The wheel spins at
// resolution time; there is no decision phase after the bet.
type RouletteGame struct{}

// Bet types accepted in the "bet" parameter.
const (
	RouletteBetNumber = "number"
	RouletteBetRed    = "red"
	RouletteBetBlack  = "black"
	RouletteBetEven   = "even"
	RouletteBetOdd    = "odd"
	RouletteBetLow    = "low"  // 1-18
	RouletteBetHigh   = "high" // 19-36
)

// Red pockets on a European wheel.
var rouletteRed = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true,
	12: true, 14: true, 16: true, 18: true, 19: true,
	21: true, 23: true, 25: true, 27: true, 30: true,
	32: true, 34: true, 36: true,
}

// Kind returns the game identifier.
func (g *RouletteGame) Kind() Kind { return Roulette }

// Deal validates the bet parameters. Roulette rounds are single-shot: the
// round is finished as soon as the bet is placed.
func (g *RouletteGame) Deal(src rng.Source, params map[string]any) (Round, error) {
	bet, _ := params["bet"].(string)
	switch bet {
	case RouletteBetRed, RouletteBetBlack, RouletteBetEven, RouletteBetOdd, RouletteBetLow, RouletteBetHigh:
		return &rouletteRound{bet: bet}, nil
	case RouletteBetNumber:
		n, ok := intParam(params, "number")
		if !ok || n < 0 || n > 36 {
			return nil, fmt.Errorf("%w: roulette number must be 0-36", ErrBadParams)
		}
		return &rouletteRound{bet: bet, number: n}, nil
	default:
		return nil, fmt.Errorf("%w: unknown roulette bet %q", ErrBadParams, bet)
	}
}

type rouletteRound struct {
	bet    string
	number int
	spun   bool
	pocket int
}

func (r *rouletteRound) Moves() []Move                      { return nil }
func (r *rouletteRound) DoublesStake(Move) bool             { return false }
func (r *rouletteRound) Apply(src rng.Source, m Move) error { return ErrIllegalMove }
func (r *rouletteRound) Finished() bool                     { return true }

func (r *rouletteRound) Resolve(src rng.Source) (Outcome, error) {
	if !r.spun {
		r.pocket = rng.Uniform(src, 0, 36)
		r.spun = true
	}
	p := r.pocket

	won := false
	mul := decimal.NewFromInt(1)
	switch r.bet {
	case RouletteBetNumber:
		won = p == r.number
		mul = decimal.NewFromInt(35)
	case RouletteBetRed:
		won = rouletteRed[p]
	case RouletteBetBlack:
		won = p != 0 && !rouletteRed[p]
	case RouletteBetEven:
		won = p != 0 && p%2 == 0
	case RouletteBetOdd:
		won = p%2 == 1
	case RouletteBetLow:
		won = p >= 1 && p <= 18
	case RouletteBetHigh:
		won = p >= 19
	}

	if !won {
		return Outcome{Result: Loss}, nil
	}
	return Outcome{Result: Win, Multiplier: mul}, nil
}

func (r *rouletteRound) Snapshot() map[string]any {
	snap := map[string]any{"bet": r.bet}
	if r.bet == RouletteBetNumber {
		snap["number"] = r.number
	}
	if r.spun {
		snap["pocket"] = r.pocket
		snap["color"] = rouletteColor(r.pocket)
	}
	return snap
}

func rouletteColor(pocket int) string {
	switch {
	case pocket == 0:
		return "green"
	case rouletteRed[pocket]:
		return "red"
	default:
		return "black"
	}
}

// intParam reads an integer parameter that may arrive as int, int64 or
// float64 (JSON decoding produces float64).
func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
