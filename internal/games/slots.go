package games

import (
	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// SlotsGame implements a three-reel slot machine. The payline is the middle
// row: three identical symbols pay 3x, three jackpot symbols pay 10x.
type SlotsGame struct{}

// SlotJackpotSymbol is the top-paying symbol.
const SlotJackpotSymbol = "seven"

// slotSymbols is the reel alphabet; each cell draws uniformly from it.
var slotSymbols = []string{"cherry", "lemon", "orange", "grape", "bell", SlotJackpotSymbol}

// Kind returns the game identifier.
func (g *SlotsGame) Kind() Kind { return Slots }

// Deal spins all three reels immediately; slots has no decision phase.
func (g *SlotsGame) Deal(src rng.Source, params map[string]any) (Round, error) {
	r := &slotsRound{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r.grid[row][col] = rng.Symbol(src, slotSymbols)
		}
	}
	return r, nil
}

type slotsRound struct {
	grid [3][3]string
}

func (r *slotsRound) Moves() []Move                      { return nil }
func (r *slotsRound) DoublesStake(Move) bool             { return false }
func (r *slotsRound) Apply(src rng.Source, m Move) error { return ErrIllegalMove }
func (r *slotsRound) Finished() bool                     { return true }

func (r *slotsRound) Resolve(src rng.Source) (Outcome, error) {
	mid := r.grid[1]
	if mid[0] != mid[1] || mid[1] != mid[2] {
		return Outcome{Result: Loss}, nil
	}
	mul := decimal.NewFromInt(3)
	if mid[0] == SlotJackpotSymbol {
		mul = decimal.NewFromInt(10)
	}
	return Outcome{Result: Win, Multiplier: mul}, nil
}

func (r *slotsRound) Snapshot() map[string]any {
	rows := make([][]string, 3)
	for i := range r.grid {
		rows[i] = append([]string(nil), r.grid[i][:]...)
	}
	return map[string]any{
		"grid":    rows,
		"payline": append([]string(nil), r.grid[1][:]...),
	}
}
