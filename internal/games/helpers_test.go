package games

import (
	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// scriptSource plays back fixed draws, then falls through to a seeded source
// once the script runs out.
type scriptSource struct {
	vals []int
	i    int
	fb   rng.Source
}

func script(vals ...int) *scriptSource {
	return &scriptSource{vals: vals, fb: rng.Seeded(99)}
}

func (s *scriptSource) IntN(n int) int {
	if s.i < len(s.vals) {
		v := s.vals[s.i]
		s.i++
		return v % n
	}
	return s.fb.IntN(n)
}

func card(rank, suit string) Card { return Card{Rank: rank, Suit: suit} }

func decimalOne() decimal.Decimal { return decimal.NewFromInt(1) }
