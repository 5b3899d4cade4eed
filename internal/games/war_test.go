package games

import (
	"errors"
	"testing"
)

func TestWarResolve(t *testing.T) {
	tests := []struct {
		name   string
		player Card
		dealer Card
		want   Result
	}{
		{"ace beats king", card("A", "♣"), card("K", "♦"), Win},
		{"equal ranks push", card("7", "♦"), card("7", "♠"), Push},
		{"two loses to ace", card("2", "♦"), card("A", "♠"), Loss},
		{"ten beats nine", card("10", "♥"), card("9", "♣"), Win},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &warRound{player: tt.player, dealer: tt.dealer}
			out, err := r.Resolve(script())
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if out.Result != tt.want {
				t.Errorf("result = %s, want %s", out.Result, tt.want)
			}
			if tt.want == Win && !out.Multiplier.Equal(decimalOne()) {
				t.Errorf("win multiplier = %s, want 1", out.Multiplier)
			}
		})
	}
}

func TestWarDeal(t *testing.T) {
	// ♣A for the player, then ♦2 for the dealer.
	round, err := (&WarGame{}).Deal(script(51, 0), nil)
	if err != nil {
		t.Fatalf("deal failed: %v", err)
	}
	if !round.Finished() {
		t.Error("war should finish at deal time")
	}
	if err := round.Apply(script(), MoveStand); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("apply on war: got %v, want ErrIllegalMove", err)
	}

	out, err := round.Resolve(script())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if out.Result != Win {
		t.Errorf("ace vs two: got %s, want win", out.Result)
	}
}
