package games

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// stoodRound builds a finished round with fixed hands for resolver tests.
func stoodRound(player, dealer []Card) *blackjackRound {
	return &blackjackRound{
		deck:       NewDeck(),
		player:     player,
		dealer:     dealer,
		naturalMul: decimal.NewFromInt(1),
		done:       true,
	}
}

func TestBlackjackResolve(t *testing.T) {
	tests := []struct {
		name   string
		player []Card
		dealer []Card
		want   Result
	}{
		{
			"player outscores standing dealer",
			[]Card{card("10", "♦"), card("K", "♠")},
			[]Card{card("10", "♥"), card("7", "♠")},
			Win,
		},
		{
			"equal totals push",
			[]Card{card("10", "♦"), card("8", "♠")},
			[]Card{card("9", "♥"), card("9", "♠")},
			Push,
		},
		{
			"dealer outscores player",
			[]Card{card("10", "♦"), card("7", "♠")},
			[]Card{card("10", "♥"), card("9", "♠")},
			Loss,
		},
		{
			"player bust loses before dealer plays",
			[]Card{card("10", "♦"), card("9", "♠"), card("5", "♥")},
			[]Card{card("2", "♥"), card("3", "♠")},
			Loss,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := stoodRound(tt.player, tt.dealer)
			out, err := r.Resolve(script())
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if out.Result != tt.want {
				t.Errorf("result = %s, want %s", out.Result, tt.want)
			}
		})
	}
}

func TestBlackjackDealerDrawsToSeventeen(t *testing.T) {
	// Dealer starts at 12 and must draw. Whatever the deck gives, the dealer
	// must finish at 17+ or bust.
	r := stoodRound(
		[]Card{card("10", "♦"), card("8", "♠")},
		[]Card{card("10", "♥"), card("2", "♠")},
	)
	if _, err := r.Resolve(script()); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if v := blackjackHandValue(r.dealer); v < 17 {
		t.Errorf("dealer stopped at %d, want >= 17", v)
	}
}

func TestBlackjackNaturalBeatsNonNatural(t *testing.T) {
	r := stoodRound(
		[]Card{card("A", "♦"), card("K", "♦")},
		[]Card{card("10", "♥"), card("9", "♠")},
	)
	r.natural = true
	r.naturalMul = decimal.RequireFromString("1.5")

	out, err := r.Resolve(script())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if out.Result != Win {
		t.Fatalf("result = %s, want win", out.Result)
	}
	if !out.Multiplier.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("multiplier = %s, want 1.5", out.Multiplier)
	}
}

func TestBlackjackNaturalVersusNaturalPushes(t *testing.T) {
	r := stoodRound(
		[]Card{card("A", "♦"), card("K", "♦")},
		[]Card{card("A", "♠"), card("Q", "♠")},
	)
	r.natural = true

	out, err := r.Resolve(script())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if out.Result != Push {
		t.Errorf("result = %s, want push", out.Result)
	}
}

func TestBlackjackDealDetectsNatural(t *testing.T) {
	// Scripted deal: player ♦A + ♦10, dealer ♦2 + ♥2.
	src := script(48, 0, 32, 1)
	round, err := NewBlackjack().Deal(src, nil)
	if err != nil {
		t.Fatalf("deal failed: %v", err)
	}
	if !round.Finished() {
		t.Fatal("natural 21 should finish the round at deal time")
	}
	if moves := round.Moves(); len(moves) != 0 {
		t.Errorf("finished round offers moves %v", moves)
	}
}

func TestBlackjackMoves(t *testing.T) {
	r := &blackjackRound{
		deck:       NewDeck(),
		player:     []Card{card("5", "♦"), card("6", "♠")},
		dealer:     []Card{card("10", "♥"), card("7", "♠")},
		naturalMul: decimal.NewFromInt(1),
	}

	moves := r.Moves()
	if len(moves) != 3 {
		t.Fatalf("opening hand should offer hit/stand/double, got %v", moves)
	}
	if !r.DoublesStake(MoveDouble) {
		t.Error("double should require an extra stake")
	}
	if r.DoublesStake(MoveHit) {
		t.Error("hit should not require an extra stake")
	}

	// Hit once: double is no longer offered.
	if err := r.Apply(script(0), MoveHit); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if r.done {
		// 5+6+2 = 13, still playing
		t.Fatal("hand of 13 should not be finished")
	}
	for _, m := range r.Moves() {
		if m == MoveDouble {
			t.Error("double offered after a hit")
		}
	}

	if err := r.Apply(script(), MoveStand); err != nil {
		t.Fatalf("stand failed: %v", err)
	}
	if !r.Finished() {
		t.Fatal("stand should finish the round")
	}
	if err := r.Apply(script(), MoveHit); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("move after stand: got %v, want ErrIllegalMove", err)
	}
}

func TestBlackjackHitToBust(t *testing.T) {
	r := &blackjackRound{
		deck:       NewDeck(),
		player:     []Card{card("10", "♦"), card("9", "♠")},
		dealer:     []Card{card("2", "♥"), card("3", "♠")},
		naturalMul: decimal.NewFromInt(1),
	}
	// ♦K busts the hand at 29.
	if err := r.Apply(script(44), MoveHit); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if !r.Finished() {
		t.Fatal("bust should finish the round")
	}
	out, err := r.Resolve(script())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if out.Result != Loss {
		t.Errorf("bust resolved as %s, want loss", out.Result)
	}
}

func TestBlackjackExhaustedDeckForcesStand(t *testing.T) {
	deck := NewDeck()
	src := script()
	for deck.Remaining() > 0 {
		if _, err := deck.Draw(src); err != nil {
			t.Fatalf("drain failed: %v", err)
		}
	}

	r := &blackjackRound{
		deck:       deck,
		player:     []Card{card("5", "♦"), card("6", "♠")},
		dealer:     []Card{card("2", "♥"), card("3", "♠")},
		naturalMul: decimal.NewFromInt(1),
	}
	if err := r.Apply(src, MoveHit); err != nil {
		t.Fatalf("hit on empty deck should force a stand, got %v", err)
	}
	if !r.Finished() {
		t.Fatal("round should be finished")
	}
	if len(r.player) != 2 {
		t.Errorf("player hand grew to %d cards from an empty deck", len(r.player))
	}
	// Dealer cannot draw either; 11 beats 5.
	out, err := r.Resolve(src)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if out.Result != Win {
		t.Errorf("result = %s, want win", out.Result)
	}
}
