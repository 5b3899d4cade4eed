package games

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// BlackjackGame implements blackjack against a dealer that stands on 17+.
// Each round plays from its own finite 52-card deck; if the deck runs out
// mid-round the side drawing simply stops with the cards it has.
type BlackjackGame struct {
	// NaturalMultiplier is the payout multiplier for a natural 21 that beats
	// the dealer. A natural against a dealer natural is a push.
	NaturalMultiplier decimal.Decimal
}

// NewBlackjack returns a blackjack game with the default natural payout (1x).
func NewBlackjack() *BlackjackGame {
	return &BlackjackGame{NaturalMultiplier: decimal.NewFromInt(1)}
}

// Kind returns the game identifier.
func (g *BlackjackGame) Kind() Kind { return Blackjack }

// Deal creates a new round: two cards each for player and dealer.
func (g *BlackjackGame) Deal(src rng.Source, params map[string]any) (Round, error) {
	r := &blackjackRound{
		deck:       NewDeck(),
		naturalMul: g.NaturalMultiplier,
	}
	for i := 0; i < 2; i++ {
		pc, err := r.deck.Draw(src)
		if err != nil {
			return nil, fmt.Errorf("deal player card: %w", err)
		}
		dc, err := r.deck.Draw(src)
		if err != nil {
			return nil, fmt.Errorf("deal dealer card: %w", err)
		}
		r.player = append(r.player, pc)
		r.dealer = append(r.dealer, dc)
	}
	// A natural 21 skips the decision phase entirely.
	if blackjackHandValue(r.player) == 21 {
		r.natural = true
		r.done = true
	}
	return r, nil
}

type blackjackRound struct {
	deck       *Deck
	player     []Card
	dealer     []Card
	naturalMul decimal.Decimal
	natural    bool
	doubled    bool
	done       bool
}

func (r *blackjackRound) Moves() []Move {
	if r.done {
		return nil
	}
	moves := []Move{MoveHit, MoveStand}
	if len(r.player) == 2 {
		moves = append(moves, MoveDouble)
	}
	return moves
}

func (r *blackjackRound) DoublesStake(m Move) bool { return m == MoveDouble }

func (r *blackjackRound) Apply(src rng.Source, m Move) error {
	if r.done {
		return ErrIllegalMove
	}
	switch m {
	case MoveHit:
		if err := r.hit(src); err != nil {
			return err
		}
	case MoveDouble:
		if len(r.player) != 2 {
			return ErrIllegalMove
		}
		r.doubled = true
		if err := r.hit(src); err != nil {
			return err
		}
		r.done = true
	case MoveStand:
		r.done = true
	default:
		return ErrIllegalMove
	}
	return nil
}

// hit draws one card for the player. An exhausted deck forces a stand.
func (r *blackjackRound) hit(src rng.Source) error {
	c, err := r.deck.Draw(src)
	if errors.Is(err, ErrDeckExhausted) {
		r.done = true
		return nil
	}
	if err != nil {
		return err
	}
	r.player = append(r.player, c)
	if blackjackHandValue(r.player) >= 21 {
		r.done = true
	}
	return nil
}

func (r *blackjackRound) Finished() bool { return r.done }

func (r *blackjackRound) Resolve(src rng.Source) (Outcome, error) {
	if !r.done {
		return Outcome{}, ErrRoundInProgress
	}

	playerTotal := blackjackHandValue(r.player)
	if playerTotal > 21 {
		return Outcome{Result: Loss}, nil
	}

	// Dealer plays out: hit below 17, stand on 17+. Stops early if the deck
	// runs dry.
	for blackjackHandValue(r.dealer) < 17 {
		c, err := r.deck.Draw(src)
		if errors.Is(err, ErrDeckExhausted) {
			break
		}
		if err != nil {
			return Outcome{}, err
		}
		r.dealer = append(r.dealer, c)
	}

	dealerTotal := blackjackHandValue(r.dealer)
	dealerNatural := dealerTotal == 21 && len(r.dealer) == 2

	switch {
	case r.natural && dealerNatural:
		return Outcome{Result: Push}, nil
	case r.natural:
		return Outcome{Result: Win, Multiplier: r.naturalMul}, nil
	case dealerTotal > 21 || playerTotal > dealerTotal:
		return Outcome{Result: Win, Multiplier: decimal.NewFromInt(1)}, nil
	case playerTotal == dealerTotal:
		return Outcome{Result: Push}, nil
	default:
		return Outcome{Result: Loss}, nil
	}
}

func (r *blackjackRound) Snapshot() map[string]any {
	snap := map[string]any{
		"player_cards": cardStrings(r.player),
		"player_value": blackjackHandValue(r.player),
		"dealer_cards": cardStrings(r.dealer),
		"dealer_value": blackjackHandValue(r.dealer),
		"doubled":      r.doubled,
		"natural":      r.natural,
	}
	if !r.done {
		// Hide the dealer hole card while the player is still deciding.
		snap["dealer_cards"] = []string{r.dealer[0].String(), "??"}
		snap["dealer_value"] = blackjackCardValue(r.dealer[0].Rank)
	}
	return snap
}
