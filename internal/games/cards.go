package games

import (
	"errors"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// Card represents a playing card with rank and suit.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// String returns a human-readable card representation like "♦2" or "♠A".
func (c Card) String() string {
	return c.Suit + c.Rank
}

// Suits in deal order: ♦, ♥, ♠, ♣
var cardSuits = []string{"♦", "♥", "♠", "♣"}

// Ranks in order: 2-10, J, Q, K, A
var cardRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// ErrDeckExhausted reports a draw from an empty deck. Games recover locally:
// the round resolves with whatever cards were already dealt.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is a finite multiset of cards. Draws remove the drawn card.
type Deck struct {
	cards []Card
}

// NewDeck returns a full 52-card deck.
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, rank := range cardRanks {
		for _, suit := range cardSuits {
			d.cards = append(d.cards, Card{Rank: rank, Suit: suit})
		}
	}
	return d
}

// Remaining returns the number of undrawn cards.
func (d *Deck) Remaining() int { return len(d.cards) }

// Draw removes and returns a uniformly drawn card, or ErrDeckExhausted.
func (d *Deck) Draw(src rng.Source) (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	i := src.IntN(len(d.cards))
	c := d.cards[i]
	d.cards[i] = d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, nil
}

// warRankValue returns the rank order used by War: 2 low, ace high.
func warRankValue(rank string) int {
	switch rank {
	case "A":
		return 14
	case "K":
		return 13
	case "Q":
		return 12
	case "J":
		return 11
	case "10":
		return 10
	case "9":
		return 9
	case "8":
		return 8
	case "7":
		return 7
	case "6":
		return 6
	case "5":
		return 5
	case "4":
		return 4
	case "3":
		return 3
	case "2":
		return 2
	default:
		return 0
	}
}

// blackjackCardValue returns the blackjack point value of a card.
// 2-10: face value, J/Q/K: 10, A: 11 (soft)
func blackjackCardValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	case "9":
		return 9
	case "8":
		return 8
	case "7":
		return 7
	case "6":
		return 6
	case "5":
		return 5
	case "4":
		return 4
	case "3":
		return 3
	case "2":
		return 2
	default:
		return 0
	}
}

// blackjackHandValue calculates the best blackjack hand value (accounting for soft aces).
func blackjackHandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += blackjackCardValue(c.Rank)
		if c.Rank == "A" {
			aces++
		}
	}
	// Reduce aces from 11 to 1 if over 21
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// cardStrings renders a hand for snapshots.
func cardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
