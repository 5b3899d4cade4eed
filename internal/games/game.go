package games

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// Kind identifies a game type.
type Kind string

const (
	Blackjack   Kind = "blackjack"
	Roulette    Kind = "roulette"
	War         Kind = "war"
	Slots       Kind = "slots"
	HigherLower Kind = "higherlower"
)

// Result classifies a finished round.
type Result string

const (
	Win  Result = "win"
	Loss Result = "loss"
	Push Result = "push"
)

// Move is a player decision submitted against a round in progress.
type Move string

const (
	MoveHit    Move = "hit"
	MoveStand  Move = "stand"
	MoveDouble Move = "double"
	MoveHigher Move = "higher"
	MoveLower  Move = "lower"
)

// Outcome is the resolver's verdict for a finished round. Multiplier is the
// win payout as a multiple of the total stake; it is zero for Loss and Push.
type Outcome struct {
	Result     Result
	Multiplier decimal.Decimal
}

var (
	// ErrIllegalMove reports a move outside the round's current legal move set.
	ErrIllegalMove = errors.New("illegal move")
	// ErrBadParams reports invalid game parameters at deal time.
	ErrBadParams = errors.New("bad game parameters")
	// ErrRoundInProgress reports a Resolve call on an unfinished round.
	ErrRoundInProgress = errors.New("round not finished")
)

// Game deals new rounds of one game kind.
type Game interface {
	Kind() Kind
	Deal(src rng.Source, params map[string]any) (Round, error)
}

// Round holds one in-progress round's state. Rounds are not safe for
// concurrent use; the session engine serializes access per session.
type Round interface {
	// Moves returns the currently legal moves. Empty for single-shot games
	// and for finished rounds.
	Moves() []Move

	// Apply advances the round by one move. Returns ErrIllegalMove without
	// mutating state if the move is not currently legal.
	Apply(src rng.Source, m Move) error

	// DoublesStake reports whether the move commits an additional stake equal
	// to the original bet. The caller must debit before Apply.
	DoublesStake(m Move) bool

	// Finished reports whether the round can be resolved.
	Finished() bool

	// Resolve maps the finished round to an outcome. Games with
	// resolution-time randomness (roulette) consume src here.
	Resolve(src rng.Source) (Outcome, error)

	// Snapshot returns a render-friendly view of the round state.
	Snapshot() map[string]any
}

// registry holds all available games keyed by kind.
var registry = make(map[Kind]Game)

// Register adds a game to the registry.
func Register(g Game) {
	registry[g.Kind()] = g
}

// Get retrieves a game by kind.
func Get(kind Kind) (Game, bool) {
	g, ok := registry[kind]
	return g, ok
}

// List returns all registered game kinds.
func List() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	return kinds
}

func init() {
	Register(NewBlackjack())
	Register(&RouletteGame{})
	Register(&WarGame{})
	Register(&SlotsGame{})
	Register(&HigherLowerGame{})
}
