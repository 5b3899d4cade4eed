// Package ledger defines the balance and streak store the session engine
// settles against. The store does not enforce non-negative balances; callers
// must check funds before debiting.
package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStoreUnavailable reports that the backing store could not be reached.
	ErrStoreUnavailable = errors.New("ledger store unavailable")
	// ErrUnknownUser reports an operation against a user the store has never seen.
	ErrUnknownUser = errors.New("unknown user")
)

// Ledger is the engine's view of the economy store. All mutating operations
// are non-idempotent; the engine guarantees it calls each at most once per
// session settlement.
type Ledger interface {
	// EnsureUser creates the user with the starting balance if absent.
	EnsureUser(ctx context.Context, userID string) error

	// GetBalance returns the user's balance. Never negative.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// AdjustBalance applies a relative adjustment, which may be negative.
	AdjustBalance(ctx context.Context, userID string, delta int64) error

	// GetStreak returns the signed consecutive-outcome counter.
	GetStreak(ctx context.Context, userID string) (int64, error)

	// UpdateStreak records a win or loss and returns the new streak. A result
	// matching the current streak's sign extends it; a flip resets to +/-1.
	// Pushes must not call this.
	UpdateStreak(ctx context.Context, userID string, won bool) (int64, error)

	// MarkActive touches the user's liveness timestamp. Best effort; callers
	// log failures and move on.
	MarkActive(ctx context.Context, userID string) error
}

// SettlementFailure is a settlement that could not reach the store. The stake
// is presumed debited; the recovery sweep refunds it later.
type SettlementFailure struct {
	ID        string
	SessionID string
	UserID    string
	Game      string
	Stake     int64
	Payout    int64
	FailedOp  string
	CreatedAt time.Time
}

// Journal records settlement failures for reconciliation.
type Journal interface {
	RecordSettlementFailure(ctx context.Context, f SettlementFailure) error
}

// JournalReader drains the journal during the recovery sweep.
type JournalReader interface {
	PendingFailures(ctx context.Context, limit int) ([]SettlementFailure, error)
	MarkRefunded(ctx context.Context, id string) error
}
