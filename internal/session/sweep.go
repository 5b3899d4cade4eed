package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/AetCloud/nappbot-engine/internal/ledger"
)

// Sweeper is the recovery job: it forfeits stale AwaitingDecision sessions
// and replays journaled settlement failures against the ledger with bounded
// retries.
type Sweeper struct {
	Engine  *Engine
	Ledger  ledger.Ledger
	Journal ledger.JournalReader
	Logger  *slog.Logger

	// BatchSize bounds how many journal entries one sweep drains. Defaults
	// to 100.
	BatchSize int
}

// Run sweeps at every tick until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger().Error("sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one pass. Journal entries that still cannot be applied stay
// pending for the next pass; their errors are aggregated in the return value.
func (w *Sweeper) Sweep(ctx context.Context) error {
	if w.Engine != nil {
		if n := w.Engine.ExpireStale(ctx); n > 0 {
			w.logger().Info("expired stale sessions", "count", n)
		}
	}
	if w.Journal == nil {
		return nil
	}

	batch := w.BatchSize
	if batch <= 0 {
		batch = 100
	}
	failures, err := w.Journal.PendingFailures(ctx, batch)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	var errs error
	for _, f := range failures {
		if err := w.reconcile(ctx, f); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", f.SessionID, err))
			continue
		}
		if err := w.Journal.MarkRefunded(ctx, f.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark refunded %s: %w", f.ID, err))
		}
	}
	return errs
}

// reconcile applies one journaled failure. The failed op determines what is
// owed: a failed settlement credit is replayed, a failed resolve refunds the
// stake, a failed streak write is retried.
func (w *Sweeper) reconcile(ctx context.Context, f ledger.SettlementFailure) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))

	switch f.FailedOp {
	case "adjust_balance":
		credit := f.Stake + f.Payout
		if credit == 0 {
			return nil
		}
		return retry.Do(ctx, backoff, func(ctx context.Context) error {
			return retryable(w.Ledger.AdjustBalance(ctx, f.UserID, credit))
		})
	case "resolve":
		return retry.Do(ctx, backoff, func(ctx context.Context) error {
			return retryable(w.Ledger.AdjustBalance(ctx, f.UserID, f.Stake))
		})
	case "update_streak":
		return retry.Do(ctx, backoff, func(ctx context.Context) error {
			_, err := w.Ledger.UpdateStreak(ctx, f.UserID, f.Payout > 0)
			return retryable(err)
		})
	default:
		return fmt.Errorf("unknown journaled op %q", f.FailedOp)
	}
}

// retryable marks store outages for another attempt; anything else is final.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ledger.ErrStoreUnavailable) {
		return retry.RetryableError(err)
	}
	return err
}

func (w *Sweeper) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
