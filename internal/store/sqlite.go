// Package store implements the ledger and the settlement-failure journal on
// SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/AetCloud/nappbot-engine/internal/ledger"
)

// Store is a SQLite-backed ledger.Ledger plus the journal the recovery sweep
// reads.
type Store struct {
	db              *sql.DB
	startingBalance int64
}

// Open opens/creates a SQLite database at path and runs migrations. New users
// are seeded with startingBalance coins.
func Open(path string, startingBalance int64) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db, startingBalance: startingBalance}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			balance INTEGER NOT NULL,
			streak INTEGER NOT NULL DEFAULT 0,
			last_active DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settlement_failures (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			game TEXT NOT NULL,
			stake INTEGER NOT NULL,
			payout INTEGER NOT NULL,
			failed_op TEXT NOT NULL,
			refunded INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_refunded ON settlement_failures(refunded, created_at)`,
	}
	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committing on nil and rolling back
// otherwise.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", storeErr(err))
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", storeErr(err))
	}
	return nil
}

// storeErr maps driver failures onto the ledger taxonomy while keeping
// not-found sentinels intact.
func storeErr(err error) error {
	if err == nil || errors.Is(err, ledger.ErrUnknownUser) {
		return err
	}
	return fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
}

// EnsureUser creates the user with the starting balance if absent.
func (s *Store) EnsureUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, balance) VALUES (?, ?) ON CONFLICT(user_id) DO NOTHING`,
		userID, s.startingBalance,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", storeErr(err))
	}
	return nil
}

// GetBalance returns the user's balance.
func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE user_id = ?`, userID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("get balance: %w", ledger.ErrUnknownUser)
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", storeErr(err))
	}
	return balance, nil
}

// AdjustBalance applies a relative adjustment to the user's balance.
func (s *Store) AdjustBalance(ctx context.Context, userID string, delta int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET balance = balance + ? WHERE user_id = ?`, delta, userID,
	)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", storeErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust balance: %w", storeErr(err))
	}
	if n == 0 {
		return fmt.Errorf("adjust balance: %w", ledger.ErrUnknownUser)
	}
	return nil
}

// GetStreak returns the user's signed streak.
func (s *Store) GetStreak(ctx context.Context, userID string) (int64, error) {
	var streak int64
	err := s.db.QueryRowContext(ctx,
		`SELECT streak FROM users WHERE user_id = ?`, userID,
	).Scan(&streak)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("get streak: %w", ledger.ErrUnknownUser)
	}
	if err != nil {
		return 0, fmt.Errorf("get streak: %w", storeErr(err))
	}
	return streak, nil
}

// UpdateStreak records a win or loss and returns the new streak.
func (s *Store) UpdateStreak(ctx context.Context, userID string, won bool) (int64, error) {
	var next int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var streak int64
		err := tx.QueryRowContext(ctx,
			`SELECT streak FROM users WHERE user_id = ?`, userID,
		).Scan(&streak)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read streak: %w", ledger.ErrUnknownUser)
		}
		if err != nil {
			return fmt.Errorf("read streak: %w", storeErr(err))
		}

		next = nextStreak(streak, won)
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET streak = ? WHERE user_id = ?`, next, userID,
		); err != nil {
			return fmt.Errorf("write streak: %w", storeErr(err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// nextStreak extends a same-sign streak by one or resets to +/-1 on a flip.
func nextStreak(streak int64, won bool) int64 {
	switch {
	case won && streak > 0:
		return streak + 1
	case won:
		return 1
	case streak < 0:
		return streak - 1
	default:
		return -1
	}
}

// MarkActive touches the user's liveness timestamp.
func (s *Store) MarkActive(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_active = CURRENT_TIMESTAMP WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("mark active: %w", storeErr(err))
	}
	return nil
}

// RecordSettlementFailure journals a failed settlement for later refund.
func (s *Store) RecordSettlementFailure(ctx context.Context, f ledger.SettlementFailure) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlement_failures (id, session_id, user_id, game, stake, payout, failed_op)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.SessionID, f.UserID, f.Game, f.Stake, f.Payout, f.FailedOp,
	)
	if err != nil {
		return fmt.Errorf("record settlement failure: %w", storeErr(err))
	}
	return nil
}

// PendingFailures returns journaled failures that have not been refunded yet,
// oldest first.
func (s *Store) PendingFailures(ctx context.Context, limit int) ([]ledger.SettlementFailure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, game, stake, payout, failed_op, created_at
		 FROM settlement_failures WHERE refunded = 0
		 ORDER BY created_at LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending failures: %w", storeErr(err))
	}
	defer rows.Close()

	var failures []ledger.SettlementFailure
	for rows.Next() {
		var f ledger.SettlementFailure
		if err := rows.Scan(&f.ID, &f.SessionID, &f.UserID, &f.Game, &f.Stake, &f.Payout, &f.FailedOp, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failure: %w", storeErr(err))
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", storeErr(err))
	}
	return failures, nil
}

// MarkRefunded flags a journaled failure as handled.
func (s *Store) MarkRefunded(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE settlement_failures SET refunded = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("mark refunded: %w", storeErr(err))
	}
	return nil
}
