package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AetCloud/nappbot-engine/internal/games"
	"github.com/AetCloud/nappbot-engine/internal/ledger"
)

type fakeJournalReader struct {
	mu       sync.Mutex
	pending  []ledger.SettlementFailure
	refunded []string
}

func (j *fakeJournalReader) PendingFailures(ctx context.Context, limit int) ([]ledger.SettlementFailure, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.pending) > limit {
		return j.pending[:limit], nil
	}
	return j.pending, nil
}

func (j *fakeJournalReader) MarkRefunded(ctx context.Context, id string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.refunded = append(j.refunded, id)
	for i, f := range j.pending {
		if f.ID == id {
			j.pending = append(j.pending[:i], j.pending[i+1:]...)
			break
		}
	}
	return nil
}

func TestSweepReconcilesJournaledFailures(t *testing.T) {
	led := newFakeLedger(0, "alice", "bob", "carol")
	journal := &fakeJournalReader{
		pending: []ledger.SettlementFailure{
			// Failed settlement credit: the user is owed stake + payout.
			{ID: "f1", SessionID: "s1", UserID: "alice", Stake: 20, Payout: 20, FailedOp: "adjust_balance"},
			// Failed resolve: the stake comes back.
			{ID: "f2", SessionID: "s2", UserID: "bob", Stake: 50, Payout: 0, FailedOp: "resolve"},
			// Failed streak write after a win was already paid out.
			{ID: "f3", SessionID: "s3", UserID: "carol", Stake: 10, Payout: 10, FailedOp: "update_streak"},
		},
	}
	w := &Sweeper{Ledger: led, Journal: journal}

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if got := led.balance("alice"); got != 40 {
		t.Errorf("alice balance = %d, want 40", got)
	}
	if got := led.balance("bob"); got != 50 {
		t.Errorf("bob balance = %d, want 50", got)
	}
	if got := led.balance("carol"); got != 0 {
		t.Errorf("carol balance = %d, want 0 (streak retry must not pay again)", got)
	}
	if led.streaks["carol"] != 1 {
		t.Errorf("carol streak = %d, want 1", led.streaks["carol"])
	}
	if len(journal.refunded) != 3 {
		t.Errorf("refunded = %v, want all three entries", journal.refunded)
	}
}

func TestSweepSkipsZeroCredit(t *testing.T) {
	led := newFakeLedger(0, "alice")
	journal := &fakeJournalReader{
		pending: []ledger.SettlementFailure{
			// A journaled loss: credit would be stake + payout = 0.
			{ID: "f1", SessionID: "s1", UserID: "alice", Stake: 20, Payout: -20, FailedOp: "adjust_balance"},
		},
	}
	w := &Sweeper{Ledger: led, Journal: journal}

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(led.adjustments) != 0 {
		t.Errorf("zero credit still hit the ledger: %v", led.adjustments)
	}
	if len(journal.refunded) != 1 {
		t.Errorf("zero-credit entry should still be marked handled, refunded = %v", journal.refunded)
	}
}

func TestSweepLeavesUnknownOpsPending(t *testing.T) {
	led := newFakeLedger(0, "alice")
	journal := &fakeJournalReader{
		pending: []ledger.SettlementFailure{
			{ID: "f1", SessionID: "s1", UserID: "alice", Stake: 20, FailedOp: "mystery"},
		},
	}
	w := &Sweeper{Ledger: led, Journal: journal}

	err := w.Sweep(context.Background())
	if err == nil || !strings.Contains(err.Error(), "mystery") {
		t.Fatalf("sweep error = %v, want unknown-op failure", err)
	}
	if len(journal.refunded) != 0 {
		t.Errorf("unhandled entry was marked refunded: %v", journal.refunded)
	}
	if len(journal.pending) != 1 {
		t.Errorf("entry should stay pending for the next pass")
	}
}

func TestSweepRetriesStoreOutages(t *testing.T) {
	led := newFakeLedger(0, "alice")
	led.failAdjustOn = 1 // first attempt fails, retry succeeds
	journal := &fakeJournalReader{
		pending: []ledger.SettlementFailure{
			{ID: "f1", SessionID: "s1", UserID: "alice", Stake: 20, Payout: 20, FailedOp: "adjust_balance"},
		},
	}
	w := &Sweeper{Ledger: led, Journal: journal}

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if got := led.balance("alice"); got != 40 {
		t.Errorf("balance = %d, want 40 after retry", got)
	}
}

func TestSweepExpiresStaleSessions(t *testing.T) {
	led := newFakeLedger(100, "alice")
	// Timers never fire on their own with the fake scheduler; the sweep is the
	// only thing that can catch the missed deadline.
	e := New(Params{
		Ledger:          led,
		Source:          script(49),
		Scheduler:       &fakeScheduler{},
		DecisionTimeout: time.Nanosecond,
	})
	if _, err := e.StartSession(context.Background(), "alice", games.HigherLower, 20, nil); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	w := &Sweeper{Engine: e, Ledger: led}
	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if got := led.balance("alice"); got != 80 {
		t.Errorf("balance = %d, want 80 after stale expiry", got)
	}
}
