package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AetCloud/nappbot-engine/internal/games"
	"github.com/AetCloud/nappbot-engine/internal/ledger"
	"github.com/AetCloud/nappbot-engine/internal/rng"
)

// RenderFunc is invoked after every state transition so the presentation
// layer can redraw. The engine knows nothing about message formatting.
type RenderFunc func(View)

// Params configures a new Engine. Ledger is required; everything else has a
// usable default.
type Params struct {
	Ledger    ledger.Ledger
	Journal   ledger.Journal
	Source    rng.Source
	Scheduler Scheduler
	Render    RenderFunc
	Logger    *slog.Logger

	DecisionTimeout time.Duration
	ReplayWindow    time.Duration
}

// Engine orchestrates wager sessions: it stakes funds, runs the state machine
// to completion, settles the ledger exactly once per session and hands out
// bounded-lifetime replay grants.
type Engine struct {
	ledger  ledger.Ledger
	journal ledger.Journal
	src     rng.Source
	sched   Scheduler
	render  RenderFunc
	log     *slog.Logger

	decisionTimeout time.Duration
	replayWindow    time.Duration

	reg     *registry
	replays *replayGrants
}

// New creates an engine. Params.Ledger must be non-nil.
func New(p Params) *Engine {
	if p.Source == nil {
		p.Source = rng.Default()
	}
	if p.Scheduler == nil {
		p.Scheduler = TimerScheduler{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.DecisionTimeout <= 0 {
		p.DecisionTimeout = 30 * time.Second
	}
	if p.ReplayWindow <= 0 {
		p.ReplayWindow = time.Minute
	}
	return &Engine{
		ledger:          p.Ledger,
		journal:         p.Journal,
		src:             p.Source,
		sched:           p.Scheduler,
		render:          p.Render,
		log:             p.Logger,
		decisionTimeout: p.DecisionTimeout,
		replayWindow:    p.ReplayWindow,
		reg:             newRegistry(),
		replays:         newReplayGrants(),
	}
}

// StartSession checks funds, claims the user's per-game slot, debits the
// stake, deals the initial round and either settles immediately (single-shot
// games, natural 21) or arms the decision deadline.
func (e *Engine) StartSession(ctx context.Context, userID string, kind games.Kind, stake int64, params map[string]any) (View, error) {
	if stake <= 0 {
		return View{}, ErrInvalidStake
	}
	g, ok := games.Get(kind)
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownGame, kind)
	}

	if err := e.ledger.EnsureUser(ctx, userID); err != nil {
		return View{}, fmt.Errorf("ensure user: %w", err)
	}
	balance, err := e.ledger.GetBalance(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("check funds: %w", err)
	}
	if balance < stake {
		return View{}, ErrInsufficientFunds
	}

	// Params are validated at deal time, before any money moves.
	round, err := g.Deal(e.src, params)
	if err != nil {
		return View{}, fmt.Errorf("deal: %w", err)
	}

	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Game:      kind,
		Stake:     stake,
		State:     StateCreated,
		Round:     round,
		Params:    params,
		CreatedAt: time.Now(),
	}
	if err := e.reg.claim(s); err != nil {
		return View{}, err
	}

	if err := e.ledger.AdjustBalance(ctx, userID, -stake); err != nil {
		// The debit itself failed: nothing was committed, so the session
		// never leaves Created and needs no reconciliation.
		e.reg.evict(s)
		return View{}, fmt.Errorf("debit stake: %w", err)
	}
	if err := e.ledger.MarkActive(ctx, userID); err != nil {
		e.log.Warn("mark active failed", "user_id", userID, "error", err)
	}

	if round.Finished() {
		s.transition(StateResolving)
		return e.settleOwned(ctx, s)
	}

	s.mu.Lock()
	s.State = StateAwaitingDecision
	s.DeadlineAt = time.Now().Add(e.decisionTimeout)
	id := s.ID
	s.cancelTimer = e.sched.Schedule(e.decisionTimeout, func() {
		if err := e.Expire(context.Background(), id); err != nil {
			e.log.Debug("deadline expiry lost race", "session_id", id, "error", err)
		}
	})
	s.mu.Unlock()

	e.renderSession(s)
	return s.view(), nil
}

// SubmitMove validates and applies one player decision. Illegal moves and
// failed double-down debits leave the session and round untouched.
func (e *Engine) SubmitMove(ctx context.Context, id uuid.UUID, move games.Move) (View, error) {
	s, ok := e.reg.get(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	if !s.claim(StateAwaitingDecision) {
		return View{}, ErrSessionTerminal
	}
	// From here this call owns the session; a racing expiry sees Resolving
	// and no-ops. Round state is still read and written under the session
	// mutex so that concurrent view snapshots never observe a half-applied
	// move, but the mutex is never held across ledger I/O.

	s.mu.Lock()
	legal := false
	for _, m := range s.Round.Moves() {
		if m == move {
			legal = true
			break
		}
	}
	doubles := legal && s.Round.DoublesStake(move)
	stake := s.Stake
	s.mu.Unlock()

	if !legal {
		s.transition(StateAwaitingDecision)
		return View{}, fmt.Errorf("%w: %s", games.ErrIllegalMove, move)
	}

	if doubles {
		balance, err := e.ledger.GetBalance(ctx, s.UserID)
		if err != nil {
			s.transition(StateAwaitingDecision)
			return View{}, fmt.Errorf("check funds: %w", err)
		}
		if balance < stake {
			s.transition(StateAwaitingDecision)
			return View{}, ErrInsufficientFunds
		}
		if err := e.ledger.AdjustBalance(ctx, s.UserID, -stake); err != nil {
			s.transition(StateAwaitingDecision)
			return View{}, fmt.Errorf("debit double-down: %w", err)
		}
		s.mu.Lock()
		s.Stake *= 2
		s.mu.Unlock()
	}

	s.mu.Lock()
	err := s.Round.Apply(e.src, move)
	finished := err == nil && s.Round.Finished()
	s.mu.Unlock()
	if err != nil {
		// Legality was pre-checked; reaching this is a game implementation
		// fault, not user error.
		s.transition(StateAwaitingDecision)
		return View{}, fmt.Errorf("apply %s: %w", move, err)
	}

	if finished {
		return e.settleOwned(ctx, s)
	}

	s.transition(StateAwaitingDecision)
	e.renderSession(s)
	return s.view(), nil
}

// Expire forfeits a session whose deadline elapsed without a move. Late
// expiries and late moves race on the same claim; the loser is a no-op.
func (e *Engine) Expire(ctx context.Context, id uuid.UUID) error {
	s, ok := e.reg.get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if !s.claim(StateAwaitingDecision) {
		return ErrSessionTerminal
	}

	// Forfeiture: the stake stays debited, streak records a loss.
	if _, err := e.ledger.UpdateStreak(ctx, s.UserID, false); err != nil {
		e.journalFailure(ctx, s, "update_streak", -s.Stake, err)
	}

	s.mu.Lock()
	s.State = StateExpired
	s.Outcome = &Outcome{Result: games.Loss, Payout: -s.Stake}
	cancel := s.cancelTimer
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	e.reg.evict(s)
	e.log.Info("session expired",
		"session_id", s.ID, "user_id", s.UserID, "game", s.Game, "stake", s.Stake)
	e.renderSession(s)
	return nil
}

// Replay starts a fresh session with the settled session's final stake.
// Grants are single use and expire after the replay window.
func (e *Engine) Replay(ctx context.Context, token uuid.UUID, userID string) (View, error) {
	g, err := e.replays.take(token, userID)
	if err != nil {
		return View{}, err
	}
	return e.StartSession(ctx, userID, g.game, g.stake, g.params)
}

// Get returns a view of a live session.
func (e *Engine) Get(id uuid.UUID) (View, error) {
	s, ok := e.reg.get(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	return s.view(), nil
}

// ExpireStale forfeits AwaitingDecision sessions whose deadline has passed,
// catching timers lost to races or missed schedules. Returns the number of
// sessions expired.
func (e *Engine) ExpireStale(ctx context.Context) int {
	n := 0
	now := time.Now()
	for _, s := range e.reg.all() {
		s.mu.Lock()
		stale := s.State == StateAwaitingDecision && now.After(s.DeadlineAt)
		s.mu.Unlock()
		if stale && e.Expire(ctx, s.ID) == nil {
			n++
		}
	}
	return n
}

// settleOwned resolves and settles a session the caller has claimed into
// StateResolving. The terminal transition happens exactly once because only
// the claim winner reaches here.
func (e *Engine) settleOwned(ctx context.Context, s *Session) (View, error) {
	s.mu.Lock()
	out, err := s.Round.Resolve(e.src)
	stake := s.Stake
	s.mu.Unlock()
	if err != nil {
		return e.failOwned(ctx, s, "resolve", 0, err)
	}

	var payout int64
	switch out.Result {
	case games.Win:
		payout = decimal.NewFromInt(stake).Mul(out.Multiplier).Round(0).IntPart()
	case games.Loss:
		payout = -stake
	case games.Push:
		payout = 0
	}

	// The stake was debited up front, so the settlement credit is the stake
	// plus the signed payout: stake*(1+m) on a win, the stake back on a push,
	// nothing on a loss.
	if credit := stake + payout; credit != 0 {
		if err := e.ledger.AdjustBalance(ctx, s.UserID, credit); err != nil {
			return e.failOwned(ctx, s, "adjust_balance", payout, err)
		}
	}

	if out.Result != games.Push {
		if _, err := e.ledger.UpdateStreak(ctx, s.UserID, out.Result == games.Win); err != nil {
			// The balance is already settled; erroring the session here would
			// refund money the user keeps. Journal the streak op instead.
			e.journalFailure(ctx, s, "update_streak", payout, err)
		}
	}

	s.mu.Lock()
	s.State = StateSettled
	s.Outcome = &Outcome{Result: out.Result, Payout: payout}
	cancel := s.cancelTimer
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	e.reg.evict(s)

	token := e.replays.grant(s, time.Now().Add(e.replayWindow))
	e.log.Info("session settled",
		"session_id", s.ID, "user_id", s.UserID, "game", s.Game,
		"stake", s.Stake, "result", out.Result, "payout", payout)
	e.renderSession(s)

	v := s.view()
	v.ReplayToken = token.String()
	return v, nil
}

// failOwned moves a claimed session to Errored, journals it for
// reconciliation and surfaces the cause. Errored sessions never vanish
// silently: they are logged and journaled with the failed ledger op.
func (e *Engine) failOwned(ctx context.Context, s *Session, op string, payout int64, cause error) (View, error) {
	e.journalFailure(ctx, s, op, payout, cause)

	s.mu.Lock()
	s.State = StateErrored
	cancel := s.cancelTimer
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	e.reg.evict(s)
	e.renderSession(s)
	return s.view(), fmt.Errorf("%s: %w", op, cause)
}

func (e *Engine) journalFailure(ctx context.Context, s *Session, op string, payout int64, cause error) {
	e.log.Error("ledger operation failed",
		"session_id", s.ID, "user_id", s.UserID, "game", s.Game,
		"op", op, "stake", s.Stake, "payout", payout, "error", cause)
	if e.journal == nil {
		return
	}
	err := e.journal.RecordSettlementFailure(ctx, ledger.SettlementFailure{
		SessionID: s.ID.String(),
		UserID:    s.UserID,
		Game:      string(s.Game),
		Stake:     s.Stake,
		Payout:    payout,
		FailedOp:  op,
	})
	if err != nil {
		e.log.Error("journal write failed", "session_id", s.ID, "error", err)
	}
}

func (e *Engine) renderSession(s *Session) {
	if e.render != nil {
		e.render(s.view())
	}
}
