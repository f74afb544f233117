// Package poll implements the PollLoop (C7 in SPEC_FULL.md): one logical
// task per wallet that fetches claimable balances, resolves each record's
// unlock instant, and hands newly-seen balances to the ClaimScheduler,
// plus the process-wide sweep task of spec.md §4.5. It generalizes the
// teacher's goroutine-per-subsystem convention (e.g.
// modules/wallet/update.go's consensus-subscription callback) to a
// self-rescheduling clock.Timer loop, since this system has no
// consensus-change feed to subscribe to — it must poll an external ledger.
package poll

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/ledger"
	"github.com/threefoldtech/piclaim/logring"
	"github.com/threefoldtech/piclaim/registry"
	"github.com/threefoldtech/piclaim/resolver"
	"github.com/threefoldtech/piclaim/scheduler"
	"github.com/threefoldtech/piclaim/types"
)

// DefaultInterval is the default per-wallet poll period (spec.md §4.5).
const DefaultInterval = 5 * time.Minute

// DefaultSweepInterval is the default process-wide sweep period.
const DefaultSweepInterval = 2 * time.Minute

// DefaultCallTimeout bounds every ledger call a poll iteration makes.
const DefaultCallTimeout = 15 * time.Second

// Loop drives the per-wallet and sweep polling tasks.
type Loop struct {
	clk         clock.Clock
	ledger      ledger.Client
	wallets     *registry.WalletRegistry
	balances    *registry.BalanceRegistry
	scheduler   *scheduler.ClaimScheduler
	logs        *logring.Ring
	interval    time.Duration
	callTimeout time.Duration
}

// New builds a Loop. A zero interval or callTimeout falls back to the
// package defaults.
func New(
	clk clock.Clock,
	ledgerClient ledger.Client,
	wallets *registry.WalletRegistry,
	balances *registry.BalanceRegistry,
	sched *scheduler.ClaimScheduler,
	logs *logring.Ring,
	interval, callTimeout time.Duration,
) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Loop{
		clk: clk, ledger: ledgerClient, wallets: wallets, balances: balances,
		scheduler: sched, logs: logs, interval: interval, callTimeout: callTimeout,
	}
}

// recurringHandle is a self-rescheduling clock.Timer wrapper. Cancel is
// idempotent and guarantees no further firing once it returns, even if a
// reschedule races with it (spec.md §4.4's cancellation idiom, reused
// here for the poll loop's own lifecycle).
type recurringHandle struct {
	mu      sync.Mutex
	timer   clock.Timer
	stopped bool
}

func (h *recurringHandle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	if h.timer != nil {
		h.timer.Stop()
	}
}

// Start begins polling walletID: fires immediately, then every interval
// until cancelled (spec.md §4.5: "fires immediately on enrollment and
// then on a schedule"). The returned Canceler stops future firings.
func (l *Loop) Start(walletID types.WalletID) types.Canceler {
	handle := &recurringHandle{}
	var fire func()
	fire = func() {
		l.pollOnce(walletID)
		handle.mu.Lock()
		defer handle.mu.Unlock()
		if handle.stopped {
			return
		}
		handle.timer = l.clk.AfterFunc(l.interval, fire)
	}
	fire()
	return handle
}

// StartSweep begins the process-wide sweep task: every interval, it
// triggers a poll iteration for every currently-enrolled wallet (spec.md
// §4.5's "guarding against missed individual schedules"). Unlike Start,
// the first sweep fires only after interval has elapsed, since every
// wallet already polled once immediately on its own enrollment.
func (l *Loop) StartSweep(interval time.Duration) types.Canceler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	handle := &recurringHandle{}
	var fire func()
	fire = func() {
		l.Sweep()
		handle.mu.Lock()
		defer handle.mu.Unlock()
		if handle.stopped {
			return
		}
		handle.timer = l.clk.AfterFunc(interval, fire)
	}
	handle.timer = l.clk.AfterFunc(interval, fire)
	return handle
}

// Sweep runs one poll iteration for every enrolled wallet.
func (l *Loop) Sweep() {
	for _, w := range l.wallets.List() {
		l.pollOnce(w.ID)
	}
}

// pollOnce is a single PollLoop firing (spec.md §4.5's three numbered
// steps). A wallet that has since been removed or quarantined is skipped
// silently.
func (l *Loop) pollOnce(walletID types.WalletID) {
	wallet, ok := l.wallets.Get(walletID)
	if !ok || wallet.Quarantined {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.callTimeout)
	defer cancel()
	records, err := l.ledger.ClaimableBalances(ctx, wallet.Address)
	if err != nil {
		l.logs.Warning(fmt.Sprintf("poll failed for %s: %v", logring.MaskAddress(wallet.Address), err), walletID)
		return
	}

	now := l.clk.Now()
	for _, rec := range records {
		balance, ok := l.toBalance(walletID, rec, now)
		if !ok {
			continue
		}
		// Insert de-duplicates repeat sightings across polls; balances
		// that were tracked but no longer appear in a fetch are never
		// removed here — terminal state transitions drive removal, not
		// poll diffs (spec.md §4.5 step 3).
		if !l.balances.Insert(balance) {
			continue
		}
		l.scheduler.Schedule(walletID, balance.ID)
	}
}

// toBalance resolves a single ledger record into a ClaimableBalance,
// logging and skipping anything malformed rather than failing the whole
// poll iteration.
func (l *Loop) toBalance(walletID types.WalletID, rec ledger.Balance, now time.Time) (types.ClaimableBalance, bool) {
	amount, err := types.NewAmountFromString(rec.Amount)
	if err != nil {
		l.logs.Error(fmt.Sprintf("malformed amount on balance %s: %v", rec.ID, err), walletID)
		return types.ClaimableBalance{}, false
	}

	claimants := make([]types.Claimant, 0, len(rec.Claimants))
	for _, c := range rec.Claimants {
		pred, err := types.ParsePredicate(c.Predicate, now)
		if err != nil {
			l.logs.Warning(fmt.Sprintf("unparseable predicate on balance %s: %v", rec.ID, err), walletID)
			continue
		}
		claimants = append(claimants, types.Claimant{Destination: c.Destination, Predicate: pred})
	}

	unlockAt, found := resolver.Resolve(l.clk, claimants)
	if !found {
		l.logs.Warning(fmt.Sprintf("balance %s has no interpretable unlock clause, falling back to the 24h sentinel", rec.ID), walletID)
	}

	return types.ClaimableBalance{
		ID:       types.BalanceID(rec.ID),
		WalletID: walletID,
		Amount:   amount,
		UnlockAt: unlockAt,
	}, true
}
