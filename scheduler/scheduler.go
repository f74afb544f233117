// Package scheduler implements the ClaimScheduler (C8 in SPEC_FULL.md): the
// core state machine driving each claimable balance from Pending through
// PreFetching, Ready, Submitting, to Succeeded or Failed, arming and
// cancelling the PreFetch/Submit tasks named in spec.md §4.4. It
// generalizes the teacher's threadgroup-guarded, mutex-serialized task
// dispatch convention (modules/wallet/wallet.go) from a wallet's internal
// bookkeeping to a per-balance timer-driven retry state machine.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/ledger"
	"github.com/threefoldtech/piclaim/logring"
	"github.com/threefoldtech/piclaim/registry"
	"github.com/threefoldtech/piclaim/seqcache"
	"github.com/threefoldtech/piclaim/txbuilder"
	"github.com/threefoldtech/piclaim/types"
)

// DefaultPrepWindow is Δprep, the lead time before unlockAt at which the
// sequence cache is primed (spec.md §4.4).
const DefaultPrepWindow = 2000 * time.Millisecond

// DefaultPostWindow is Δpost, the lag time after unlockAt at which the
// claim+payment transaction is submitted.
const DefaultPostWindow = 5 * time.Millisecond

// DefaultCallTimeout bounds every ledger call made while running a task.
const DefaultCallTimeout = 15 * time.Second

// badSequenceRetryDelay is the fixed re-arm delay for a BadSequence
// rejection (spec.md §4.4: "no backoff cap reset").
const badSequenceRetryDelay = 100 * time.Millisecond

// backoffSequence is the Transient retry ladder, indexed by a balance's
// RetryIndex and clamped at the final entry once exhausted.
var backoffSequence = []time.Duration{
	5 * time.Second,
	15 * time.Second,
	30 * time.Second,
	60 * time.Second,
	120 * time.Second,
}

// ClaimScheduler owns the scheduling decisions for every tracked balance.
// It holds no state of its own beyond its dependencies: the registries are
// the source of truth, per spec.md §5 ("the Supervisor exclusively owns
// the registries").
type ClaimScheduler struct {
	clk         clock.Clock
	wallets     *registry.WalletRegistry
	balances    *registry.BalanceRegistry
	seq         *seqcache.Cache
	builder     *txbuilder.Builder
	ledger      ledger.Client
	logs        *logring.Ring
	prep        time.Duration
	post        time.Duration
	callTimeout time.Duration
}

// New builds a ClaimScheduler. Zero prep/post/callTimeout fall back to the
// package defaults.
func New(
	clk clock.Clock,
	wallets *registry.WalletRegistry,
	balances *registry.BalanceRegistry,
	seq *seqcache.Cache,
	builder *txbuilder.Builder,
	ledgerClient ledger.Client,
	logs *logring.Ring,
	prep, post, callTimeout time.Duration,
) *ClaimScheduler {
	if prep <= 0 {
		prep = DefaultPrepWindow
	}
	if post <= 0 {
		post = DefaultPostWindow
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &ClaimScheduler{
		clk: clk, wallets: wallets, balances: balances, seq: seq,
		builder: builder, ledger: ledgerClient, logs: logs,
		prep: prep, post: post, callTimeout: callTimeout,
	}
}

// taskCanceler adapts a clock.Timer to types.Canceler.
type taskCanceler struct{ timer clock.Timer }

func (c taskCanceler) Cancel() { c.timer.Stop() }

// Schedule accepts a freshly-inserted, Pending balance: transitions it to
// PreFetching and arms its PreFetch task. Called by the PollLoop for every
// newly-tracked balance (spec.md §4.5 step 2).
func (s *ClaimScheduler) Schedule(walletID types.WalletID, balanceID types.BalanceID) {
	balance, ok := s.balances.Get(balanceID)
	if !ok {
		return
	}
	if !s.balances.Transition(balanceID, types.PreFetching) {
		return
	}
	s.armPreFetch(walletID, balanceID, balance.UnlockAt)
}

// armPreFetch arms a PreFetch task at unlockAt-Δprep. If that deadline has
// already passed, the task fires immediately (spec.md §4.4: "If unlockAt −
// Δprep ≤ now at scheduling time ... skip directly to Ready" — achieved
// here by firing with a zero delay rather than a bespoke code path, since
// the task body itself performs the Ready transition).
func (s *ClaimScheduler) armPreFetch(walletID types.WalletID, balanceID types.BalanceID, unlockAt time.Time) {
	delay := unlockAt.Add(-s.prep).Sub(s.clk.Now())
	if delay < 0 {
		delay = 0
	}
	timer := s.clk.AfterFunc(delay, func() { s.runPreFetch(walletID, balanceID) })
	s.balances.SetTask(balanceID, types.PreFetch, taskCanceler{timer})
}

// runPreFetch is the PreFetch task body.
func (s *ClaimScheduler) runPreFetch(walletID types.WalletID, balanceID types.BalanceID) {
	wallet, balance, ok := s.lookup(walletID, balanceID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()
	if err := s.seq.Prime(ctx, wallet.Address); err != nil {
		s.logs.Warning(fmt.Sprintf("sequence pre-fetch failed for %s: %v", logring.MaskAddress(wallet.Address), err), walletID)
	} else {
		s.logs.Info(fmt.Sprintf("sequence pre-fetched for %s", logring.MaskAddress(wallet.Address)), walletID)
	}

	// Pre-fetch failure does not abort the Submit task (spec.md §4.4).
	if !s.balances.Transition(balanceID, types.Ready) {
		return
	}
	s.armSubmit(walletID, balanceID, balance.UnlockAt)
}

// armSubmit arms a Submit task at unlockAt+Δpost.
func (s *ClaimScheduler) armSubmit(walletID types.WalletID, balanceID types.BalanceID, unlockAt time.Time) {
	delay := unlockAt.Add(s.post).Sub(s.clk.Now())
	if delay < 0 {
		delay = 0
	}
	timer := s.clk.AfterFunc(delay, func() { s.runSubmit(walletID, balanceID) })
	s.balances.SetTask(balanceID, types.Submit, taskCanceler{timer})
}

// rearmSubmitAfter re-arms a fresh Submit task after a retryable failure.
// The state machine only permits Failed → PreFetching, so the bookkeeping
// transition walks Failed → PreFetching → Ready before arming: no actual
// re-priming work happens (the sequence cache was either just invalidated
// or is still fresh), so the two transitions apply synchronously back to
// back rather than re-running the PreFetch task body.
func (s *ClaimScheduler) rearmSubmitAfter(walletID types.WalletID, balanceID types.BalanceID, delay time.Duration) {
	if !s.balances.Transition(balanceID, types.PreFetching) {
		return
	}
	if !s.balances.Transition(balanceID, types.Ready) {
		return
	}
	timer := s.clk.AfterFunc(delay, func() { s.runSubmit(walletID, balanceID) })
	s.balances.SetTask(balanceID, types.Submit, taskCanceler{timer})
}

// runSubmit is the Submit task body (spec.md §4.4's numbered Submit steps).
func (s *ClaimScheduler) runSubmit(walletID types.WalletID, balanceID types.BalanceID) {
	wallet, balance, ok := s.lookup(walletID, balanceID)
	if !ok {
		return
	}
	if !s.balances.Transition(balanceID, types.Submitting) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()

	seq, err := s.seq.Get(ctx, wallet.Address)
	if err != nil {
		s.fail(walletID, balanceID, wallet, types.Classify(types.KindTransient, err))
		return
	}

	built, err := s.builder.Build(wallet, balance, seq)
	if err != nil {
		kind := types.KindTransient
		if errors.Is(err, txbuilder.ErrAuthMismatch) {
			kind = types.KindBadAuth
		}
		s.fail(walletID, balanceID, wallet, types.Classify(kind, err))
		return
	}

	result, err := s.ledger.Submit(ctx, built.Blob)
	if err != nil {
		s.fail(walletID, balanceID, wallet, types.Classify(types.KindTransient, err))
		return
	}
	if result.Successful {
		s.succeed(walletID, balanceID, wallet)
		return
	}

	kind := ledger.ClassifyResultCode(result.ResultCode)
	s.fail(walletID, balanceID, wallet, types.Classify(kind, fmt.Errorf("ledger rejected submission: %s", result.ResultCode)))
}

// succeed finalizes a balance on a truthy submission outcome (spec.md
// §4.4 step 4): transition to Succeeded, log, then remove — which cancels
// every sibling task still referencing this balance (Open Question
// decision #1 in SPEC_FULL.md).
func (s *ClaimScheduler) succeed(walletID types.WalletID, balanceID types.BalanceID, wallet types.Wallet) {
	s.balances.Transition(balanceID, types.Succeeded)
	s.logs.Success(fmt.Sprintf("claimed balance for %s", logring.MaskAddress(wallet.Address)), walletID)
	s.balances.Remove(balanceID)
}

// fail applies spec.md §4.4's retry policy for a classified submission
// failure.
func (s *ClaimScheduler) fail(walletID types.WalletID, balanceID types.BalanceID, wallet types.Wallet, classified *types.ClassifiedError) {
	s.balances.Transition(balanceID, types.Failed)

	switch classified.Kind {
	case types.KindBadSequence:
		s.seq.Invalidate(wallet.Address)
		s.logs.Warning(fmt.Sprintf("bad sequence for %s, retrying: %v", logring.MaskAddress(wallet.Address), classified), walletID)
		s.rearmSubmitAfter(walletID, balanceID, badSequenceRetryDelay)

	case types.KindBadAuth, types.KindAuthMismatch:
		s.logs.Error(fmt.Sprintf("authentication rejected for %s, quarantining wallet: %v", logring.MaskAddress(wallet.Address), classified), walletID)
		s.wallets.Quarantine(walletID)

	case types.KindLogic:
		s.logs.Error(fmt.Sprintf("logic rejection for %s, dropping balance: %v", logring.MaskAddress(wallet.Address), classified), walletID)
		s.balances.Remove(balanceID)

	default: // KindTransient, KindConfig
		idx := s.balances.BackoffIndex(balanceID)
		if idx >= len(backoffSequence) {
			idx = len(backoffSequence) - 1
		}
		delay := backoffSequence[idx]
		s.balances.BumpBackoff(balanceID)
		s.logs.Warning(fmt.Sprintf("transient failure for %s, retrying in %s: %v", logring.MaskAddress(wallet.Address), delay, classified), walletID)
		s.rearmSubmitAfter(walletID, balanceID, delay)
	}
}

// lookup re-reads the wallet and balance under their registries' own
// locks, per spec.md §5 ("must re-lookup before every ledger interaction
// and silently terminate if the referent is gone"). A quarantined wallet
// is treated as gone: no further scheduling occurs for it.
func (s *ClaimScheduler) lookup(walletID types.WalletID, balanceID types.BalanceID) (types.Wallet, types.ClaimableBalance, bool) {
	wallet, ok := s.wallets.Get(walletID)
	if !ok || wallet.Quarantined {
		return types.Wallet{}, types.ClaimableBalance{}, false
	}
	balance, ok := s.balances.Get(balanceID)
	if !ok {
		return types.Wallet{}, types.ClaimableBalance{}, false
	}
	return wallet, balance, true
}
