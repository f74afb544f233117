// Package supervisor implements the Supervisor (C9 in SPEC_FULL.md):
// process-wide init/teardown, holding the shared clock, registries, log
// ring, and configuration, and fanning wallets in and out of the
// WalletRegistry and PollLoop (spec.md §4.6). It generalizes the
// teacher's startDaemon (rivined/daemon.go) sequential
// component-loading-with-progress-printing convention, and its
// goroutine-per-module threadgroup-guarded shutdown
// (modules/wallet/wallet.go's `tg threadgroup.ThreadGroup`), to a single
// process composed of this domain's components instead of consensus/
// gateway/explorer/wallet/blockcreator modules.
package supervisor

import (
	"fmt"
	"time"

	"github.com/NebulousLabs/threadgroup"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/config"
	"github.com/threefoldtech/piclaim/crypto"
	"github.com/threefoldtech/piclaim/ledger"
	"github.com/threefoldtech/piclaim/logring"
	"github.com/threefoldtech/piclaim/persist"
	"github.com/threefoldtech/piclaim/poll"
	"github.com/threefoldtech/piclaim/registry"
	"github.com/threefoldtech/piclaim/scheduler"
	"github.com/threefoldtech/piclaim/seqcache"
	"github.com/threefoldtech/piclaim/txbuilder"
	"github.com/threefoldtech/piclaim/types"
)

// DefaultShutdownGrace is the window Close waits for in-flight tasks to
// drain before giving up (spec.md §5).
const DefaultShutdownGrace = 5 * time.Second

// Supervisor owns every shared collaborator and the wallet enroll/remove
// lifecycle. It is the single place that touches both registries plus
// the durable stores, matching spec.md §4.6's definition of enrollment
// and removal.
type Supervisor struct {
	cfg      config.Config
	clk      clock.Clock
	Wallets  *registry.WalletRegistry
	Balances *registry.BalanceRegistry
	Logs     *logring.Ring
	Ledger   ledger.Client

	seq       *seqcache.Cache
	builder   *txbuilder.Builder
	scheduler *scheduler.ClaimScheduler
	poll      *poll.Loop
	sweep     types.Canceler

	walletStore  persist.WalletStore
	balanceStore persist.BalanceStore

	tg threadgroup.ThreadGroup
}

// New wires every component named in SPEC_FULL.md's control-flow chain
// (`Supervisor → WalletRegistry → PollLoop → (LedgerClient,
// UnlockResolver) → BalanceRegistry → ClaimScheduler → (SequenceCache,
// TransactionBuilder, LedgerClient)`) from cfg, printing progress exactly
// as the teacher's startDaemon does for each module it loads.
func New(cfg config.Config, clk clock.Clock, walletStore persist.WalletStore, balanceStore persist.BalanceStore) (*Supervisor, error) {
	fmt.Println("Loading...")

	fmt.Println("(1/6) Loading log ring...")
	logs := logring.New(clk, cfg.MaxLogs)

	fmt.Println("(2/6) Loading ledger client...")
	ledgerClient := ledger.NewHTTPClient(cfg.LedgerBaseURL, 0)

	fmt.Println("(3/6) Loading sequence cache...")
	seq, err := seqcache.New(clk, ledgerClient, cfg.SeqTTL, 0)
	if err != nil {
		return nil, fmt.Errorf("supervisor: sequence cache: %w", err)
	}

	fmt.Println("(4/6) Loading transaction builder...")
	builder := txbuilder.New(clk, cfg.TxFee, cfg.TxValidity)

	fmt.Println("(5/6) Loading registries...")
	wallets := registry.NewWalletRegistry()
	balances := registry.NewBalanceRegistry()

	fmt.Println("(6/6) Loading claim scheduler and poll loop...")
	sched := scheduler.New(clk, wallets, balances, seq, builder, ledgerClient, logs, cfg.PrepWindow, cfg.PostWindow, 0)
	pollLoop := poll.New(clk, ledgerClient, wallets, balances, sched, logs, cfg.PollInterval, 0)

	s := &Supervisor{
		cfg: cfg, clk: clk,
		Wallets: wallets, Balances: balances, Logs: logs, Ledger: ledgerClient,
		seq: seq, builder: builder, scheduler: sched, poll: pollLoop,
		walletStore: walletStore, balanceStore: balanceStore,
	}
	if err := s.restore(); err != nil {
		return nil, fmt.Errorf("supervisor: restore: %w", err)
	}
	s.sweep = pollLoop.StartSweep(cfg.SweepInterval)
	return s, nil
}

// restore loads durable wallet/balance records (if any) and re-derives
// fresh scheduling for every restored balance. Per SPEC_FULL.md's
// persistence note, no mid-flight task state is ever resumed: every
// restored balance starts back at Pending and is re-scheduled through the
// normal Schedule path, exactly as if the next poll had rediscovered it.
func (s *Supervisor) restore() error {
	wallets, err := s.walletStore.LoadWallets()
	if err != nil {
		return fmt.Errorf("loading wallets: %w", err)
	}
	for _, w := range wallets {
		if _, err := s.Wallets.Add(w); err != nil {
			s.Logs.Error(fmt.Sprintf("failed to restore wallet %s: %v", w.ID, err), w.ID)
			continue
		}
		s.Wallets.AttachPoll(w.ID, s.poll.Start(w.ID))
	}

	balances, err := s.balanceStore.LoadBalances()
	if err != nil {
		return fmt.Errorf("loading balances: %w", err)
	}
	for _, b := range balances {
		b.State = types.Pending
		b.RetryIndex = 0
		if !s.Balances.Insert(b) {
			continue
		}
		s.scheduler.Schedule(b.WalletID, b.ID)
	}
	return nil
}

// EnrollWallet validates and adds a wallet, persists it, and starts its
// PollLoop (spec.md §4.6). It is guarded by the threadgroup the same way
// the teacher guards every public wallet.Wallet method with `tg.Add()`,
// so a Close racing an in-flight enrollment waits for it to finish
// instead of tearing down registries out from under it.
func (s *Supervisor) EnrollWallet(address string, secret crypto.SecretKey, destination string) (types.Wallet, error) {
	if err := s.tg.Add(); err != nil {
		return types.Wallet{}, err
	}
	defer s.tg.Done()

	w, err := s.Wallets.Add(types.Wallet{
		Address: address, Secret: secret, Destination: destination, CreatedAt: s.clk.Now(),
	})
	if err != nil {
		return types.Wallet{}, err
	}
	if err := s.walletStore.SaveWallet(w); err != nil {
		s.Logs.Error(fmt.Sprintf("failed to persist wallet %s: %v", w.ID, err), w.ID)
	}
	handle := s.poll.Start(w.ID)
	s.Wallets.AttachPoll(w.ID, handle)
	s.Logs.Info(fmt.Sprintf("enrolled wallet for %s", logring.MaskAddress(w.Address)), w.ID)
	return w, nil
}

// StopMonitoring cancels walletID's PollLoop, cancels and evicts all of
// its tracked balances, evicts the wallet itself, and removes both from
// durable storage (spec.md §4.6: "Removal cancels the PollLoop, enumerates
// all balances with matching walletId ... cancels their ScheduledTasks,
// and evicts them").
func (s *Supervisor) StopMonitoring(walletID types.WalletID) error {
	if err := s.tg.Add(); err != nil {
		return err
	}
	defer s.tg.Done()

	w, err := s.Wallets.Remove(walletID)
	if err != nil {
		return err
	}
	s.Balances.RemoveByWallet(walletID)
	if err := s.walletStore.DeleteWallet(walletID); err != nil {
		s.Logs.Error(fmt.Sprintf("failed to delete persisted wallet %s: %v", walletID, err), walletID)
	}
	s.Logs.Info(fmt.Sprintf("stopped monitoring %s", logring.MaskAddress(w.Address)), walletID)
	return nil
}

// Close signals shutdown and waits up to grace for any in-flight
// EnrollWallet/StopMonitoring call to finish before giving up (spec.md
// §5: "Supervisor signals cancellation, waits up to a grace period ...
// then exits"), mirroring rivined/daemon.go's signal-then-Close
// shutdown. Every wallet's PollLoop and every balance's scheduled tasks
// are cancelled synchronously first, via the same Remove path
// StopMonitoring uses, so no new ledger calls are armed once Close
// returns.
func (s *Supervisor) Close(grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	if s.sweep != nil {
		s.sweep.Cancel()
	}
	for _, w := range s.Wallets.List() {
		if _, err := s.Wallets.Remove(w.ID); err != nil {
			s.Logs.Error(fmt.Sprintf("error removing wallet %s during shutdown: %v", w.ID, err), w.ID)
		}
		s.Balances.RemoveByWallet(w.ID)
	}

	done := make(chan error, 1)
	go func() { done <- s.tg.Stop() }()
	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		return fmt.Errorf("supervisor: shutdown grace period of %s exceeded", grace)
	}
}
