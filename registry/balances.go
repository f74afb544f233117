package registry

import (
	"sync"

	"github.com/threefoldtech/piclaim/types"
)

// BalanceRegistry is the set of currently-tracked (walletId, balanceId)
// claimable balances, with amount, unlock instant, and scheduling state.
// Insert de-duplicates repeat sightings across polls (spec §4.5, property
// 5). Every scheduled task's cancellation handles live next to the
// balance's state here, replacing a parallel task map (spec §9).
type BalanceRegistry struct {
	mu   sync.Mutex
	byID map[types.BalanceID]*balanceEntry
}

type balanceEntry struct {
	balance types.ClaimableBalance
	tasks   map[types.TaskKind]types.Canceler
}

// NewBalanceRegistry builds an empty BalanceRegistry.
func NewBalanceRegistry() *BalanceRegistry {
	return &BalanceRegistry{byID: make(map[types.BalanceID]*balanceEntry)}
}

// Insert adds balance if it is not already tracked. It reports whether the
// balance is new (false means the insert was a no-op, per spec §4.5 step 2).
func (r *BalanceRegistry) Insert(balance types.ClaimableBalance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[balance.ID]; exists {
		return false
	}
	balance.State = types.Pending
	r.byID[balance.ID] = &balanceEntry{balance: balance, tasks: make(map[types.TaskKind]types.Canceler)}
	return true
}

// Get returns a copy of the tracked balance.
func (r *BalanceRegistry) Get(id types.BalanceID) (types.ClaimableBalance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return types.ClaimableBalance{}, false
	}
	return e.balance, true
}

// ListByWallet returns every tracked balance for walletID, copied out from
// under the lock.
func (r *BalanceRegistry) ListByWallet(walletID types.WalletID) []types.ClaimableBalance {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.ClaimableBalance
	for _, e := range r.byID {
		if e.balance.WalletID == walletID {
			out = append(out, e.balance)
		}
	}
	return out
}

// List returns every tracked balance, copied out from under the lock.
func (r *BalanceRegistry) List() []types.ClaimableBalance {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.ClaimableBalance, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e.balance)
	}
	return out
}

// Transition performs a compare-and-swap of a balance's state, serialized
// by the registry's own lock (spec §5's "writes to a balance's state are
// serialized by holding the BalanceRegistry lock for the transition").
// It reports whether the transition was legal and applied.
func (r *BalanceRegistry) Transition(id types.BalanceID, to types.BalanceState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return false
	}
	if !types.CanTransition(e.balance.State, to) {
		return false
	}
	e.balance.State = to
	return true
}

// SetTask records the cancellation handle for a newly-armed task of the
// given kind, replacing any previous handle of that kind without
// cancelling it (the caller is expected to have already done so if
// re-arming).
func (r *BalanceRegistry) SetTask(id types.BalanceID, kind types.TaskKind, cancel types.Canceler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		e.tasks[kind] = cancel
	}
}

// BackoffIndex returns the current retry backoff index for a balance (spec
// §4.4's Transient retry sequence), and ResetBackoff/BumpBackoff adjust it.
// The index is stored on the balance record itself (ClaimableBalance.RetryIndex).
func (r *BalanceRegistry) BackoffIndex(id types.BalanceID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		return e.balance.RetryIndex
	}
	return 0
}

// BumpBackoff advances the backoff index by one, for a fresh Transient
// failure on this balance.
func (r *BalanceRegistry) BumpBackoff(id types.BalanceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		e.balance.RetryIndex++
	}
}

// ResetBackoff zeroes the backoff index. The scheduler does not call it
// on a BadSequence rejection: that retry runs on its own fixed delay and
// leaves the Transient backoff index where it was.
func (r *BalanceRegistry) ResetBackoff(id types.BalanceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		e.balance.RetryIndex = 0
	}
}

// Remove cancels every armed task referencing id and evicts it. Idempotent:
// removing an already-absent balance is a no-op.
func (r *BalanceRegistry) Remove(id types.BalanceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return
	}
	for _, cancel := range e.tasks {
		if cancel != nil {
			cancel.Cancel()
		}
	}
	delete(r.byID, id)
}

// RemoveByWallet cancels and evicts every balance belonging to walletID,
// used when a wallet is removed (spec §4.6).
func (r *BalanceRegistry) RemoveByWallet(walletID types.WalletID) {
	r.mu.Lock()
	var ids []types.BalanceID
	for id, e := range r.byID {
		if e.balance.WalletID == walletID {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Remove(id)
	}
}
