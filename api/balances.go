package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/ledger"
	"github.com/threefoldtech/piclaim/types"
)

// balancesCache is a short-TTL, per-address memoization of the ledger's
// claimable-balances passthrough (spec.md §6). It is independent of the
// scheduler's own seqcache.Cache: this one caches a read-only API
// response, not a value the scheduler's correctness depends on, so a
// stale hit is never more than a display concern.
type balancesCache struct {
	mu      sync.Mutex
	clk     clock.Clock
	ttl     time.Duration
	entries map[string]balancesCacheEntry
}

type balancesCacheEntry struct {
	records []ledger.Balance
	at      time.Time
}

func newBalancesCache(clk clock.Clock, ttl time.Duration) *balancesCache {
	return &balancesCache{clk: clk, ttl: ttl, entries: make(map[string]balancesCacheEntry)}
}

func (c *balancesCache) get(address string) ([]ledger.Balance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[address]
	if !ok || c.clk.Now().Sub(e.at) > c.ttl {
		return nil, false
	}
	return e.records, true
}

func (c *balancesCache) set(address string, records []ledger.Balance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = balancesCacheEntry{records: records, at: c.clk.Now()}
}

type claimableBalancesResponse struct {
	Balances []ledger.Balance `json:"balances"`
}

func (a *API) claimableBalancesHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	address := ps.ByName("address")

	if cached, ok := a.balancesCache.get(address); ok {
		WriteJSON(w, claimableBalancesResponse{Balances: cached})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	records, err := a.supervisor.Ledger.ClaimableBalances(ctx, address)
	if err != nil {
		WriteError(w, Error{err.Error()}, http.StatusBadGateway)
		return
	}
	a.balancesCache.set(address, records)
	WriteJSON(w, claimableBalancesResponse{Balances: records})
}

type monitoredBalanceView struct {
	ID       types.BalanceID    `json:"id"`
	WalletID types.WalletID     `json:"walletId"`
	Amount   string             `json:"amount"`
	UnlockAt time.Time          `json:"unlockAt"`
	State    types.BalanceState `json:"state"`
}

func toMonitoredBalanceView(b types.ClaimableBalance) monitoredBalanceView {
	return monitoredBalanceView{
		ID: b.ID, WalletID: b.WalletID, Amount: b.Amount.String(),
		UnlockAt: b.UnlockAt, State: b.State,
	}
}

type monitoredBalancesResponse struct {
	Balances []monitoredBalanceView `json:"balances"`
}

func (a *API) monitoredBalancesHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var balances []types.ClaimableBalance
	if walletID := ps.ByName("walletId"); walletID != "" {
		balances = a.supervisor.Balances.ListByWallet(types.WalletID(walletID))
	} else {
		balances = a.supervisor.Balances.List()
	}

	out := make([]monitoredBalanceView, 0, len(balances))
	for _, b := range balances {
		out = append(out, toMonitoredBalanceView(b))
	}
	WriteJSON(w, monitoredBalancesResponse{Balances: out})
}

type sequenceResponse struct {
	Sequence uint64 `json:"sequence"`
}

func (a *API) sequenceHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	address := ps.ByName("address")
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	seq, err := a.supervisor.Ledger.Sequence(ctx, address)
	if err != nil {
		WriteError(w, Error{err.Error()}, http.StatusBadGateway)
		return
	}
	WriteJSON(w, sequenceResponse{Sequence: seq})
}
