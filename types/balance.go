package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// BalanceID opaquely, globally identifies a claimable balance on the
// ledger.
type BalanceID string

// BalanceState is the ClaimableBalance scheduling state. Transitions are
// restricted to the order below, with Failed -> PreFetching allowed on
// retry (spec.md §3).
type BalanceState int

const (
	Pending BalanceState = iota
	PreFetching
	Ready
	Submitting
	Succeeded
	Failed
)

func (s BalanceState) String() string {
	switch s {
	case Pending:
		return "Pending"
	case PreFetching:
		return "PreFetching"
	case Ready:
		return "Ready"
	case Submitting:
		return "Submitting"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("BalanceState(%d)", int(s))
	}
}

// MarshalJSON renders the state by name, for a readable API response
// (api.monitoredBalanceView embeds a BalanceState directly).
func (s BalanceState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CanTransition reports whether a balance may move from `from` to `to`.
// Succeeded is terminal. Failed may only return to PreFetching (a retry);
// it is never final on its own, since the retry policy in spec.md §4.4
// decides whether a Failed balance gets retried or removed outright (the
// latter happens by removing it from the registry, not by transitioning
// state further).
func CanTransition(from, to BalanceState) bool {
	switch from {
	case Pending:
		return to == PreFetching
	case PreFetching:
		return to == Ready
	case Ready:
		return to == Submitting
	case Submitting:
		return to == Succeeded || to == Failed
	case Failed:
		return to == PreFetching
	case Succeeded:
		return false
	default:
		return false
	}
}

// ClaimableBalance is mutable only through re-observation and scheduler
// state transitions (spec.md §3).
type ClaimableBalance struct {
	ID       BalanceID
	WalletID WalletID
	Amount   Amount
	UnlockAt time.Time
	State    BalanceState

	// RetryIndex tracks position into the Transient backoff sequence
	// ({5s,15s,30s,60s,120s}), resetting on any success (spec.md §4.4).
	RetryIndex int
}
