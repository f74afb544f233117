package types

import (
	"time"

	"github.com/threefoldtech/piclaim/crypto"
)

// WalletID opaquely identifies an enrolled wallet.
type WalletID string

// Wallet is immutable after creation (spec.md §3). The secret is never
// logged and never returned by any read API; callers that need to mask it
// for display should use strkey.Mask on the Address/Destination instead.
type Wallet struct {
	ID          WalletID
	Address     string
	Secret      crypto.SecretKey // zeroed via crypto.SecureWipe on removal
	Destination string
	CreatedAt   time.Time

	// Quarantined marks a wallet that suffered a terminal BadAuth failure
	// mid-flight (spec.md §4.4). No further scheduling occurs, but the
	// record persists for user inspection (GLOSSARY: Quarantine).
	Quarantined bool
}

// Public is the subset of Wallet safe to return from a read API: no secret.
type Public struct {
	ID          WalletID  `json:"id"`
	Address     string    `json:"address"`
	Destination string    `json:"destination"`
	CreatedAt   time.Time `json:"createdAt"`
	Quarantined bool      `json:"quarantined"`
}

// Public strips the secret from a Wallet for external consumption.
func (w Wallet) Public() Public {
	return Public{
		ID:          w.ID,
		Address:     w.Address,
		Destination: w.Destination,
		CreatedAt:   w.CreatedAt,
		Quarantined: w.Quarantined,
	}
}
