// Package persist holds the durable-storage primitives shared by the
// wallet and balance stores (SPEC_FULL.md §9): the bolt wrapper kept from
// the teacher almost verbatim, and the Metadata/error types it expects,
// which the teacher defines alongside each module's own db file (e.g.
// modules/transactionpool/transactionpool.go's dbMetadata) rather than in
// the persist package itself.
package persist

import "errors"

// Metadata identifies the expected contents of a bolt database file, the
// same header+version pair every teacher module stamps into its own
// database (e.g. "Sia Transaction Pool DB", "0.6.0").
type Metadata struct {
	Header  string
	Version string
}

// ErrBadHeader is returned when an opened database's header does not match
// the expected Metadata.
var ErrBadHeader = errors.New("persist: database header does not match expected header")

// ErrBadVersion is returned when an opened database's version does not
// match the expected Metadata.
var ErrBadVersion = errors.New("persist: database version does not match expected version")

// WalletDBMetadata is stamped into the wallet registry's bolt database.
var WalletDBMetadata = Metadata{
	Header:  "piclaimd Wallet DB",
	Version: "1.0.0",
}

// BalanceDBMetadata is stamped into the balance registry's bolt database.
var BalanceDBMetadata = Metadata{
	Header:  "piclaimd Balance DB",
	Version: "1.0.0",
}
