// Package txbuilder implements the two-operation claim+payment transaction
// builder (C4 in SPEC_FULL.md). It is purely local — no I/O — and
// deterministic given identical inputs and clock, generalized from the
// shape of modules/wallet/transactionbuilder.go (fund, append operations,
// sign) from Sia's UTXO/coin-input model to Stellar's account+sequence
// model. The wire encoding is built with pkg/encoding/rivbin's
// reflection-driven Encoder, the same canonical binary marshaling the
// teacher uses for its own transaction envelopes.
package txbuilder

import (
	"crypto/sha256"
	"errors"
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/crypto"
	"github.com/threefoldtech/piclaim/pkg/encoding/rivbin"
	"github.com/threefoldtech/piclaim/strkey"
	"github.com/threefoldtech/piclaim/types"
)

// DefaultFee is the fee (in stroops) attached to every built transaction to
// buy submission priority (spec §4.3, §6 TX_FEE).
const DefaultFee = 1000000

// DefaultValidity is the window, from build time, during which the
// transaction remains valid for submission (spec §4.3, §6 TX_VALIDITY_S).
const DefaultValidity = 120 * time.Second

// ErrAuthMismatch is returned when a wallet's secret does not derive to its
// claimed address; fatal for the wallet, never retried.
var ErrAuthMismatch = errors.New("txbuilder: secret does not derive to claimed address")

// Built is the product of Build: the signed wire blob and its content hash.
type Built struct {
	Blob []byte
	Hash [32]byte
}

// envelope is the canonical, reflection-encodable shape of a claim+payment
// transaction. Field order is part of the wire format, matching the
// teacher's rivbin convention of sequential struct-field encoding.
type envelope struct {
	SourceAccount   [32]byte
	Sequence        uint64
	Fee             uint64
	ValidUntilUnix  int64
	ClaimBalanceID  string
	PaymentDest     [32]byte
	PaymentStroops  uint64
	SourceSignature crypto.Signature
}

// Fee and Validity are builder-level overrides of the package defaults,
// sourced from config.Config in the supervisor's wiring.
type Builder struct {
	clk      clock.Clock
	fee      uint64
	validity time.Duration
}

// New constructs a Builder. A zero fee or validity falls back to the
// package defaults.
func New(clk clock.Clock, fee uint64, validity time.Duration) *Builder {
	if fee == 0 {
		fee = DefaultFee
	}
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Builder{clk: clk, fee: fee, validity: validity}
}

// Build constructs, signs, and encodes the claim+payment transaction for
// the given wallet, balance, and freshly-read sequence number (spec §4.3).
func (b *Builder) Build(wallet types.Wallet, balance types.ClaimableBalance, sequence uint64) (Built, error) {
	derivedPub := wallet.Secret.PublicKey()
	wantPub, err := strkey.Decode(wallet.Address)
	if err != nil {
		return Built{}, errMalformedAddress(wallet.Address, err)
	}
	if derivedPub != crypto.PublicKey(wantPub) {
		return Built{}, ErrAuthMismatch
	}

	destPub, err := strkey.Decode(wallet.Destination)
	if err != nil {
		return Built{}, errMalformedAddress(wallet.Destination, err)
	}

	env := envelope{
		SourceAccount:  wantPub,
		Sequence:       sequence,
		Fee:            b.fee,
		ValidUntilUnix: b.clk.Now().Add(b.validity).Unix(),
		ClaimBalanceID: string(balance.ID),
		PaymentDest:    destPub,
		PaymentStroops: balance.Amount.Stroops().Uint64(),
	}

	signingBlob, err := rivbin.MarshalAll(
		env.SourceAccount, env.Sequence, env.Fee, env.ValidUntilUnix,
		env.ClaimBalanceID, env.PaymentDest, env.PaymentStroops,
	)
	if err != nil {
		return Built{}, err
	}
	env.SourceSignature = crypto.Sign(signingBlob, wallet.Secret)

	blob, err := rivbin.Marshal(env)
	if err != nil {
		return Built{}, err
	}
	return Built{Blob: blob, Hash: sha256.Sum256(blob)}, nil
}

func errMalformedAddress(addr string, cause error) error {
	return &addressError{addr: addr, cause: cause}
}

type addressError struct {
	addr  string
	cause error
}

func (e *addressError) Error() string {
	return "txbuilder: malformed address: " + e.cause.Error()
}

func (e *addressError) Unwrap() error { return e.cause }
