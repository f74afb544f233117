package txbuilder

import (
	"testing"
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/crypto"
	"github.com/threefoldtech/piclaim/strkey"
	"github.com/threefoldtech/piclaim/types"
)

func testWallet(t *testing.T) types.Wallet {
	t.Helper()
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	_, destPk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	return types.Wallet{
		ID:          "w1",
		Address:     strkey.Encode(pk),
		Secret:      sk,
		Destination: strkey.Encode(destPk),
		CreatedAt:   time.Now(),
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	w := testWallet(t)
	amount, err := types.NewAmountFromString("3.1415926")
	if err != nil {
		t.Fatal(err)
	}
	balance := types.ClaimableBalance{ID: "bal-1", WalletID: w.ID, Amount: amount}

	clk := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := New(clk, 0, 0)

	first, err := b.Build(w, balance, 42)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(w, balance, 42)
	if err != nil {
		t.Fatal(err)
	}
	if string(first.Blob) != string(second.Blob) {
		t.Fatal("Build is not deterministic for identical inputs and clock")
	}
	if first.Hash != second.Hash {
		t.Fatal("hash differs for identical blobs")
	}
}

func TestBuildRejectsAuthMismatch(t *testing.T) {
	w := testWallet(t)
	_, otherPk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	w.Address = strkey.Encode(otherPk) // address no longer matches w.Secret

	amount, _ := types.NewAmountFromString("1.0")
	balance := types.ClaimableBalance{ID: "bal-1", WalletID: w.ID, Amount: amount}

	clk := clock.NewMock(time.Now())
	b := New(clk, 0, 0)
	if _, err := b.Build(w, balance, 1); err != ErrAuthMismatch {
		t.Fatalf("expected ErrAuthMismatch, got %v", err)
	}
}
