package registry

import (
	"testing"
	"time"

	"github.com/threefoldtech/piclaim/crypto"
	"github.com/threefoldtech/piclaim/strkey"
	"github.com/threefoldtech/piclaim/types"
)

func newTestWallet(t *testing.T) types.Wallet {
	t.Helper()
	sk, pk, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	return types.Wallet{
		Address:     strkey.Encode(pk),
		Secret:      sk,
		Destination: strkey.Encode(pk),
		CreatedAt:   time.Now(),
	}
}

func TestAddAssignsIDAndRejectsAuthMismatch(t *testing.T) {
	r := NewWalletRegistry()
	w := newTestWallet(t)
	stored, err := r.Add(w)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID == "" {
		t.Fatal("expected an assigned wallet id")
	}

	other := newTestWallet(t)
	other.Address = w.Address // derives to a different key now
	if _, err := r.Add(other); err != ErrAuthMismatch {
		t.Fatalf("expected ErrAuthMismatch, got %v", err)
	}
}

func TestAddRejectsDuplicateAddress(t *testing.T) {
	r := NewWalletRegistry()
	w := newTestWallet(t)
	if _, err := r.Add(w); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Add(w); err != ErrDuplicateAddress {
		t.Fatalf("expected ErrDuplicateAddress, got %v", err)
	}
}

type fakeCanceler struct{ cancelled bool }

func (f *fakeCanceler) Cancel() { f.cancelled = true }

func TestRemoveCancelsPollAndWipesSecret(t *testing.T) {
	r := NewWalletRegistry()
	w := newTestWallet(t)
	stored, err := r.Add(w)
	if err != nil {
		t.Fatal(err)
	}
	poll := &fakeCanceler{}
	r.AttachPoll(stored.ID, poll)

	removed, err := r.Remove(stored.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !poll.cancelled {
		t.Fatal("expected poll loop to be cancelled")
	}
	var zero crypto.SecretKey
	if removed.Secret != zero {
		t.Fatal("expected secret to be wiped")
	}
	if _, ok := r.Get(stored.ID); ok {
		t.Fatal("expected wallet to be evicted")
	}
}

func TestRemoveUnknownIsError(t *testing.T) {
	r := NewWalletRegistry()
	if _, err := r.Remove("nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
