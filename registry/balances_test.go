package registry

import (
	"testing"

	"github.com/threefoldtech/piclaim/types"
)

func TestInsertDeduplicatesAcrossPolls(t *testing.T) {
	r := NewBalanceRegistry()
	b := types.ClaimableBalance{ID: "bal-1", WalletID: "w1"}
	if !r.Insert(b) {
		t.Fatal("expected first insert to report new")
	}
	if r.Insert(b) {
		t.Fatal("expected second insert of the same id to be a no-op")
	}
}

func TestTransitionEnforcesOrder(t *testing.T) {
	r := NewBalanceRegistry()
	b := types.ClaimableBalance{ID: "bal-1", WalletID: "w1"}
	r.Insert(b)

	if r.Transition("bal-1", types.Ready) {
		t.Fatal("expected Pending -> Ready to be rejected")
	}
	if !r.Transition("bal-1", types.PreFetching) {
		t.Fatal("expected Pending -> PreFetching to succeed")
	}
	got, _ := r.Get("bal-1")
	if got.State != types.PreFetching {
		t.Fatalf("got state %v, want PreFetching", got.State)
	}
}

func TestRemoveCancelsArmedTasks(t *testing.T) {
	r := NewBalanceRegistry()
	b := types.ClaimableBalance{ID: "bal-1", WalletID: "w1"}
	r.Insert(b)
	preFetch := &fakeCanceler{}
	submit := &fakeCanceler{}
	r.SetTask("bal-1", types.PreFetch, preFetch)
	r.SetTask("bal-1", types.Submit, submit)

	r.Remove("bal-1")

	if !preFetch.cancelled || !submit.cancelled {
		t.Fatal("expected every armed task to be cancelled on removal")
	}
	if _, ok := r.Get("bal-1"); ok {
		t.Fatal("expected balance to be evicted")
	}
}

func TestRemoveByWalletEvictsOnlyThatWallet(t *testing.T) {
	r := NewBalanceRegistry()
	r.Insert(types.ClaimableBalance{ID: "bal-1", WalletID: "w1"})
	r.Insert(types.ClaimableBalance{ID: "bal-2", WalletID: "w2"})

	r.RemoveByWallet("w1")

	if _, ok := r.Get("bal-1"); ok {
		t.Fatal("expected w1's balance to be evicted")
	}
	if _, ok := r.Get("bal-2"); !ok {
		t.Fatal("expected w2's balance to remain")
	}
}

func TestBackoffResetsAndBumps(t *testing.T) {
	r := NewBalanceRegistry()
	r.Insert(types.ClaimableBalance{ID: "bal-1", WalletID: "w1"})
	r.BumpBackoff("bal-1")
	r.BumpBackoff("bal-1")
	if got := r.BackoffIndex("bal-1"); got != 2 {
		t.Fatalf("got backoff index %d, want 2", got)
	}
	r.ResetBackoff("bal-1")
	if got := r.BackoffIndex("bal-1"); got != 0 {
		t.Fatalf("got backoff index %d, want 0", got)
	}
}
