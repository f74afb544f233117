package logring

import (
	"fmt"
	"testing"
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/types"
)

func TestAppendAndSnapshotOrder(t *testing.T) {
	r := New(clock.NewMock(time.Now()), 10)
	r.Info("first", "")
	r.Error("second", "w1")
	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("got %d records, want 2", len(snap))
	}
	if snap[0].Message != "first" || snap[1].Message != "second" {
		t.Fatalf("unexpected order: %+v", snap)
	}
	if snap[1].WalletID != types.WalletID("w1") {
		t.Fatalf("expected wallet id to be recorded")
	}
}

func TestRingDropsOldestAtCapacity(t *testing.T) {
	r := New(clock.NewMock(time.Now()), 3)
	for i := 0; i < 5; i++ {
		r.Info(fmt.Sprintf("msg-%d", i), "")
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("got %d records, want 3", len(snap))
	}
	if snap[0].Message != "msg-2" || snap[2].Message != "msg-4" {
		t.Fatalf("unexpected contents after overflow: %+v", snap)
	}
}

func TestClear(t *testing.T) {
	r := New(clock.NewMock(time.Now()), 10)
	r.Info("x", "")
	r.Clear()
	if got := r.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty ring after Clear, got %d", len(got))
	}
}
