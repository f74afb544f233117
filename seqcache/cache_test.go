package seqcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/ledger"
)

type fakeLedger struct {
	calls  int32
	seq    uint64
	delay  time.Duration
	ledger.Client
}

func (f *fakeLedger) Sequence(ctx context.Context, address string) (uint64, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.seq, nil
}

func TestGetCachesWithinTTL(t *testing.T) {
	clk := clock.NewMock(time.Now())
	fl := &fakeLedger{seq: 42}
	c, err := New(clk, fl, DefaultTTL, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), "GADDR")
		if err != nil {
			t.Fatal(err)
		}
		if v != 42 {
			t.Fatalf("got %d, want 42", v)
		}
	}
	if got := atomic.LoadInt32(&fl.calls); got != 1 {
		t.Fatalf("expected exactly one underlying fetch, got %d", got)
	}
}

func TestGetRefetchesAfterTTLExpires(t *testing.T) {
	clk := clock.NewMock(time.Now())
	fl := &fakeLedger{seq: 1}
	c, err := New(clk, fl, 30*time.Second, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "GADDR"); err != nil {
		t.Fatal(err)
	}
	clk.Advance(31 * time.Second)
	if _, err := c.Get(context.Background(), "GADDR"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&fl.calls); got != 2 {
		t.Fatalf("expected a re-fetch after TTL expiry, got %d calls", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	clk := clock.NewMock(time.Now())
	fl := &fakeLedger{seq: 7}
	c, err := New(clk, fl, DefaultTTL, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "GADDR"); err != nil {
		t.Fatal(err)
	}
	c.Invalidate("GADDR")
	if _, err := c.Get(context.Background(), "GADDR"); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&fl.calls); got != 2 {
		t.Fatalf("expected a re-fetch after invalidate, got %d calls", got)
	}
}

func TestConcurrentGetCoalescesIntoOneFetch(t *testing.T) {
	clk := clock.NewMock(time.Now())
	fl := &fakeLedger{seq: 99, delay: 50 * time.Millisecond}
	c, err := New(clk, fl, DefaultTTL, 0)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), "GADDR"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if got := atomic.LoadInt32(&fl.calls); got != 1 {
		t.Fatalf("expected concurrent Get calls to coalesce into one fetch, got %d", got)
	}
}
