// Package seqcache implements the short-TTL per-account sequence number
// cache (C3 in SPEC_FULL.md). It is backed by hashicorp/golang-lru, a
// dependency already carried by the teacher, bounded so a long-running
// daemon watching many wallets cannot grow this cache without limit.
// Concurrent Get calls for the same address that land during an in-flight
// fetch coalesce into a single underlying LedgerClient call via
// golang.org/x/sync/singleflight — a requirement the teacher never needed
// since it has no remote sequence fetch of this shape.
package seqcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/ledger"
	"github.com/threefoldtech/piclaim/types"
)

// DefaultTTL is the validity window of a cached sequence entry (spec §4.2).
const DefaultTTL = 30 * time.Second

// DefaultCapacity bounds the number of distinct addresses tracked at once.
const DefaultCapacity = 4096

// Cache is a short-TTL, per-address cache of the last observed sequence
// number, fronting a ledger.Client.
type Cache struct {
	clk   clock.Clock
	cli   ledger.Client
	ttl   time.Duration
	lru   *lru.Cache
	mu    sync.Mutex
	group singleflight.Group
}

// New builds a Cache with the given clock, ledger client, TTL, and LRU
// capacity. A zero ttl or capacity uses the package defaults.
func New(clk clock.Clock, cli ledger.Client, ttl time.Duration, capacity int) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	backing, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("seqcache: %w", err)
	}
	return &Cache{clk: clk, cli: cli, ttl: ttl, lru: backing}, nil
}

// Get returns a cached sequence value for address iff it is fresher than
// the TTL, otherwise fetches via LedgerClient, stores, and returns it.
// Concurrent callers for the same address during an in-flight fetch share
// the result of a single underlying call.
func (c *Cache) Get(ctx context.Context, address string) (uint64, error) {
	if entry, ok := c.lookup(address); ok {
		return entry.Value, nil
	}
	v, err, _ := c.group.Do(address, func() (interface{}, error) {
		value, ferr := c.fetch(ctx, address)
		return value, ferr
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// Prime forces an unconditional fetch and store, used by the scheduler's
// PreFetch task to warm the cache ahead of unlock.
func (c *Cache) Prime(ctx context.Context, address string) error {
	_, err, _ := c.group.Do(address, func() (interface{}, error) {
		value, ferr := c.cli.Sequence(ctx, address)
		if ferr != nil {
			return nil, ferr
		}
		entry := types.SequenceEntry{Address: address, Value: value, FetchedAt: c.clk.Now()}
		c.mu.Lock()
		c.lru.Add(address, entry)
		c.mu.Unlock()
		return value, nil
	})
	return err
}

// Invalidate removes the cached entry for address, forcing the next Get to
// re-fetch. Called after a BadSequence rejection (spec §4.4).
func (c *Cache) Invalidate(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(address)
}

func (c *Cache) lookup(address string) (types.SequenceEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(address)
	if !ok {
		return types.SequenceEntry{}, false
	}
	entry := v.(types.SequenceEntry)
	if entry.Expired(c.clk.Now(), c.ttl) {
		return types.SequenceEntry{}, false
	}
	return entry, true
}

func (c *Cache) fetch(ctx context.Context, address string) (uint64, error) {
	// A concurrent caller may have primed the cache while we waited to
	// enter the singleflight group; re-check before hitting the ledger.
	if entry, ok := c.lookup(address); ok {
		return entry.Value, nil
	}
	value, err := c.cli.Sequence(ctx, address)
	if err != nil {
		return 0, err
	}
	entry := types.SequenceEntry{Address: address, Value: value, FetchedAt: c.clk.Now()}
	c.mu.Lock()
	c.lru.Add(address, entry)
	c.mu.Unlock()
	return value, nil
}
