package types

import "time"

// SequenceEntry is a cached account sequence number (spec.md §3). An
// entry is valid for less than the configured TTL (config.Config.SeqTTL,
// default 30s); any
// ledger rejection attributable to sequence must invalidate it.
type SequenceEntry struct {
	Address   string
	Value     uint64
	FetchedAt time.Time
}

// Expired reports whether the entry is older than ttl as of now.
func (e SequenceEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) >= ttl
}
