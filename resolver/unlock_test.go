package resolver

import (
	"testing"
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/types"
)

func TestResolvePredicateSelection(t *testing.T) {
	// Scenario F: first claimant unconditional, second not{abs_before:T}.
	want := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	claimants := []types.Claimant{
		{Destination: "A", Predicate: types.PredicateUnconditional{}},
		{Destination: "B", Predicate: types.PredicateNot{Inner: types.PredicateAbsBefore{T: want}}},
	}
	clk := clock.NewMock(time.Now())
	got, found := Resolve(clk, claimants)
	if !found {
		t.Fatal("expected a concrete unlock instant")
	}
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveFallbackWhenNoAbsBefore(t *testing.T) {
	claimants := []types.Claimant{
		{Destination: "A", Predicate: types.PredicateUnconditional{}},
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewMock(now)
	got, found := Resolve(clk, claimants)
	if found {
		t.Fatal("expected fallback, not a concrete instant")
	}
	if want := now.Add(FallbackWindow); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveEarliestAcrossClaimants(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	claimants := []types.Claimant{
		{Destination: "A", Predicate: types.PredicateNot{Inner: types.PredicateAbsBefore{T: later}}},
		{Destination: "B", Predicate: types.PredicateNot{Inner: types.PredicateAbsBefore{T: earlier}}},
	}
	clk := clock.NewMock(time.Now())
	got, found := Resolve(clk, claimants)
	if !found || !got.Equal(earlier) {
		t.Fatalf("got %v (found=%v), want %v", got, found, earlier)
	}
}

func TestResolveDeterministicForFixedClock(t *testing.T) {
	claimants := []types.Claimant{
		{Destination: "A", Predicate: types.PredicateUnconditional{}},
	}
	clk := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	a, _ := Resolve(clk, claimants)
	b, _ := Resolve(clk, claimants)
	if !a.Equal(b) {
		t.Fatalf("resolve should be deterministic for a fixed clock: %v != %v", a, b)
	}
}

func TestResolveAndTakesMostRestrictive(t *testing.T) {
	// An `and` of two not{abs_before} clauses is only satisfied once both
	// hold, i.e. at the later (more restrictive) of the two instants.
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mostRestrictive := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	claimants := []types.Claimant{
		{Destination: "A", Predicate: types.PredicateAnd{
			Left:  types.PredicateNot{Inner: types.PredicateAbsBefore{T: mostRestrictive}},
			Right: types.PredicateNot{Inner: types.PredicateAbsBefore{T: earlier}},
		}},
	}
	clk := clock.NewMock(time.Now())
	got, found := Resolve(clk, claimants)
	if !found || !got.Equal(mostRestrictive) {
		t.Fatalf("got %v (found=%v), want %v", got, found, mostRestrictive)
	}
}
