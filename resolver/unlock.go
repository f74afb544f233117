// Package resolver computes the unlock instant of a claimable balance by
// interpreting its claimant predicate tree (C2 in SPEC_FULL.md's
// component table). The algorithm is a pure, recursive descent over
// types.Predicate, generalized from the teacher's
// UnlockCondition.Fulfillable(FulfillableContext) recursive-descent
// pattern.
package resolver

import (
	"time"

	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/types"
)

// FallbackWindow is the conservative sentinel duration used when no
// claimant's predicate tree contains an interpretable not{abs_before}
// clause (spec.md §4.1).
const FallbackWindow = 24 * time.Hour

// Resolve examines claimants in order and returns the earliest
// not{abs_before: T} instant found across any of them. The second return
// value reports whether a concrete instant was found; when false, the
// returned instant is clk.Now() + FallbackWindow and the caller should log
// a Warning (the record is non-interpretable, but must not be dropped —
// spec.md §4.1 and §9).
func Resolve(clk clock.Clock, claimants []types.Claimant) (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	consider := func(t time.Time) {
		if !found || t.Before(best) {
			best = t
			found = true
		}
	}
	for _, c := range claimants {
		if t, ok := restrictiveAbsBefore(c.Predicate); ok {
			consider(t)
		}
	}
	if !found {
		return clk.Now().Add(FallbackWindow), false
	}
	return best, true
}

// restrictiveAbsBefore walks a single predicate tree looking for a
// not{abs_before: T} clause, which yields T. An `and` yields the later
// (more restrictive) of its branches' bounds, since both must hold. An
// `or` yields the earlier (more permissive) of its branches' bounds, since
// either branch alone is sufficient to unlock. In both, a branch with no
// bound is ignored and the other branch's bound is used alone.
// unconditional and un-negated abs_before nodes yield no bound.
func restrictiveAbsBefore(p types.Predicate) (time.Time, bool) {
	switch v := p.(type) {
	case types.PredicateNot:
		if abs, ok := v.Inner.(types.PredicateAbsBefore); ok {
			return abs.T, true
		}
		return time.Time{}, false
	case types.PredicateAnd:
		// Both branches must hold, so the effective unlock instant is the
		// later (more restrictive) of the two bounds.
		lt, lok := restrictiveAbsBefore(v.Left)
		rt, rok := restrictiveAbsBefore(v.Right)
		switch {
		case lok && rok:
			if lt.After(rt) {
				return lt, true
			}
			return rt, true
		case lok:
			return lt, true
		case rok:
			return rt, true
		default:
			return time.Time{}, false
		}
	case types.PredicateOr:
		// Either branch suffices, so the effective unlock instant is the
		// earlier (more permissive) of the two bounds.
		lt, lok := restrictiveAbsBefore(v.Left)
		rt, rok := restrictiveAbsBefore(v.Right)
		switch {
		case lok && rok:
			if lt.Before(rt) {
				return lt, true
			}
			return rt, true
		case lok:
			return lt, true
		case rok:
			return rt, true
		default:
			return time.Time{}, false
		}
	default:
		// PredicateUnconditional, PredicateAbsBefore (un-negated) — neither
		// contributes a lower bound on its own.
		return time.Time{}, false
	}
}
