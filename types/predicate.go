package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Predicate is a tagged sum type mirroring the ledger's claimant predicate
// tree: Unconditional | AbsBefore(instant) | Not(Predicate) |
// And(Predicate, Predicate) | Or(Predicate, Predicate). This generalizes
// the teacher's UnlockCondition interface (a tagged union of spend
// conditions, dispatched on ConditionType) to the shape the ledger's JSON
// API actually returns.
type Predicate interface {
	// predicateTag exists only to seal the interface to this package's
	// implementations.
	predicateTag()
}

type (
	// PredicateUnconditional is always satisfied.
	PredicateUnconditional struct{}

	// PredicateAbsBefore is satisfied once the current time is before T.
	// Its negation, Not(AbsBefore(T)), is satisfied from T onward — the
	// shape the ledger actually uses to express "claimable starting at T".
	PredicateAbsBefore struct {
		T time.Time
	}

	// PredicateNot negates its child.
	PredicateNot struct {
		Inner Predicate
	}

	// PredicateAnd requires both children.
	PredicateAnd struct {
		Left, Right Predicate
	}

	// PredicateOr requires either child.
	PredicateOr struct {
		Left, Right Predicate
	}
)

func (PredicateUnconditional) predicateTag() {}
func (PredicateAbsBefore) predicateTag()     {}
func (PredicateNot) predicateTag()           {}
func (PredicateAnd) predicateTag()           {}
func (PredicateOr) predicateTag()            {}

// wirePredicate mirrors the ledger's JSON predicate shapes from spec.md
// §6: {unconditional:true} | {abs_before:ISO8601} | {rel_before:seconds} |
// {not:<pred>} | {and:[<pred>,<pred>]} | {or:[<pred>,<pred>]}.
type wirePredicate struct {
	Unconditional *bool            `json:"unconditional,omitempty"`
	AbsBefore     *string          `json:"abs_before,omitempty"`
	RelBefore     *int64           `json:"rel_before,omitempty"`
	Not           *wirePredicate   `json:"not,omitempty"`
	And           []*wirePredicate `json:"and,omitempty"`
	Or            []*wirePredicate `json:"or,omitempty"`
}

// ParsePredicate decodes raw ledger JSON into a Predicate tree. relativeTo
// is the instant a `rel_before` clause (a duration in seconds, relative to
// when the enclosing claimable balance was created/fetched) is normalized
// against, per spec.md §4.1 ("A before-relative predicate must be
// normalized to absolute time using the clock").
func ParsePredicate(raw json.RawMessage, relativeTo time.Time) (Predicate, error) {
	var w wirePredicate
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return w.resolve(relativeTo)
}

func (w *wirePredicate) resolve(relativeTo time.Time) (Predicate, error) {
	if w == nil {
		return nil, fmt.Errorf("types: nil predicate")
	}
	switch {
	case w.Unconditional != nil && *w.Unconditional:
		return PredicateUnconditional{}, nil
	case w.AbsBefore != nil:
		t, err := time.Parse(time.RFC3339, *w.AbsBefore)
		if err != nil {
			return nil, fmt.Errorf("types: invalid abs_before %q: %w", *w.AbsBefore, err)
		}
		return PredicateAbsBefore{T: t}, nil
	case w.RelBefore != nil:
		return PredicateAbsBefore{T: relativeTo.Add(time.Duration(*w.RelBefore) * time.Second)}, nil
	case w.Not != nil:
		inner, err := w.Not.resolve(relativeTo)
		if err != nil {
			return nil, err
		}
		return PredicateNot{Inner: inner}, nil
	case len(w.And) == 2:
		left, err := w.And[0].resolve(relativeTo)
		if err != nil {
			return nil, err
		}
		right, err := w.And[1].resolve(relativeTo)
		if err != nil {
			return nil, err
		}
		return PredicateAnd{Left: left, Right: right}, nil
	case len(w.Or) == 2:
		left, err := w.Or[0].resolve(relativeTo)
		if err != nil {
			return nil, err
		}
		right, err := w.Or[1].resolve(relativeTo)
		if err != nil {
			return nil, err
		}
		return PredicateOr{Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("types: unrecognized predicate shape")
	}
}

// Claimant is one entry in a ClaimableBalance's claimants list.
type Claimant struct {
	Destination string
	Predicate   Predicate
}
