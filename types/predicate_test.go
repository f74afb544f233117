package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParsePredicateAbsBefore(t *testing.T) {
	raw := json.RawMessage(`{"not":{"abs_before":"2026-01-01T00:00:00Z"}}`)
	p, err := ParsePredicate(raw, time.Now())
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	not, ok := p.(PredicateNot)
	if !ok {
		t.Fatalf("expected PredicateNot, got %T", p)
	}
	abs, ok := not.Inner.(PredicateAbsBefore)
	if !ok {
		t.Fatalf("expected PredicateAbsBefore, got %T", not.Inner)
	}
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if !abs.T.Equal(want) {
		t.Fatalf("got %v, want %v", abs.T, want)
	}
}

func TestParsePredicateUnconditional(t *testing.T) {
	raw := json.RawMessage(`{"unconditional":true}`)
	p, err := ParsePredicate(raw, time.Now())
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if _, ok := p.(PredicateUnconditional); !ok {
		t.Fatalf("expected PredicateUnconditional, got %T", p)
	}
}

func TestParsePredicateRelBeforeNormalizesToAbsolute(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	raw := json.RawMessage(`{"rel_before":3600}`)
	p, err := ParsePredicate(raw, now)
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	abs, ok := p.(PredicateAbsBefore)
	if !ok {
		t.Fatalf("expected PredicateAbsBefore, got %T", p)
	}
	want := now.Add(time.Hour)
	if !abs.T.Equal(want) {
		t.Fatalf("got %v, want %v", abs.T, want)
	}
}

func TestParsePredicateAndOr(t *testing.T) {
	raw := json.RawMessage(`{"and":[{"unconditional":true},{"not":{"abs_before":"2026-01-01T00:00:00Z"}}]}`)
	p, err := ParsePredicate(raw, time.Now())
	if err != nil {
		t.Fatalf("ParsePredicate: %v", err)
	}
	if _, ok := p.(PredicateAnd); !ok {
		t.Fatalf("expected PredicateAnd, got %T", p)
	}
}

func TestParsePredicateMalformedErrors(t *testing.T) {
	raw := json.RawMessage(`{"something_unknown":true}`)
	if _, err := ParsePredicate(raw, time.Now()); err == nil {
		t.Fatal("expected error for unrecognized predicate shape")
	}
}
