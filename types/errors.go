package types

import "fmt"

// ErrKind is the ledger-facing error taxonomy from spec.md §7, replacing
// the "ad-hoc retry" anti-pattern (string-sniffing an error message) named
// in spec.md §9: LedgerClient classifies errors into one of these kinds
// from the structured result_codes field, and every caller switches on
// Kind rather than inspecting an error string.
type ErrKind int

const (
	// KindAuthMismatch: a supplied secret does not derive to its claimed
	// address. Terminal for the wallet; never retried.
	KindAuthMismatch ErrKind = iota
	// KindBadSequence: the ledger rejected a transaction with tx_bad_seq.
	// Invalidate the sequence cache and retry fast.
	KindBadSequence
	// KindBadAuth: the ledger rejected a transaction with tx_bad_auth.
	// Terminal for the balance.
	KindBadAuth
	// KindLogic: an operation-level rejection (e.g. balance already
	// claimed, destination unfunded). Remove the balance; do not retry.
	KindLogic
	// KindTransient: network error, 5xx, timeout, or unrecognized result
	// shape. Retried with exponential backoff.
	KindTransient
	// KindConfig: missing or invalid configuration. Fatal at startup.
	KindConfig
)

func (k ErrKind) String() string {
	switch k {
	case KindAuthMismatch:
		return "AuthMismatch"
	case KindBadSequence:
		return "BadSequence"
	case KindBadAuth:
		return "BadAuth"
	case KindLogic:
		return "Logic"
	case KindTransient:
		return "Transient"
	case KindConfig:
		return "Config"
	default:
		return "Unknown"
	}
}

// ClassifiedError pairs an ErrKind with the underlying cause, so that a
// caller can apply spec.md §4.4's retry policy with a type switch instead
// of parsing an error message.
type ClassifiedError struct {
	Kind ErrKind
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classify wraps err with the given kind.
func Classify(kind ErrKind, err error) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Err: err}
}

// KindOf extracts the ErrKind of err if it is (or wraps) a
// *ClassifiedError, defaulting to KindTransient for anything
// unclassified — an unrecognized error shape is exactly what spec.md §7
// calls Transient ("unknown result shape").
func KindOf(err error) ErrKind {
	var ce *ClassifiedError
	if asClassifiedError(err, &ce) {
		return ce.Kind
	}
	return KindTransient
}

func asClassifiedError(err error, target **ClassifiedError) bool {
	for err != nil {
		if ce, ok := err.(*ClassifiedError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
