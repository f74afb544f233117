package types

import (
	"errors"
	"fmt"
	"math/big"
)

// amountScale is the number of fractional digits an Amount carries (the
// ledger's stroop scale), matching spec.md §3's "non-negative decimal,
// 7-digit fraction".
const amountScale = 7

var scaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(amountScale), nil)

// Amount is a non-negative, fixed-point decimal amount with 7 fractional
// digits, modeled after the Currency-style big.Int wrapper convention used
// throughout this codebase family (custom string rendering, exact decimal
// arithmetic, no floating point).
type Amount struct {
	stroops big.Int
}

// ErrNegativeAmount is returned when an operation would produce a negative
// Amount; balances and payments are never negative.
var ErrNegativeAmount = errors.New("types: amount cannot be negative")

// NewAmountFromString parses a decimal string (e.g. "3.1415926") into an
// Amount.
func NewAmountFromString(s string) (Amount, error) {
	r := new(big.Rat)
	if _, ok := r.SetString(s); !ok {
		return Amount{}, fmt.Errorf("types: invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(scaleFactor))
	if !scaled.IsInt() {
		return Amount{}, fmt.Errorf("types: amount %q has more than %d fractional digits", s, amountScale)
	}
	return Amount{stroops: *scaled.Num()}, nil
}

// NewAmountFromStroops builds an Amount directly from its integer stroop
// count (amount * 10^7).
func NewAmountFromStroops(stroops int64) Amount {
	var a Amount
	a.stroops.SetInt64(stroops)
	return a
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.stroops.Sign() == 0 }

// Stroops returns the underlying integer stroop count.
func (a Amount) Stroops() *big.Int {
	return new(big.Int).Set(&a.stroops)
}

// String renders the amount as a decimal string with up to 7 fractional
// digits, trimming trailing zeros (but keeping at least one digit before
// the decimal point).
func (a Amount) String() string {
	neg := a.stroops.Sign() < 0
	abs := new(big.Int).Abs(&a.stroops)
	q, r := new(big.Int).QuoRem(abs, scaleFactor, new(big.Int))
	frac := r.String()
	for len(frac) < amountScale {
		frac = "0" + frac
	}
	for len(frac) > 0 && frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}
	s := q.String()
	if frac != "" {
		s += "." + frac
	}
	if neg {
		s = "-" + s
	}
	return s
}

// MarshalJSON renders the amount as a JSON string, matching the ledger's
// own wire representation of currency amounts.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses either a JSON string or a JSON number into an
// Amount.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := NewAmountFromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
