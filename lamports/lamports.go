// Package lamports holds checked arithmetic and SOL conversions for native balances.
package lamports

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// PerSOL is the number of lamports in one SOL.
const PerSOL uint64 = 1_000_000_000

const decimals = 9

var (
	// ErrOverflow is returned when an addition does not fit in 64 bits.
	ErrOverflow = errors.New("lamports overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("lamports underflow")
	// ErrInvalidAmount is returned when a SOL amount cannot be expressed in lamports.
	ErrInvalidAmount = errors.New("invalid sol amount")
)

// Add returns a + b, or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}

	return sum, nil
}

// Sub returns a - b, or ErrUnderflow.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}

	return diff, nil
}

// Mul returns a * b, or ErrOverflow.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}

	return lo, nil
}

// Sum adds all values with overflow checking.
func Sum(values ...uint64) (uint64, error) {
	var total uint64
	for _, v := range values {
		var err error
		if total, err = Add(total, v); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// ToSOL converts lamports to a SOL decimal.
func ToSOL(amount uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals)
}

// FromSOL converts a SOL decimal to lamports. Fractions below one lamport,
// negative values and values beyond u64 are rejected.
func FromSOL(sol decimal.Decimal) (uint64, error) {
	if sol.IsNegative() {
		return 0, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}

	if !sol.Equal(sol.Truncate(decimals)) {
		return 0, fmt.Errorf("%w: more than %d decimals", ErrInvalidAmount, decimals)
	}

	v := sol.Shift(decimals).BigInt()
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}

	return v.Uint64(), nil
}

// ParseSOL parses a SOL string such as "1.5" into lamports.
func ParseSOL(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return FromSOL(d)
}

// Format renders lamports as a SOL string, e.g. "1.5".
func Format(amount uint64) string {
	return ToSOL(amount).String()
}
