package derange

import (
	"math"
	"math/big"
	"math/bits"

	"github.com/matzehuels/derange/pkg/errors"
	"github.com/matzehuels/derange/pkg/perm"
)

// MaxN is the largest item count supported by Table and Subfactorial.
// !20 = 895014631192902121 fits a uint64, !21 does not.
const MaxN = 20

// SeriesMaxN is the largest n for which SubfactorialSeries is evaluated.
// Past it n! outgrows the float64 mantissa far enough that rounding the
// series is no longer guaranteed to land on the exact integer.
const SeriesMaxN = 15

// Subfactorial returns !n, the number of derangements of n items, using the
// recurrence !n = (n-1)·(!(n-1) + !(n-2)) with !0 = 1 and !1 = 0.
//
// Arithmetic is checked: an n whose subfactorial does not fit in a uint64
// (n > MaxN) returns an OVERFLOW error instead of a wrapped value.
func Subfactorial(n int) (uint64, error) {
	if n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "subfactorial of negative n=%d", n)
	}
	if n == 0 {
		return 1, nil
	}

	var prev, cur uint64 = 1, 0 // !0, !1
	for k := 2; k <= n; k++ {
		sum, carry := bits.Add64(cur, prev, 0)
		hi, lo := bits.Mul64(uint64(k-1), sum)
		if carry != 0 || hi != 0 {
			return 0, errors.New(errors.ErrCodeOverflow, "!%d does not fit in 64 bits", n)
		}
		prev, cur = cur, lo
	}
	return cur, nil
}

// SubfactorialBig returns !n exactly for any n ≥ 0.
func SubfactorialBig(n int) (*big.Int, error) {
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "subfactorial of negative n=%d", n)
	}
	prev, cur := big.NewInt(1), big.NewInt(0)
	if n == 0 {
		return prev, nil
	}
	k := new(big.Int)
	for i := 2; i <= n; i++ {
		next := new(big.Int).Add(cur, prev)
		next.Mul(next, k.SetInt64(int64(i-1)))
		prev, cur = cur, next
	}
	return cur, nil
}

// SubfactorialSeries evaluates the inclusion-exclusion series
// !n = n!·Σ_{k=0..n} (-1)^k/k! in floating point and rounds the result.
//
// It is kept as an independent cross-check of Subfactorial and is only
// defined for n ≤ SeriesMaxN; larger n return UNSUPPORTED.
func SubfactorialSeries(n int) (uint64, error) {
	if n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "subfactorial of negative n=%d", n)
	}
	if n > SeriesMaxN {
		return 0, errors.New(errors.ErrCodeUnsupported, "series form is inexact beyond n=%d", SeriesMaxN)
	}

	var sum float64
	for k := 0; k <= n; k++ {
		term := 1 / float64(perm.Factorial(k))
		if k%2 == 1 {
			term = -term
		}
		sum += term
	}
	return uint64(math.Round(float64(perm.Factorial(n)) * sum)), nil
}
