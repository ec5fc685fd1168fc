package derange

import (
	"math/big"

	"github.com/matzehuels/derange/pkg/errors"
)

// NthDerangement returns the a-th derangement of {0, …, n-1} in
// lexicographic order, with a reduced modulo !n.
//
// n == 0 is rejected as INVALID_INPUT and n == 1 as UNSATISFIABLE, since the
// single item can only map onto itself. A fresh table is built per call; use
// a Table or Registry to answer repeated queries for the same n.
func NthDerangement(n int, a uint64) ([]int, error) {
	if err := errors.ValidateN(n, MaxN); err != nil {
		return nil, err
	}
	t, err := NewTable(n)
	if err != nil {
		return nil, err
	}
	return t.Unrank(a)
}

// Unrank returns the derangement of rank a mod !n.
func (t *Table) Unrank(a uint64) ([]int, error) {
	total := t.Total()
	if total == 0 {
		return nil, errors.New(errors.ErrCodeUnsatisfiable, "no derangement of %d item(s) exists", t.n)
	}
	return t.decode(a % total)
}

// UnrankBig is Unrank for ranks of arbitrary size. a must be non-negative.
func (t *Table) UnrankBig(a *big.Int) ([]int, error) {
	if a == nil {
		return nil, errors.New(errors.ErrCodeInvalidRank, "rank is nil")
	}
	if a.Sign() < 0 {
		return nil, errors.New(errors.ErrCodeInvalidRank, "rank must be non-negative, got %s", a)
	}
	total := t.Total()
	if total == 0 {
		return nil, errors.New(errors.ErrCodeUnsatisfiable, "no derangement of %d item(s) exists", t.n)
	}
	r := new(big.Int).Mod(a, new(big.Int).SetUint64(total))
	return t.decode(r.Uint64())
}

// decode resolves positions left to right. For each position the valid
// candidates are scanned in ascending order; a candidate whose completion
// count exceeds the remaining rank is committed, otherwise its count is
// subtracted and the scan moves on. a must already be below Total.
//
// At the last position exactly one item is left. It is committed without
// comparing counts, after which the residual rank must be zero.
func (t *Table) decode(a uint64) ([]int, error) {
	n := t.n
	result := make([]int, n)
	var used uint64

	for p := 0; p < n; p++ {
		placed := false
		for c := 0; c < n; c++ {
			bit := uint64(1) << c
			if c == p || used&bit != 0 {
				continue
			}
			count := t.Count(p+1, used|bit)
			if p == n-1 {
				if a != 0 || count != 1 {
					return nil, errors.New(errors.ErrCodeInternal,
						"residual rank %d with completion count %d at final position %d", a, count, p)
				}
			} else if a >= count {
				a -= count
				continue
			}
			result[p] = c
			used |= bit
			placed = true
			break
		}
		if !placed {
			return nil, errors.New(errors.ErrCodeInternal, "no candidate left for position %d", p)
		}
	}
	return result, nil
}

// Rank returns the lexicographic rank of derangement d, the inverse of
// Unrank on [0, !n). d must be a permutation of {0, …, n-1} without fixed
// points; anything else is INVALID_INPUT.
func (t *Table) Rank(d []int) (uint64, error) {
	if len(d) != t.n {
		return 0, errors.New(errors.ErrCodeInvalidInput, "sequence has %d items, table is for n=%d", len(d), t.n)
	}
	if err := validateDerangement(d); err != nil {
		return 0, err
	}

	var rank, used uint64
	for p, item := range d {
		for c := 0; c < item; c++ {
			bit := uint64(1) << c
			if c == p || used&bit != 0 {
				continue
			}
			rank += t.Count(p+1, used|bit)
		}
		used |= uint64(1) << item
	}
	return rank, nil
}

// IsDerangement reports whether d is a permutation of {0, …, len(d)-1}
// with d[p] != p for every position p.
func IsDerangement(d []int) bool {
	return validateDerangement(d) == nil
}

func validateDerangement(d []int) error {
	seen := make([]bool, len(d))
	for p, item := range d {
		if item < 0 || item >= len(d) {
			return errors.New(errors.ErrCodeInvalidInput, "item %d at position %d out of range [0,%d)", item, p, len(d))
		}
		if item == p {
			return errors.New(errors.ErrCodeInvalidInput, "item %d is a fixed point", item)
		}
		if seen[item] {
			return errors.New(errors.ErrCodeInvalidInput, "item %d appears more than once", item)
		}
		seen[item] = true
	}
	return nil
}
