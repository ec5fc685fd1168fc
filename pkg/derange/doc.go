// Package derange ranks and unranks derangements, the permutations of n items
// in which no item stays at its own position.
//
// Derangements of {0, …, n-1} are ordered lexicographically by their item
// sequence. Rank a (reduced modulo !n, so any non-negative integer is
// accepted) maps to the a-th derangement in that order without enumerating
// the !n candidates:
//
//	t, err := derange.NewTable(4)
//	if err != nil {
//	    return err
//	}
//	d, _ := t.Unrank(0) // [1 0 3 2]
//	a, _ := t.Rank(d)   // 0
//
// # Count table
//
// A Table stores, for every state (position, usedMask), how many ways the
// positions [position, n) can still be filled with the unused items so that
// no item c lands on position c. Unranking walks the positions left to right,
// scans candidate items in ascending order and subtracts the completion count
// of every candidate it passes over, which is the mixed-radix decoding of the
// rank.
//
// Building a table costs O(n²·2ⁿ) time and O(n·2ⁿ) memory. It is immutable
// afterwards and safe for concurrent use. Registry shares tables across
// goroutines and optionally persists them in a cache.Cache.
//
// # Limits
//
// Masks are uint64 and counts are uint64, so tables exist for 1 ≤ n ≤ MaxN
// (20). Larger n fail with an OVERFLOW error. SubfactorialBig has no limit.
//
// # Errors
//
// All errors are *errors.Error values from pkg/errors:
//   - INVALID_INPUT: n < 1, malformed sequences
//   - INVALID_RANK: negative or missing rank
//   - UNSATISFIABLE: n == 1, which has no derangement
//   - OVERFLOW: n beyond MaxN, or !n beyond uint64
//   - INTERNAL_ERROR: a broken decoding invariant (a defect, never caller input)
package derange
