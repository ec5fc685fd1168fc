// Package perm provides small permutation utilities: index sequences,
// factorials, Heap's-algorithm iteration and lexicographic stepping.
//
// Everything here enumerates explicitly, so it is only meant for small n.
// The derange package uses these helpers as a brute-force reference.
package perm

import (
	"iter"
	"slices"
)

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
// This is useful for initializing permutation arrays or creating index sequences.
//
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n! (n factorial), the product 1 × 2 × ... × n.
// For n <= 1, Factorial returns 1. 21! already exceeds int64, so callers
// must bound n themselves.
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Heap yields every permutation of [0, n) once, in the swap order of Heap's
// algorithm rather than lexicographically. The yielded slice is reused
// between iterations; clone it to keep it.
//
// For n <= 0 a single empty permutation is yielded.
//
//	for p := range perm.Heap(3) {
//	    fmt.Println(p)
//	}
func Heap(n int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		p := Seq(n)
		if !yield(p) {
			return
		}
		// c[k] counts the swaps already done at level k.
		c := make([]int, n)
		for k := 1; k < n; {
			if c[k] >= k {
				c[k] = 0
				k++
				continue
			}
			j := 0
			if k%2 == 1 {
				j = c[k]
			}
			p[j], p[k] = p[k], p[j]
			if !yield(p) {
				return
			}
			c[k]++
			k = 1
		}
	}
}

// Next rearranges p into the lexicographically next permutation in place.
// It returns false, leaving p sorted ascending, when p was already the last one.
func Next(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		slices.Reverse(p)
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])
	return true
}

// HasFixedPoint reports whether p[i] == i for some position i.
func HasFixedPoint(p []int) bool {
	for i, v := range p {
		if v == i {
			return true
		}
	}
	return false
}

// Derangements returns every derangement of [0, n) in lexicographic order by
// walking all n! permutations. It exists as a reference for ranked lookups
// and is only practical for n up to about 10.
//
// For n = 0 it returns [[]] (the empty arrangement has no fixed point);
// for n = 1 it returns no sequences.
func Derangements(n int) [][]int {
	if n <= 0 {
		return [][]int{{}}
	}
	var result [][]int
	p := Seq(n)
	for {
		if !HasFixedPoint(p) {
			result = append(result, slices.Clone(p))
		}
		if !Next(p) {
			return result
		}
	}
}
