// Package pkg provides the libraries behind the derange tool.
//
// # Overview
//
// derange maps integers to derangements, permutations of {0, …, n-1} in
// which no item stays in its own position, in lexicographic order and back.
// The pkg directory is organized into these areas:
//
//  1. [derange] - Domain logic (subfactorials, count tables, ranking, registry)
//  2. [perm] - Permutation helpers and the brute-force derangement oracle
//  3. [cache] - Persistent storage for built count tables
//  4. [errors] - Structured error codes shared by the library and the CLI
//  5. [observability] - Hooks for table builds and cache traffic
//
// # Architecture
//
// The typical data flow through derange:
//
//	(n, rank)
//	    ↓
//	[errors.ValidateN] (reject n < 2 and n above the configured maximum)
//	    ↓
//	[derange.Registry] (shared count table per n, loaded from [cache] or built)
//	    ↓
//	[derange.Table.Unrank] (greedy ascending scan over completion counts)
//	    ↓
//	derangement
//
// # Quick Start
//
//	import "github.com/matzehuels/derange/pkg/derange"
//
//	d, err := derange.NthDerangement(4, 8) // [3 2 1 0]
//
// For repeated queries share tables through a registry:
//
//	reg := derange.NewRegistry(derange.WithMaxN(16))
//	d, err := reg.NthDerangement(ctx, 12, 1_000_000)
//	r, err := reg.Rank(ctx, d) // 1_000_000
//
// [derange]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/derange
// [perm]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/perm
// [cache]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/observability
// [errors.ValidateN]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/errors#ValidateN
// [derange.Registry]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/derange#Registry
// [derange.Table.Unrank]: https://pkg.go.dev/github.com/matzehuels/derange/pkg/derange#Table.Unrank
package pkg
