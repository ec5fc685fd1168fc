package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/derange"
	"github.com/matzehuels/derange/pkg/errors"
	"github.com/matzehuels/derange/pkg/perm"
)

const (
	// bruteForceMaxN is the largest n compared against full permutation
	// enumeration (9! = 362880 permutations).
	bruteForceMaxN = 9

	// defaultVerifyMax bounds how many ranks verify decodes per n.
	defaultVerifyMax = 50_000_000
)

// verifyCommand creates the verify command, an exhaustive self-test.
func (c *CLI) verifyCommand() *cobra.Command {
	var maxResults uint64

	cmd := &cobra.Command{
		Use:   "verify N...",
		Short: "Exhaustively check ranking and unranking for each N",
		Long: `Decode every rank in [0, !N) and check that:

  - each result is a derangement of N items
  - results are strictly increasing, hence distinct
  - exactly !N results exist and rank !N wraps to rank 0
  - ranking each result gives back its rank
  - the table total agrees with the subfactorial recurrence and series
  - for N <= 9, the results equal brute-force permutation filtering`,
		Example: `  derange verify 2 3 4 5 6 7 8
  derange verify 12 --max 0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := make([]int, len(args))
			for i, arg := range args {
				n, err := parseN(arg)
				if err != nil {
					return err
				}
				if err := errors.ValidateN(n, c.registry.MaxN()); err != nil {
					return err
				}
				ns[i] = n
			}

			checked := ns[:0:0]
			for _, n := range ns {
				total, err := derange.Subfactorial(n)
				if err != nil {
					return err
				}
				if maxResults > 0 && total > maxResults {
					c.printWarning("n=%d: skipped, %d derangements exceed --max %d", n, total, maxResults)
					continue
				}
				checked = append(checked, n)
			}

			ctx := cmd.Context()
			if err := c.registry.Warm(ctx, checked...); err != nil {
				return err
			}

			failed := 0
			for _, n := range checked {
				t, err := c.registry.Table(ctx, n)
				if err != nil {
					return err
				}

				prog := newProgress(loggerFromContext(ctx))
				problems, err := verifyTable(ctx, t)
				if err != nil {
					return err
				}
				if len(problems) > 0 {
					failed++
					c.printError("n=%d: %d problem(s)", n, len(problems))
					for _, p := range problems {
						c.printDetail("%s", p)
					}
					continue
				}
				prog.done(fmt.Sprintf("Verified %d derangements of %d items", t.Total(), n))
				c.printSuccess("n=%d: %d derangements verified", n, t.Total())
			}

			if failed > 0 {
				return errors.New(errors.ErrCodeInternal, "verification failed for %d of %d item count(s)", failed, len(checked))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&maxResults, "max", defaultVerifyMax, "skip N with more derangements than this (0 = no limit)")
	return cmd
}

// maxProblems caps the problems collected per table.
const maxProblems = 10

// verifyTable runs every check for one table and returns a description of
// each failure. The returned error is reserved for cancellation.
func verifyTable(ctx context.Context, t *derange.Table) ([]string, error) {
	var problems []string
	report := func(format string, args ...any) {
		if len(problems) < maxProblems {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	n := t.N()
	total := t.Total()
	want, err := derange.Subfactorial(n)
	if err != nil {
		return nil, err
	}
	if total != want {
		report("table total %d, recurrence gives %d", total, want)
	}
	if n <= derange.SeriesMaxN {
		if s, err := derange.SubfactorialSeries(n); err != nil || s != want {
			report("series gives %d, recurrence gives %d", s, want)
		}
	}

	// Two independent enumerations: a lexicographic walk and Heap's swap
	// order sorted afterwards. They must agree with each other and the table.
	var oracle [][]int
	if n <= bruteForceMaxN {
		oracle = perm.Derangements(n)
		heap := heapDerangements(n)
		switch {
		case uint64(len(oracle)) != total:
			report("brute force finds %d derangements, table counts %d", len(oracle), total)
			oracle = nil
		case !slices.EqualFunc(oracle, heap, func(a, b []int) bool { return slices.Equal(a, b) }):
			report("lexicographic and Heap enumerations disagree")
		}
	}

	var prev []int
	for a := uint64(0); a < total; a++ {
		if a%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		d, err := t.Unrank(a)
		if err != nil {
			report("rank %d: %v", a, err)
			continue
		}
		if !derange.IsDerangement(d) {
			report("rank %d: %v is not a derangement", a, d)
		}
		if prev != nil && slices.Compare(prev, d) >= 0 {
			report("rank %d: %v does not follow %v", a, d, prev)
		}
		if r, err := t.Rank(d); err != nil || r != a {
			report("rank %d: %v ranks back to %d (%v)", a, d, r, err)
		}
		if oracle != nil && !slices.Equal(oracle[a], d) {
			report("rank %d: got %v, brute force has %v", a, d, oracle[a])
		}
		prev = d
	}

	if total > 0 {
		first, err1 := t.Unrank(0)
		wrapped, err2 := t.Unrank(total)
		if err1 != nil || err2 != nil || !slices.Equal(first, wrapped) {
			report("rank %d does not wrap to rank 0", total)
		}
	}
	return problems, nil
}

// heapDerangements collects the derangements among Heap's permutations in
// sorted order.
func heapDerangements(n int) [][]int {
	var out [][]int
	for p := range perm.Heap(n) {
		if !perm.HasFixedPoint(p) {
			out = append(out, slices.Clone(p))
		}
	}
	slices.SortFunc(out, slices.Compare)
	return out
}
