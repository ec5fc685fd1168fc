package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/derange"
	"github.com/matzehuels/derange/pkg/errors"
)

// nthResult is the --json form of one answered query.
type nthResult struct {
	N           int    `json:"n"`
	Rank        string `json:"rank"`
	Derangement []int  `json:"derangement"`
}

// nthCommand creates the nth command for unranking derangements.
func (c *CLI) nthCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "nth N RANK...",
		Short: "Print the derangement of N items at each rank",
		Long: `Print the derangement of {0, ..., N-1} at each rank in lexicographic order.

Ranks are decimal integers of any size and are reduced modulo !N, so
rank !N maps back to rank 0.`,
		Example: `  derange nth 4 0          # 1 0 3 2
  derange nth 4 8 9        # 3 2 1 0, then 1 0 3 2
  derange nth 12 1000 --json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseN(args[0])
			if err != nil {
				return err
			}

			ranks := make([]*big.Int, 0, len(args)-1)
			for _, arg := range args[1:] {
				r, err := errors.ParseRank(arg)
				if err != nil {
					return err
				}
				ranks = append(ranks, r)
			}

			t, err := c.table(cmd.Context(), n)
			if err != nil {
				return err
			}

			results := make([]nthResult, 0, len(ranks))
			for _, r := range ranks {
				d, err := t.UnrankBig(r)
				if err != nil {
					return err
				}
				results = append(results, nthResult{N: n, Rank: r.String(), Derangement: d})
			}

			if asJSON {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, res := range results {
				c.printLine(formatSeq(res.Derangement))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// parseN parses an item count argument.
func parseN(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "N must be an integer: %q", s)
	}
	return n, nil
}

// table validates n against the configured maximum and returns its count
// table from the registry. Large builds show a spinner.
func (c *CLI) table(ctx context.Context, n int) (*derange.Table, error) {
	if err := errors.ValidateN(n, c.registry.MaxN()); err != nil {
		return nil, err
	}
	if n < spinnerMinN {
		return c.registry.Table(ctx, n)
	}

	s := newSpinner(ctx, c.Err, fmt.Sprintf("Preparing count table for %d items...", n))
	s.Start()
	t, err := c.registry.Table(ctx, n)
	s.Stop()
	return t, err
}
