package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/errors"
)

// defaultListLimit bounds list output unless --limit says otherwise.
const defaultListLimit = 10000

// listCommand creates the list command printing derangements in order.
func (c *CLI) listCommand() *cobra.Command {
	var (
		limit uint64
		start uint64
	)

	cmd := &cobra.Command{
		Use:   "list N",
		Short: "Print derangements of N items in lexicographic order",
		Long: `Print derangements of N items in lexicographic order, one per line,
starting at rank --start. At most --limit lines are printed; 0 prints all.`,
		Example: `  derange list 4
  derange list 10 --start 1000 --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseN(args[0])
			if err != nil {
				return err
			}
			t, err := c.table(cmd.Context(), n)
			if err != nil {
				return err
			}

			total := t.Total()
			if start >= total {
				return errors.New(errors.ErrCodeInvalidRank, "--start %d is past the last rank %d", start, total-1)
			}
			end := total
			if limit > 0 && total-start > limit {
				end = start + limit
				c.Logger.Info("output truncated", "shown", limit, "total", total)
			}

			ctx := cmd.Context()
			for a := start; a < end; a++ {
				if a%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				d, err := t.Unrank(a)
				if err != nil {
					return err
				}
				c.printLine(formatSeq(d))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&limit, "limit", defaultListLimit, "maximum number of derangements to print (0 = all)")
	cmd.Flags().Uint64Var(&start, "start", 0, "rank of the first derangement to print")
	return cmd
}
