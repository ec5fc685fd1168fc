package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/derange"
)

// countCommand creates the count command printing subfactorials.
func (c *CLI) countCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count N",
		Short: "Print the number of derangements of N items (!N)",
		Long: `Print !N exactly. Unlike nth and rank, count is not limited by max_n
and works for any non-negative N.`,
		Example: `  derange count 4          # 9
  derange count 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseN(args[0])
			if err != nil {
				return err
			}
			v, err := derange.SubfactorialBig(n)
			if err != nil {
				return err
			}
			if n > derange.MaxN {
				c.Logger.Debug("count exceeds rankable range", "n", n, "max", derange.MaxN)
			}
			c.printLine(v.String())
			return nil
		},
	}
}
