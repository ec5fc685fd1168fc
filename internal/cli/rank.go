package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/derange/pkg/errors"
)

// rankCommand creates the rank command, the inverse of nth.
func (c *CLI) rankCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rank ITEM...",
		Short: "Print the lexicographic rank of a derangement",
		Long: `Print the lexicographic rank of a derangement given as its items.

The item count N is the number of arguments; the items must be a
permutation of {0, ..., N-1} with no item in its own position.`,
		Example: `  derange rank 3 2 1 0     # 8
  derange rank 1 2 0       # 0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := make([]int, len(args))
			for i, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return errors.New(errors.ErrCodeInvalidInput, "item %d is not an integer: %q", i, arg)
				}
				d[i] = v
			}

			t, err := c.table(cmd.Context(), len(d))
			if err != nil {
				return err
			}
			r, err := t.Rank(d)
			if err != nil {
				return err
			}
			c.printLine(strconv.FormatUint(r, 10))
			return nil
		},
	}
}
