package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHintCommand(o *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hint <item-id> <level>",
		Short: "Record that a hint (level 1-3) was shown for an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid hint level %q: %w", args[1], err)
			}

			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.engine.RequestHint(cmd.Context(), o.learnerID(), args[0], level)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hint %d for %s recorded: %d used, %d remaining\n",
				res.Level, res.ItemID, res.HintsUsed, res.Remaining)
			return nil
		},
	}
}
