package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(o *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all progress of the learner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			learner := o.learnerID()
			if !yes {
				return errors.New("reset deletes all progress of " + learner + "; pass --yes to confirm")
			}

			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.engine.Reset(cmd.Context(), learner); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress of %s reset.\n", learner)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
