package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/ui/theme"
)

func newDifficultyCommand(o *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "difficulty [topic]",
		Short: "Suggest the difficulty tier to offer next for a topic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := ""
			if len(args) == 1 {
				topic = args[0]
			}

			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			tier, err := rt.engine.NextDifficulty(cmd.Context(), o.learnerID(), topic)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme.Tier(tier).Render(tier.String()))
			return nil
		},
	}
}
