package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/difficulty"
	"github.com/abhisek/studyforge/internal/progress"
)

func newRegisterCommand(o *globalOptions) *cobra.Command {
	var topic, tier, quiz string

	cmd := &cobra.Command{
		Use:   "register <item-id>",
		Short: "Register a quiz item for the learner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			rs, err := rt.engine.RegisterItem(cmd.Context(), o.learnerID(), progress.Item{
				ID:         args[0],
				Topic:      topic,
				Difficulty: tier,
				QuizID:     quiz,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registered %s (topic %s, %s)\n", rs.ItemID, rs.Topic, rs.Difficulty)
			if rs.QuizID != "" {
				fmt.Fprintf(out, "Part of quiz %s\n", rs.QuizID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic label (default General)")
	cmd.Flags().StringVar(&tier, "difficulty", "", "Difficulty tier: "+tierNames())
	cmd.Flags().StringVar(&quiz, "quiz", "", "Quiz the item belongs to")
	return cmd
}

func tierNames() string {
	tiers := difficulty.AllTiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
