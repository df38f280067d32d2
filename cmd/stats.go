package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/ui/components"
)

const cardWidth = 56

func newStatsCommand(o *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show XP, level, streak and topic mastery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			now := time.Now()
			d, err := rt.engine.Dashboard(cmd.Context(), o.learnerID(), now)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), format, d, func() string {
				return strings.Join([]string{
					components.StatsCard(d.Stats, cardWidth),
					"",
					components.MasteryTable(d.TopicMastery, cardWidth+8),
					"",
					components.ReviewList(d.ReviewQueue, now),
					"",
					components.QuizList(d.RecentQuizzes),
				}, "\n")
			})
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", outputText, "Output format: text, json or yaml")
	return cmd
}
