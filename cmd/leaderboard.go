package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/ui/components"
)

type leaderboardView struct {
	Board   leaderboard.Kind    `json:"board" yaml:"board"`
	Entries []leaderboard.Entry `json:"entries" yaml:"entries"`
	Me      leaderboard.Entry   `json:"me" yaml:"me"`
}

func newLeaderboardCommand(o *globalOptions) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:       "leaderboard [xp|streak]",
		Short:     "Show the top learners by XP or longest streak",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(leaderboard.KindXP), string(leaderboard.KindStreak)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := leaderboard.KindXP
			if len(args) == 1 {
				k, err := leaderboard.ParseKind(args[0])
				if err != nil {
					return err
				}
				kind = k
			}
			if limit <= 0 {
				limit = o.cfg.Leaderboard.Limit
			}

			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.engine.Leaderboard(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			me, err := rt.engine.LeaderboardPosition(cmd.Context(), kind, o.learnerID())
			if err != nil {
				return err
			}

			view := leaderboardView{Board: kind, Entries: entries, Me: me}
			return render(cmd.OutOrStdout(), format, view, func() string {
				return components.LeaderboardTable(kind, entries, &me)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of entries (default from config)")
	cmd.Flags().StringVarP(&format, "output", "o", outputText, "Output format: text, json or yaml")
	return cmd
}
