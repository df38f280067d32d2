package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/store"
)

func newHistoryCommand(o *globalOptions) *cobra.Command {
	var (
		limit int
		after int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded answer events in sequence order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			events, err := rt.engine.History(cmd.Context(), o.learnerID(), store.QueryOpts{Limit: limit, After: after})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No answers recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-6s  %-19s  %-20s  %-14s  %-6s  %-2s  %-5s  %s\n",
				"Seq", "Timestamp", "Item", "Topic", "Level", "Q", "XP", "OK")
			fmt.Fprintln(out, strings.Repeat("─", 90))
			for _, e := range events {
				ok := "✓"
				if !e.Correct {
					ok = "✗"
				}
				fmt.Fprintf(out, "%-6d  %-19s  %-20s  %-14s  %-6s  %-2d  %-5d  %s\n",
					e.Sequence,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					truncate(e.ItemID, 20),
					truncate(e.Topic, 14),
					e.Difficulty,
					e.Quality,
					e.XPEarned,
					ok,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events")
	cmd.Flags().Int64Var(&after, "after", 0, "Only show events after this sequence number")
	return cmd
}

// truncate cuts s to at most n terminal cells without splitting a rune.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "")
}
