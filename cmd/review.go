package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/ui/components"
)

func newReviewCommand(o *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "List items due for review, most overdue first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			now := time.Now()
			queue, err := rt.engine.ReviewQueue(cmd.Context(), o.learnerID(), now)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, queue, func() string {
				return components.ReviewList(queue, now)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", outputText, "Output format: text, json or yaml")
	return cmd
}
