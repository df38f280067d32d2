package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCompleteCommand(o *globalOptions) *cobra.Command {
	var quiz string

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Count a completed quiz for the learner",
		Long: `Count a completed quiz for the learner.

With --quiz the named quiz is marked complete and scored over its items.
Completing the same quiz again rescores it without counting it twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.engine.CompleteQuiz(cmd.Context(), o.learnerID(), quiz)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Quizzes completed: %d\n", res.Stats.TotalQuizzesCompleted)
			if q := res.Quiz; q != nil {
				fmt.Fprintf(out, "Quiz %s: %d/%d correct (%.1f%%)\n", q.QuizID, q.Correct, q.Total, q.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&quiz, "quiz", "", "Quiz to mark complete")
	return cmd
}
