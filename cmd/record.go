package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyforge/internal/ingest"
	"github.com/abhisek/studyforge/internal/progress"
	"github.com/abhisek/studyforge/internal/ui/components"
)

func newRecordCommand(o *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "record [file]",
		Short: "Record answer events from a JSON file or stdin",
		Long: `Record reads a JSON array of answer events (or a single event) and
submits them in order. Use "-" or omit the file to read from stdin.

Each event has item_id and correct, and optionally event_id, learner_id,
topic, score (0..1), difficulty (easy|medium|hard) and at (RFC 3339).
Events whose event_id was already recorded are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open answers: %w", err)
				}
				defer f.Close()
				r = f
			}

			answers, err := ingest.DecodeBatch(r)
			if err != nil {
				return err
			}
			if len(answers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No answers to record.")
				return nil
			}

			rt, err := openRuntime(cmd.Context(), o)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			var results []*progress.AnswerResult
			skipped := 0
			for _, a := range answers {
				if a.LearnerID == "" {
					a.LearnerID = o.learnerID()
				}
				res, err := rt.engine.SubmitAnswer(cmd.Context(), a)
				if errors.Is(err, progress.ErrDuplicateAnswer) {
					warnf(cmd, "skipping already recorded event %s", a.EventID)
					skipped++
					continue
				}
				if err != nil {
					return fmt.Errorf("record %s: %w", a.ItemID, err)
				}
				results = append(results, res)
				if !asJSON {
					fmt.Fprintln(out, components.AnswerLine(a.ItemID, res))
				}
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			fmt.Fprintf(out, "Recorded %d answer(s), skipped %d duplicate(s).\n", len(results), skipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}
