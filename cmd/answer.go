package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/r2ready/internal/model"
)

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Record an answer and recompute the assessment",
	Long: `Records or updates one answer on an assessment, then runs a recompute
pass so the cached result reflects it. Pass --no-recompute to batch
several edits and recompute once at the end.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		assessmentID, _ := cmd.Flags().GetString("assessment")
		questionID, _ := cmd.Flags().GetString("question")
		rawValue, _ := cmd.Flags().GetString("value")
		noRecompute, _ := cmd.Flags().GetBool("no-recompute")

		value, err := model.ParseAnswerValue(rawValue)
		if err != nil {
			return err
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		a := model.Answer{
			AssessmentID: assessmentID,
			QuestionID:   questionID,
			Value:        value,
			Active:       true,
			UpdatedAt:    time.Now(),
		}
		if err := e.Store.UpsertAnswer(ctx, a); err != nil {
			return err
		}
		fmt.Printf("Recorded %s = %s\n", questionID, value)

		if noRecompute {
			return nil
		}

		strategy, err := e.Strategy()
		if err != nil {
			return err
		}
		result, err := e.Orch.Recompute(ctx, assessmentID, strategy)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

func init() {
	f := answerCmd.Flags()
	f.String("assessment", "", "assessment ID (required)")
	f.String("question", "", "question ID (required)")
	f.String("value", "", "answer value: yes, partial, no, or n/a (required)")
	f.Bool("no-recompute", false, "skip the recompute pass")
	_ = answerCmd.MarkFlagRequired("assessment")
	_ = answerCmd.MarkFlagRequired("question")
	_ = answerCmd.MarkFlagRequired("value")
	rootCmd.AddCommand(answerCmd)
}
