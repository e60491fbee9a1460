package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/r2ready/internal/model"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute [assessment-id...]",
	Short: "Run a full recompute pass for one or more assessments",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		strategy, err := e.Strategy()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			result, err := e.Orch.Recompute(ctx, args[0], strategy)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		}

		if err := e.Orch.RecomputeAll(ctx, args, strategy, cfg.Engine.MaxParallel); err != nil {
			return err
		}
		fmt.Printf("Recomputed %d assessments\n", len(args))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}

func printResult(r *model.AssessmentScoreResult) {
	fmt.Printf("\nAssessment: %s\n", r.AssessmentID)
	fmt.Printf("Strategy:   %s (config v%d)\n", r.Strategy, r.ConfigVersion)
	fmt.Printf("Overall:    %.1f%%\n", r.OverallScorePercentage)
	fmt.Printf("Readiness:  %s\n", r.Readiness)

	if len(r.CategoryScores) > 0 {
		cats := make([]string, 0, len(r.CategoryScores))
		for c := range r.CategoryScores {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		fmt.Println("\nCategories:")
		for _, c := range cats {
			fmt.Printf("  %-30s %6.1f%%\n", c, r.CategoryScores[c])
		}
	}

	if r.CriticalBlockersCount > 0 {
		fmt.Printf("\nCritical blockers (%d):\n", r.CriticalBlockersCount)
		for _, b := range r.CriticalBlockers {
			fmt.Printf("  %s (%s): %s\n", b.RuleName, b.RuleID, strings.Join(b.FailingQuestionIDs, ", "))
		}
	}
	if len(r.UnresolvedRuleIDs) > 0 {
		fmt.Printf("\nUnresolved gates: %s\n", strings.Join(r.UnresolvedRuleIDs, ", "))
	}
	for _, w := range r.Warnings {
		fmt.Printf("\nWarning [%s]: %s\n", w.Engine, w.Reason)
	}
	fmt.Printf("\nInput hash: %s\n", r.InputHash)
}
