package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var blockersCmd = &cobra.Command{
	Use:   "blockers <assessment-id>",
	Short: "Evaluate must-pass gates for an assessment",
	Long: `Evaluates only the critical must-pass gates against the current answers,
without touching the cached score result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		blockers, err := e.Orch.GetCriticalBlockers(ctx, args[0])
		if err != nil {
			return err
		}

		if len(blockers) == 0 {
			fmt.Println("No critical blockers.")
			return nil
		}
		fmt.Printf("%d critical blockers:\n", len(blockers))
		for _, b := range blockers {
			fmt.Printf("  %s (%s): failing %s\n", b.RuleName, b.RuleID, strings.Join(b.FailingQuestionIDs, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blockersCmd)
}
