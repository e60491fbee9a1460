package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/r2ready/internal/model"
)

var applicableCmd = &cobra.Command{
	Use:   "applicable",
	Short: "Show the applicable question set for a facility profile",
	Long: `Evaluates the relevance, exclusion, and conditional rules against a
stored facility profile and prints the resulting ordered question set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		facilityID, _ := cmd.Flags().GetString("facility")
		version, _ := cmd.Flags().GetInt("profile-version")

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		profile, err := e.Store.GetProfile(ctx, facilityID, version)
		if err != nil {
			return err
		}

		ids, err := e.Orch.EvaluateApplicableQuestions(*profile)
		if err != nil {
			return err
		}

		idx := e.Snapshot.Index()
		fmt.Printf("%d applicable questions for %s v%d:\n\n", len(ids), facilityID, version)
		var lastCategory string
		for _, id := range ids {
			q, _ := idx.Get(id)
			if q.Category != lastCategory {
				fmt.Printf("[%s]\n", q.Category)
				lastCategory = q.Category
			}
			fmt.Printf("  %-12s %s%s\n", q.ID, q.Text, questionMarkers(q))
		}
		return nil
	},
}

func questionMarkers(q model.Question) string {
	var s string
	if q.IsMustPass {
		s += "  [must-pass]"
	}
	if q.EvidenceRequired {
		s += "  [evidence]"
	}
	if q.IsMaturityQuestion {
		s += "  [maturity]"
	}
	return s
}

func init() {
	f := applicableCmd.Flags()
	f.String("facility", "", "facility ID (required)")
	f.Int("profile-version", 1, "facility profile version")
	_ = applicableCmd.MarkFlagRequired("facility")
	rootCmd.AddCommand(applicableCmd)
}
