package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/r2ready/internal/model"
)

var maturityCmd = &cobra.Command{
	Use:   "maturity <assessment-id>",
	Short: "Show the maturity score history for an assessment",
	Long: `Prints the append-only maturity history, oldest first, with
per-dimension deltas between consecutive records.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		latestOnly, _ := cmd.Flags().GetBool("latest")

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if latestOnly {
			m, err := e.Store.LatestMaturityScore(ctx, args[0])
			if err != nil {
				return err
			}
			printMaturity(*m, nil)
			return nil
		}

		history, err := e.Store.ListMaturityScores(ctx, args[0])
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Println("No maturity records.")
			return nil
		}

		for i, m := range history {
			var prev *model.MaturityScore
			if i > 0 {
				prev = &history[i-1]
			}
			printMaturity(m, prev)
			fmt.Println()
		}
		return nil
	},
}

func printMaturity(m model.MaturityScore, prev *model.MaturityScore) {
	fmt.Printf("%s  overall %.1f%%\n", m.ComputedAt.Format("2006-01-02 15:04:05"), m.Overall)
	dims := make([]string, 0, len(m.DimensionScores))
	for d := range m.DimensionScores {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	delta := m.Delta(prev)
	for _, d := range dims {
		if prev != nil {
			fmt.Printf("  %-30s %6.1f%% (%+.1f)\n", d, m.DimensionScores[d], delta[d])
		} else {
			fmt.Printf("  %-30s %6.1f%%\n", d, m.DimensionScores[d])
		}
	}
}

func init() {
	maturityCmd.Flags().Bool("latest", false, "show only the latest record")
	rootCmd.AddCommand(maturityCmd)
}
