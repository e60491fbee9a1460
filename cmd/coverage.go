package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/r2ready/internal/coverage"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report requirement coverage of the question catalog",
	Long: `Maps every certification requirement (CR1-CR10 and appendices A-G) to
the catalog questions that cover it, flags uncovered requirements, and
lists questions that require evidence but reference none.

Formats: table (default), json, csv, xlsx. xlsx requires --output.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")

		snap, _, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		report := coverage.Build(snap.Questions)

		switch format {
		case "xlsx":
			if outputPath == "" {
				return eris.New("coverage: --output is required for xlsx")
			}
			if err := coverage.WriteXLSX(outputPath, report); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", outputPath)
			return nil
		case "json", "csv":
			w := os.Stdout
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return eris.Wrapf(err, "coverage: create %s", outputPath)
				}
				defer f.Close() //nolint:errcheck
				w = f
			}
			if format == "json" {
				return coverage.WriteJSON(w, report)
			}
			return coverage.WriteCSV(w, report)
		case "table":
			printCoverageTable(report)
			return nil
		default:
			return eris.Errorf("coverage: unsupported format %q", format)
		}
	},
}

func printCoverageTable(r *coverage.Report) {
	fmt.Printf("%-12s %-8s %-6s %s\n", "Requirement", "Covered", "Count", "Questions")
	fmt.Println(strings.Repeat("-", 70))
	for _, e := range r.Entries {
		detail := strings.Join(e.QuestionIDs, ", ")
		if e.ProposedAdd != "" {
			detail = e.ProposedAdd
		}
		fmt.Printf("%-12s %-8v %-6d %s\n", e.Requirement, e.Covered, e.Count, detail)
	}
	if len(r.MissingEvidence) > 0 {
		fmt.Printf("\nMissing evidence references (%d):\n", len(r.MissingEvidence))
		for _, m := range r.MissingEvidence {
			fmt.Printf("  %s [%s]\n", m.QuestionID, strings.Join(m.Tags, ", "))
		}
	}
	if len(r.Gaps) > 0 {
		fmt.Printf("\n%d uncovered requirements: %s\n", len(r.Gaps), strings.Join(r.Gaps, ", "))
	}
}

func init() {
	f := coverageCmd.Flags()
	f.String("format", "table", "output format: table, json, csv, or xlsx")
	f.String("output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(coverageCmd)
}
