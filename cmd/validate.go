package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/r2ready/internal/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the question and rule catalogs",
	Long: `Loads the catalog and runs full validation: duplicate IDs, unknown flags
in predicates, parent cycles, rule targets, scoring config weights. Exits
non-zero listing every issue if the catalog is rejected.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		snap, _, err := loadSnapshot(cmd.Context())
		if err != nil {
			var cerr *catalog.ConfigurationError
			if errors.As(err, &cerr) {
				fmt.Fprintf(os.Stderr, "Catalog rejected (%d issues):\n", len(cerr.Issues))
				for _, issue := range cerr.Issues {
					fmt.Fprintf(os.Stderr, "  - %s\n", issue)
				}
			}
			return err
		}

		fmt.Printf("Catalog OK: %d flags, %d questions, %d rules, %d must-pass rules, scoring v%d\n",
			len(snap.Flags), len(snap.Questions), len(snap.Rules), len(snap.MustPassRules), snap.Scoring.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
