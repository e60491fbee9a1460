package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Manage assessments",
}

var assessmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new assessment for a facility",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		facilityID, _ := cmd.Flags().GetString("facility")
		version, _ := cmd.Flags().GetInt("profile-version")

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := e.Store.CreateAssessment(ctx, facilityID, version)
		if err != nil {
			return err
		}
		fmt.Printf("Created assessment %s (facility %s, profile v%d)\n", a.ID, a.FacilityID, a.ProfileVersion)
		return nil
	},
}

func init() {
	f := assessmentCreateCmd.Flags()
	f.String("facility", "", "facility ID (required)")
	f.Int("profile-version", 1, "facility profile version to assess")
	_ = assessmentCreateCmd.MarkFlagRequired("facility")

	assessmentCmd.AddCommand(assessmentCreateCmd)
	rootCmd.AddCommand(assessmentCmd)
}
