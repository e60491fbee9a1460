package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/intake"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Normalize a raw intake submission into a facility profile",
	Long: `Reads a raw intake submission (JSON object of field answers), validates
it against the intake flag schema, and stores the normalized facility
profile as a new immutable version.

With --assessment, the assessment is repointed at the new version and a
recompute pass runs immediately.`,
	RunE: runIntake,
}

func init() {
	f := intakeCmd.Flags()
	f.String("facility", "", "facility ID (required)")
	f.Int("version", 1, "profile version to store")
	f.String("file", "", "path to raw intake JSON (default: stdin)")
	f.String("assessment", "", "assessment to repoint and recompute")
	_ = intakeCmd.MarkFlagRequired("facility")
	rootCmd.AddCommand(intakeCmd)
}

func runIntake(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	facilityID, _ := cmd.Flags().GetString("facility")
	version, _ := cmd.Flags().GetInt("version")
	file, _ := cmd.Flags().GetString("file")
	assessmentID, _ := cmd.Flags().GetString("assessment")

	var data []byte
	var err error
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return eris.Wrap(err, "intake: read submission")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "intake: parse submission")
	}

	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	profile, err := intake.Normalize(facilityID, version, raw, e.Snapshot.Flags)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, "Intake rejected:")
			for _, fe := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Reason)
			}
		}
		return err
	}

	if err := e.Store.PutProfile(ctx, profile); err != nil {
		return err
	}
	fmt.Printf("Stored profile %s v%d (%d flags)\n", facilityID, version, len(profile.Flags))

	if assessmentID == "" {
		return nil
	}

	if err := e.Store.SetAssessmentProfileVersion(ctx, assessmentID, version); err != nil {
		return err
	}
	strategy, err := e.Strategy()
	if err != nil {
		return err
	}
	result, err := e.Orch.Recompute(ctx, assessmentID, strategy)
	if err != nil {
		return eris.Wrapf(err, "intake: recompute %s", assessmentID)
	}
	zap.L().Info("intake: assessment repointed",
		zap.String("assessment_id", assessmentID),
		zap.Int("profile_version", version),
	)
	printResult(result)
	return nil
}
