package main

import (
	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result <assessment-id>",
	Short: "Show the cached score result for an assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		r, err := e.Store.GetScoreResult(ctx, args[0])
		if err != nil {
			return err
		}
		printResult(r)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultCmd)
}
