package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "r2ready",
	Short: "Recycling facility certification readiness engine",
	Long:  "Maps facility intake answers to applicable certification questions, scores weighted compliance, evaluates must-pass gates, tracks maturity, and classifies readiness.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
