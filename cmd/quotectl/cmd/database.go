package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/quote.works/internal/migrations"
	"github.com/Simplici0/quote.works/internal/seed"
)

var roundingThreshold float64

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := migrations.Up(database, logger); err != nil {
			return err
		}
		version, err := migrations.Version(database)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), map[string]int64{"version": version})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, then insert missing reference data and settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := migrations.Up(database, logger); err != nil {
			return err
		}
		stats, err := seed.Run(cmd.Context(), database, seed.Config{RoundingThreshold: roundingThreshold})
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))
		return printJSON(cmd.OutOrStdout(), map[string]int{"inserts": stats.Inserts, "updates": stats.Updates})
	},
}

func init() {
	seedCmd.Flags().Float64Var(&roundingThreshold, "rounding-threshold", 0.20, "rounding threshold stored in new settings")
}
