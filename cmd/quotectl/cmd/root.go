// Package cmd provides the quotectl commands.
package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/quote.works/internal/db"
	"github.com/Simplici0/quote.works/internal/logging"
)

var (
	dbPath  string
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "quotectl",
	Short: "Run the translation quote engines from the command line",
	Long: `quotectl prices documents, looks up tax, computes delivery days and
review requirements without a running server. It can also migrate and seed
the quote database.

Examples:
  quotectl price -f item.yaml
  quotectl tax --subtotal 160 --country CA --province AB
  quotectl sla --pages 7 --rules rules.yaml
  quotectl hitl --source fr --target en --confidence 85,72
  quotectl --db ./dev.db migrate`,
	SilenceUsage:      true,
	PersistentPreRunE: initLogger,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultDB := os.Getenv("DB_PATH")
	if defaultDB == "" {
		defaultDB = "./dev.db"
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "sqlite database path (migrate, seed)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(taxCmd)
	rootCmd.AddCommand(slaCmd)
	rootCmd.AddCommand(hitlCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func initLogger(cmd *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.Level = "warn"
	if verbose {
		cfg.Level = "debug"
	}

	l, err := logging.New(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	logger = l
	return nil
}

func openDB() (*sql.DB, error) {
	logger.Debug("opening database", zap.String("path", dbPath))
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return database, nil
}

func readYAML(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
