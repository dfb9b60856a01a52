// Package cli implements the command-line interface for ads-warehouse.
package cli

import (
	"fmt"
	"os"

	"github.com/parfumelite/ads-warehouse/internal/config"
	"github.com/parfumelite/ads-warehouse/internal/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "ads-warehouse",
		Short: "Dimensional warehouse for daily ad export data",
		Long: `ads-warehouse ingests daily Facebook and Instagram ad exports into a
star-schema PostgreSQL warehouse and serves the aggregation API backing
the marketing dashboard.

Configuration comes from ADS_WAREHOUSE_* environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger = setupLogger(cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
}

// setupLogger builds the process logger. Development runs get the
// console encoder regardless of the configured format.
func setupLogger(cfg *config.Config) *zap.Logger {
	format := cfg.Log.Format
	if cfg.IsDevelopment() {
		format = "console"
	}

	l, err := middleware.NewLogger(cfg.Log.Level, format)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	return l
}
