package cli

import (
	"fmt"
	"time"

	"github.com/parfumelite/ads-warehouse/internal/database"
	"github.com/parfumelite/ads-warehouse/internal/datagen"
	"github.com/parfumelite/ads-warehouse/internal/ingest"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedDays      int
	seedCampaigns int
	seedSeed      uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the warehouse with generated development data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedDays <= 0 || seedCampaigns <= 0 {
			return fmt.Errorf("--days and --campaigns must be positive")
		}

		ctx := cmd.Context()

		db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := warehouse.EnsureSchema(ctx, db.Pool); err != nil {
			return err
		}

		end := time.Now().Truncate(24 * time.Hour)
		start := end.AddDate(0, 0, -(seedDays - 1))

		gen := datagen.New(seedSeed, seedCampaigns)
		pipeline := ingest.NewPipeline(db.Pool, warehouse.NewDims(db.Pool), logger, nil)

		logger.Info("seeding warehouse",
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Int("campaigns", seedCampaigns),
		)

		perf := pipeline.Performance(ctx, gen.Performance(start, end))
		demo := pipeline.Demographics(ctx, gen.Demographics(start, end))
		regions := pipeline.Regions(ctx, gen.Regions(start, end))

		logger.Info("seed finished",
			zap.Int("performance_rows", perf.Processed),
			zap.Int("demographics_rows", demo.Processed),
			zap.Int("region_rows", regions.Processed),
			zap.Int("errors", len(perf.Errors)+len(demo.Errors)+len(regions.Errors)),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "number of trailing days to generate")
	seedCmd.Flags().IntVar(&seedCampaigns, "campaigns", 12, "number of campaigns to generate")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 1, "random seed for reproducible data")
}
