package cli

import (
	"fmt"

	"github.com/parfumelite/ads-warehouse/internal/database"
	"github.com/parfumelite/ads-warehouse/internal/importer"
	"github.com/parfumelite/ads-warehouse/internal/ingest"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	performanceFile  string
	demographicsFile string
	regionsFile      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import daily export CSV files into the warehouse",
	Long: `Import reads exported CSV files and loads them as fact rows. Any
combination of the three feeds can be given; rows that fail are reported
and skipped without aborting the file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if performanceFile == "" && demographicsFile == "" && regionsFile == "" {
			return fmt.Errorf("nothing to import: give --performance, --demographics, or --regions")
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

		pipeline := ingest.NewPipeline(db.Pool, warehouse.NewDims(db.Pool), logger, nil)
		im := importer.New(pipeline, logger)

		report := func(feed string, res ingest.Result, err error) error {
			if err != nil {
				return err
			}
			logger.Info("import finished",
				zap.String("feed", feed),
				zap.Int("processed", res.Processed),
				zap.Int("errors", len(res.Errors)),
			)
			for _, rowErr := range res.Errors {
				logger.Warn("rejected row",
					zap.String("feed", feed),
					zap.Int("row", rowErr.Row),
					zap.String("error", rowErr.Error),
				)
			}
			return nil
		}

		if performanceFile != "" {
			res, err := im.Performance(ctx, performanceFile)
			if err := report("performance", res, err); err != nil {
				return err
			}
		}
		if demographicsFile != "" {
			res, err := im.Demographics(ctx, demographicsFile)
			if err := report("demographics", res, err); err != nil {
				return err
			}
		}
		if regionsFile != "" {
			res, err := im.Regions(ctx, regionsFile)
			if err := report("regions", res, err); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&performanceFile, "performance", "", "path to the performance (Auto) CSV")
	importCmd.Flags().StringVar(&demographicsFile, "demographics", "", "path to the age/gender CSV")
	importCmd.Flags().StringVar(&regionsFile, "regions", "", "path to the region CSV")
}
