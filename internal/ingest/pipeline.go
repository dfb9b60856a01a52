// Package ingest implements the fact ingestion pipeline: batches of
// export rows are validated, normalized, resolved against the dimension
// tables, and appended to the fact tables.
package ingest

import (
	"context"
	"fmt"

	"github.com/parfumelite/ads-warehouse/internal/database"
	"github.com/parfumelite/ads-warehouse/internal/metrics"
	"github.com/parfumelite/ads-warehouse/internal/models"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
	"go.uber.org/zap"
)

// Fact table names, used for logging and metric labels.
const (
	TablePerformance  = "fact_ads_performance"
	TableDemographics = "fact_ads_demographics"
	TableRegions      = "fact_ads_regions"
)

// RowError records a single failed row with its zero-based position in
// the batch.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result reports the outcome of one batch: how many fact rows were
// inserted, and an itemized error list when any row failed. Errors is
// omitted from the JSON encoding when empty.
type Result struct {
	Processed int        `json:"processed"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Pipeline ingests batches of export rows. Rows are processed
// sequentially and independently: a failed row is recorded and skipped,
// never aborting the batch. Partial success is the expected steady state
// for large imports with a few malformed records.
type Pipeline struct {
	pool    database.Pool
	dims    *warehouse.Dims
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(pool database.Pool, dims *warehouse.Dims, logger *zap.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{pool: pool, dims: dims, logger: logger, metrics: m}
}

// Performance ingests ad performance rows.
func (p *Pipeline) Performance(ctx context.Context, rows []models.PerformanceRow) Result {
	var res Result
	for i, row := range rows {
		if err := p.insertPerformance(ctx, row); err != nil {
			res.Errors = append(res.Errors, RowError{Row: i, Error: err.Error()})
			p.recordRow(TablePerformance, false)
			p.logger.Warn("row rejected",
				zap.String("table", TablePerformance),
				zap.Int("row", i),
				zap.Error(err),
			)
			continue
		}
		res.Processed++
		p.recordRow(TablePerformance, true)
	}
	p.finishBatch(TablePerformance, res)
	return res
}

// Demographics ingests age/gender rows.
func (p *Pipeline) Demographics(ctx context.Context, rows []models.DemographicsRow) Result {
	var res Result
	for i, row := range rows {
		if err := p.insertDemographics(ctx, row); err != nil {
			res.Errors = append(res.Errors, RowError{Row: i, Error: err.Error()})
			p.recordRow(TableDemographics, false)
			p.logger.Warn("row rejected",
				zap.String("table", TableDemographics),
				zap.Int("row", i),
				zap.Error(err),
			)
			continue
		}
		res.Processed++
		p.recordRow(TableDemographics, true)
	}
	p.finishBatch(TableDemographics, res)
	return res
}

// Regions ingests regional rows.
func (p *Pipeline) Regions(ctx context.Context, rows []models.RegionRow) Result {
	var res Result
	for i, row := range rows {
		if err := p.insertRegion(ctx, row); err != nil {
			res.Errors = append(res.Errors, RowError{Row: i, Error: err.Error()})
			p.recordRow(TableRegions, false)
			p.logger.Warn("row rejected",
				zap.String("table", TableRegions),
				zap.Int("row", i),
				zap.Error(err),
			)
			continue
		}
		res.Processed++
		p.recordRow(TableRegions, true)
	}
	p.finishBatch(TableRegions, res)
	return res
}

func (p *Pipeline) insertPerformance(ctx context.Context, row models.PerformanceRow) error {
	dateKey, err := p.dims.Date(ctx, row.Date)
	if err != nil {
		return err
	}
	campaignID, err := p.dims.Campaign(ctx, row.Campaign)
	if err != nil {
		return err
	}

	var costPerResult *float64
	if row.CostPerResult != nil {
		v := row.CostPerResult.Float()
		costPerResult = &v
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO fact_ads_performance (date_key, campaign_id, adset_name, ad_name, indicator, action_key, amount_spent, results, cost_per_result, impressions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		dateKey, campaignID, row.AdSet, row.Ad, row.Indicator, row.ActionKey,
		row.AmountSpent.Float(), row.Results.Count(), costPerResult, row.Impressions.Count())
	if err != nil {
		return fmt.Errorf("insert performance fact: %w", err)
	}
	return nil
}

func (p *Pipeline) insertDemographics(ctx context.Context, row models.DemographicsRow) error {
	dateKey, err := p.dims.Date(ctx, row.Date)
	if err != nil {
		return err
	}
	campaignID, err := p.dims.Campaign(ctx, row.Campaign)
	if err != nil {
		return err
	}
	ageID, err := p.dims.AgeGroup(ctx, row.Age)
	if err != nil {
		return err
	}
	genderID, err := p.dims.Gender(ctx, row.Gender)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO fact_ads_demographics (date_key, campaign_id, action_key, age_id, gender_id, spend, impressions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		dateKey, campaignID, row.ActionKey, ageID, genderID,
		row.Spend.Float(), row.Impressions.Count())
	if err != nil {
		return fmt.Errorf("insert demographics fact: %w", err)
	}
	return nil
}

func (p *Pipeline) insertRegion(ctx context.Context, row models.RegionRow) error {
	dateKey, err := p.dims.Date(ctx, row.Date)
	if err != nil {
		return err
	}
	campaignID, err := p.dims.Campaign(ctx, row.Campaign)
	if err != nil {
		return err
	}
	regionID, err := p.dims.Region(ctx, row.Region)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO fact_ads_regions (date_key, campaign_id, region_id, spend, impressions)
		 VALUES ($1, $2, $3, $4, $5)`,
		dateKey, campaignID, regionID, row.Spend.Float(), row.Impressions.Count())
	if err != nil {
		return fmt.Errorf("insert region fact: %w", err)
	}
	return nil
}

func (p *Pipeline) recordRow(table string, ok bool) {
	if p.metrics != nil {
		p.metrics.RecordRow(table, ok)
	}
}

func (p *Pipeline) finishBatch(table string, res Result) {
	if p.metrics != nil {
		p.metrics.RecordBatch(table)
	}
	p.logger.Info("batch ingested",
		zap.String("table", table),
		zap.Int("processed", res.Processed),
		zap.Int("errors", len(res.Errors)),
	)
}
