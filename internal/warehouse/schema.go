package warehouse

import (
	"context"
	"fmt"

	"github.com/parfumelite/ads-warehouse/internal/database"
)

// schemaStatements creates the star schema: five dimension tables and
// three append-only fact tables. Dimension natural keys carry UNIQUE
// constraints, which are the sole arbiter of concurrent get-or-create
// races.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS dim_date (
		date_key     BIGINT PRIMARY KEY,
		full_date    TEXT NOT NULL,
		year         INT NOT NULL,
		quarter      INT NOT NULL,
		month        INT NOT NULL,
		month_name   TEXT NOT NULL,
		week_of_year INT NOT NULL,
		day_of_month INT NOT NULL,
		day_of_week  INT NOT NULL,
		day_name     TEXT NOT NULL,
		is_weekend   BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS dim_campaign (
		campaign_id   BIGSERIAL PRIMARY KEY,
		campaign_name TEXT NOT NULL UNIQUE,
		objective     TEXT NOT NULL,
		platform      TEXT NOT NULL DEFAULT 'Facebook'
	)`,
	`CREATE TABLE IF NOT EXISTS dim_age_group (
		age_id    BIGSERIAL PRIMARY KEY,
		age_range TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS dim_gender (
		gender_id BIGSERIAL PRIMARY KEY,
		gender    TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS dim_region (
		region_id   BIGSERIAL PRIMARY KEY,
		region_name TEXT NOT NULL UNIQUE,
		region_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fact_ads_performance (
		performance_id  BIGSERIAL PRIMARY KEY,
		date_key        BIGINT REFERENCES dim_date(date_key),
		campaign_id     BIGINT REFERENCES dim_campaign(campaign_id),
		adset_name      TEXT,
		ad_name         TEXT,
		indicator       TEXT,
		action_key      TEXT,
		amount_spent    DOUBLE PRECISION NOT NULL DEFAULT 0,
		results         BIGINT NOT NULL DEFAULT 0,
		cost_per_result DOUBLE PRECISION,
		impressions     BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS fact_ads_demographics (
		demographic_id BIGSERIAL PRIMARY KEY,
		date_key       BIGINT REFERENCES dim_date(date_key),
		campaign_id    BIGINT REFERENCES dim_campaign(campaign_id),
		action_key     TEXT,
		age_id         BIGINT REFERENCES dim_age_group(age_id),
		gender_id      BIGINT REFERENCES dim_gender(gender_id),
		spend          DOUBLE PRECISION NOT NULL DEFAULT 0,
		impressions    BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS fact_ads_regions (
		region_fact_id BIGSERIAL PRIMARY KEY,
		date_key       BIGINT REFERENCES dim_date(date_key),
		campaign_id    BIGINT REFERENCES dim_campaign(campaign_id),
		region_id      BIGINT REFERENCES dim_region(region_id),
		spend          DOUBLE PRECISION NOT NULL DEFAULT 0,
		impressions    BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_performance_date ON fact_ads_performance (date_key)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_demographics_date ON fact_ads_demographics (date_key)`,
	`CREATE INDEX IF NOT EXISTS idx_fact_regions_date ON fact_ads_regions (date_key)`,
}

// SeedAgeGroups are the canonical age ranges present in Facebook exports,
// pre-seeded so the first group can serve as the default for rows missing
// an age. The dimension remains extensible: unseen labels are created
// lazily.
var SeedAgeGroups = []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65+", "Unknown"}

// SeedGenders are the pre-seeded gender labels.
var SeedGenders = []string{"female", "male", "unknown"}

// EnsureSchema creates the warehouse tables if they do not exist and
// seeds the age group and gender dimensions. It issues only
// single-statement executes.
func EnsureSchema(ctx context.Context, pool database.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("warehouse: create schema: %w", err)
		}
	}

	for _, age := range SeedAgeGroups {
		_, err := pool.Exec(ctx,
			`INSERT INTO dim_age_group (age_range) VALUES ($1) ON CONFLICT (age_range) DO NOTHING`, age)
		if err != nil {
			return fmt.Errorf("warehouse: seed age group %q: %w", age, err)
		}
	}

	for _, g := range SeedGenders {
		_, err := pool.Exec(ctx,
			`INSERT INTO dim_gender (gender) VALUES ($1) ON CONFLICT (gender) DO NOTHING`, g)
		if err != nil {
			return fmt.Errorf("warehouse: seed gender %q: %w", g, err)
		}
	}

	return nil
}
