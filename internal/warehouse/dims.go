package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/parfumelite/ads-warehouse/internal/classify"
	"github.com/parfumelite/ads-warehouse/internal/database"
	"github.com/parfumelite/ads-warehouse/internal/normalize"
)

// DefaultGender is substituted when a demographics row carries no gender.
const DefaultGender = "unknown"

// Dims provides get-or-create resolution for every dimension. Resolvers
// are idempotent on the natural key: a hit returns the existing surrogate
// key, a miss derives the computed attributes once and inserts. Nothing
// is ever updated. Concurrent creators racing on the same natural key are
// arbitrated by the store's uniqueness constraint; the loser's insert
// error surfaces to the caller as a recoverable per-row error.
type Dims struct {
	pool database.Pool
}

// NewDims creates a dimension resolver backed by the given pool.
func NewDims(pool database.Pool) *Dims {
	return &Dims{pool: pool}
}

// Campaign resolves a campaign name to its surrogate key, creating the
// dimension row on first sight. Objective and platform are derived from
// the name at creation and frozen. An empty name resolves to nil.
func (d *Dims) Campaign(ctx context.Context, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var id int64
	err := d.pool.QueryRow(ctx,
		`SELECT campaign_id FROM dim_campaign WHERE campaign_name = $1`, name).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dims: lookup campaign %q: %w", name, err)
	}

	err = d.pool.QueryRow(ctx,
		`INSERT INTO dim_campaign (campaign_name, objective, platform) VALUES ($1, $2, $3) RETURNING campaign_id`,
		name, classify.Objective(name), classify.Platform(name)).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("dims: create campaign %q: %w", name, err)
	}
	return &id, nil
}

// Date resolves an ISO date string to its YYYYMMDD date key, creating the
// dim_date row with derived calendar attributes on first sight. An empty
// date resolves to nil. A string that yields a key but not a valid
// calendar date is stored with zero-valued attributes.
func (d *Dims) Date(ctx context.Context, iso string) (*int64, error) {
	key := normalize.DateKey(iso)
	if key == nil {
		return nil, nil
	}

	var existing int64
	err := d.pool.QueryRow(ctx,
		`SELECT date_key FROM dim_date WHERE date_key = $1`, *key).Scan(&existing)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dims: lookup date %d: %w", *key, err)
	}

	attrs, ok := calendarAttributes(strings.TrimSpace(iso))
	if !ok {
		attrs.FullDate = strings.TrimSpace(iso)
	}

	_, err = d.pool.Exec(ctx,
		`INSERT INTO dim_date (date_key, full_date, year, quarter, month, month_name, week_of_year, day_of_month, day_of_week, day_name, is_weekend)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		*key, attrs.FullDate, attrs.Year, attrs.Quarter, attrs.Month, attrs.MonthName,
		attrs.WeekOfYear, attrs.DayOfMonth, attrs.DayOfWeek, attrs.DayName, attrs.IsWeekend)
	if err != nil {
		return nil, fmt.Errorf("dims: create date %d: %w", *key, err)
	}
	return key, nil
}

// AgeGroup resolves an age-range label, creating it when unseen. A
// missing label falls back to the first seeded age group.
func (d *Dims) AgeGroup(ctx context.Context, label string) (*int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = SeedAgeGroups[0]
	}

	var id int64
	err := d.pool.QueryRow(ctx,
		`SELECT age_id FROM dim_age_group WHERE age_range = $1`, label).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dims: lookup age group %q: %w", label, err)
	}

	err = d.pool.QueryRow(ctx,
		`INSERT INTO dim_age_group (age_range) VALUES ($1) RETURNING age_id`, label).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("dims: create age group %q: %w", label, err)
	}
	return &id, nil
}

// Gender resolves a gender label, lower-casing it before lookup and
// insert. A missing label falls back to DefaultGender.
func (d *Dims) Gender(ctx context.Context, label string) (*int64, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		label = DefaultGender
	}

	var id int64
	err := d.pool.QueryRow(ctx,
		`SELECT gender_id FROM dim_gender WHERE gender = $1`, label).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dims: lookup gender %q: %w", label, err)
	}

	err = d.pool.QueryRow(ctx,
		`INSERT INTO dim_gender (gender) VALUES ($1) RETURNING gender_id`, label).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("dims: create gender %q: %w", label, err)
	}
	return &id, nil
}

// Region resolves a region name, deriving region_type at creation: "City"
// when the name contains "City", "Province" otherwise. An empty name
// resolves to nil.
func (d *Dims) Region(ctx context.Context, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var id int64
	err := d.pool.QueryRow(ctx,
		`SELECT region_id FROM dim_region WHERE region_name = $1`, name).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("dims: lookup region %q: %w", name, err)
	}

	regionType := "Province"
	if strings.Contains(name, "City") {
		regionType = "City"
	}

	err = d.pool.QueryRow(ctx,
		`INSERT INTO dim_region (region_name, region_type) VALUES ($1, $2) RETURNING region_id`,
		name, regionType).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("dims: create region %q: %w", name, err)
	}
	return &id, nil
}
