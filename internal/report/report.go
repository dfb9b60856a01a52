// Package report implements the aggregation query layer: date-key-bounded
// grouped-sum queries over the fact and dimension tables, period-over-
// period comparison, and in-memory reshaping for channel and product
// breakdowns.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/parfumelite/ads-warehouse/internal/classify"
	"github.com/parfumelite/ads-warehouse/internal/database"
	"github.com/parfumelite/ads-warehouse/internal/metrics"
	"go.uber.org/zap"
)

// DefaultWindowDays is the trailing window applied when a request carries
// no explicit date range.
const DefaultWindowDays = 30

// Per-report default limits.
const (
	DefaultLimitCampaigns = 3
	DefaultLimitProducts  = 5
	DefaultLimitRegions   = 10
)

// Params are the shared query parameters for every report.
type Params struct {
	Start   time.Time
	End     time.Time
	Limit   int
	Compare bool
}

// withDefaults fills missing params: an absent range becomes the trailing
// DefaultWindowDays ending today, and a non-positive limit becomes the
// report's default.
func (p Params) withDefaults(now time.Time, defaultLimit int) Params {
	if p.Start.IsZero() || p.End.IsZero() {
		end := now.Truncate(24 * time.Hour)
		p.End = end
		p.Start = end.AddDate(0, 0, -DefaultWindowDays)
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	return p
}

// DateKey converts a time to its YYYYMMDD integer key.
func DateKey(t time.Time) int64 {
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
}

// Totals are summed KPIs over a window, with derived ratios. The derived
// ratios are 0 when their denominator is 0.
type Totals struct {
	Spend         float64 `json:"spend"`
	Results       int64   `json:"results"`
	Impressions   int64   `json:"impressions"`
	CostPerResult float64 `json:"costPerResult"`
	CPM           float64 `json:"cpm"`
}

func (t *Totals) derive() {
	if t.Results > 0 {
		t.CostPerResult = t.Spend / float64(t.Results)
	}
	if t.Impressions > 0 {
		t.CPM = t.Spend * 1000 / float64(t.Impressions)
	}
}

// GrowthRates are period-over-period growth percentages.
type GrowthRates struct {
	Spend       float64 `json:"spend"`
	Results     float64 `json:"results"`
	Impressions float64 `json:"impressions"`
}

// CampaignSpend is one row of the summary's top-campaign list.
type CampaignSpend struct {
	Campaign string  `json:"campaign"`
	Spend    float64 `json:"spend"`
}

// Comparison carries the previous window's totals and growth rates.
type Comparison struct {
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
	Totals    Totals      `json:"totals"`
	Growth    GrowthRates `json:"growth"`
}

// Summary is the top-level KPI report.
type Summary struct {
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	Totals       Totals          `json:"totals"`
	TopCampaigns []CampaignSpend `json:"topCampaigns"`
	Previous     *Comparison     `json:"previous,omitempty"`
}

// DailyPoint is one day of the daily trend.
type DailyPoint struct {
	DateKey     int64   `json:"dateKey"`
	Spend       float64 `json:"spend"`
	Results     int64   `json:"results"`
	Impressions int64   `json:"impressions"`
}

// ObjectiveStat is one row of the objective breakdown.
type ObjectiveStat struct {
	Objective   string  `json:"objective"`
	Spend       float64 `json:"spend"`
	Results     int64   `json:"results"`
	Impressions int64   `json:"impressions"`
}

// ChannelStat is one row of the channel breakdown.
type ChannelStat struct {
	Channel     string  `json:"channel"`
	Spend       float64 `json:"spend"`
	Results     int64   `json:"results"`
	Impressions int64   `json:"impressions"`
}

// DemographicStat is one age x gender cell.
type DemographicStat struct {
	AgeRange    string  `json:"ageRange"`
	Gender      string  `json:"gender"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
}

// RegionStat is one row of the regional breakdown.
type RegionStat struct {
	Region      string  `json:"region"`
	RegionType  string  `json:"regionType"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
}

// ProductSeries is one product line's daily spend series, aligned on the
// breakdown's shared date axis.
type ProductSeries struct {
	Product string    `json:"product"`
	Total   float64   `json:"total"`
	Spend   []float64 `json:"spend"`
}

// ProductBreakdown is the per-product daily report: the sorted distinct
// date keys present in the window, and one zero-filled series per
// selected product.
type ProductBreakdown struct {
	Dates  []int64         `json:"dates"`
	Series []ProductSeries `json:"series"`
}

// Service is the aggregation query layer. Reads may run concurrently with
// ingestion; they see whatever the store's default isolation shows.
type Service struct {
	pool    database.Pool
	cache   *Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a report service. cache may be nil.
func NewService(pool database.Pool, cache *Cache, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{pool: pool, cache: cache, logger: logger, metrics: m, now: time.Now}
}

func (s *Service) observe(report string, started time.Time) {
	s.metrics.ObserveReport(report, time.Since(started))
}

func cacheKey(report string, p Params) string {
	return fmt.Sprintf("report:%s:%d:%d:%d:%t", report, DateKey(p.Start), DateKey(p.End), p.Limit, p.Compare)
}

// Summary returns summed KPIs for the window, the top campaigns by
// spend, and, when Compare is set, the previous period with growth rates.
func (s *Service) Summary(ctx context.Context, p Params) (*Summary, error) {
	defer s.observe("summary", s.now())
	p = p.withDefaults(s.now(), DefaultLimitCampaigns)

	var out Summary
	key := cacheKey("summary", p)
	if s.cache.get(ctx, "summary", key, &out) {
		return &out, nil
	}

	totals, err := s.totals(ctx, p.Start, p.End)
	if err != nil {
		return nil, err
	}

	top, err := s.topCampaigns(ctx, p)
	if err != nil {
		return nil, err
	}

	out = Summary{
		StartDate:    p.Start.Format("2006-01-02"),
		EndDate:      p.End.Format("2006-01-02"),
		Totals:       totals,
		TopCampaigns: top,
	}

	if p.Compare {
		prevStart, prevEnd := PreviousPeriod(p.Start, p.End)
		prev, err := s.totals(ctx, prevStart, prevEnd)
		if err != nil {
			return nil, err
		}
		out.Previous = &Comparison{
			StartDate: prevStart.Format("2006-01-02"),
			EndDate:   prevEnd.Format("2006-01-02"),
			Totals:    prev,
			Growth: GrowthRates{
				Spend:       Growth(totals.Spend, prev.Spend),
				Results:     Growth(float64(totals.Results), float64(prev.Results)),
				Impressions: Growth(float64(totals.Impressions), float64(prev.Impressions)),
			},
		}
	}

	s.cache.set(ctx, key, &out)
	return &out, nil
}

func (s *Service) totals(ctx context.Context, start, end time.Time) (Totals, error) {
	var t Totals
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_spent), 0), COALESCE(SUM(results), 0), COALESCE(SUM(impressions), 0)
		 FROM fact_ads_performance
		 WHERE date_key BETWEEN $1 AND $2`,
		DateKey(start), DateKey(end)).Scan(&t.Spend, &t.Results, &t.Impressions)
	if err != nil {
		return Totals{}, fmt.Errorf("report: summary totals: %w", err)
	}
	t.derive()
	return t, nil
}

func (s *Service) topCampaigns(ctx context.Context, p Params) ([]CampaignSpend, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.campaign_name, COALESCE(SUM(f.amount_spent), 0) AS spend
		 FROM fact_ads_performance f
		 JOIN dim_campaign c ON c.campaign_id = f.campaign_id
		 WHERE f.date_key BETWEEN $1 AND $2
		 GROUP BY c.campaign_name
		 ORDER BY spend DESC
		 LIMIT $3`,
		DateKey(p.Start), DateKey(p.End), p.Limit)
	if err != nil {
		return nil, fmt.Errorf("report: top campaigns: %w", err)
	}
	defer rows.Close()

	var out []CampaignSpend
	for rows.Next() {
		var c CampaignSpend
		if err := rows.Scan(&c.Campaign, &c.Spend); err != nil {
			return nil, fmt.Errorf("report: top campaigns scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Daily returns the per-day trend over the window, ordered by date key
// ascending.
func (s *Service) Daily(ctx context.Context, p Params) ([]DailyPoint, error) {
	defer s.observe("daily", s.now())
	p = p.withDefaults(s.now(), 0)

	var out []DailyPoint
	key := cacheKey("daily", p)
	if s.cache.get(ctx, "daily", key, &out) {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT date_key, COALESCE(SUM(amount_spent), 0), COALESCE(SUM(results), 0), COALESCE(SUM(impressions), 0)
		 FROM fact_ads_performance
		 WHERE date_key BETWEEN $1 AND $2
		 GROUP BY date_key
		 ORDER BY date_key`,
		DateKey(p.Start), DateKey(p.End))
	if err != nil {
		return nil, fmt.Errorf("report: daily trend: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DailyPoint
		if err := rows.Scan(&d.DateKey, &d.Spend, &d.Results, &d.Impressions); err != nil {
			return nil, fmt.Errorf("report: daily trend scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: daily trend rows: %w", err)
	}

	s.cache.set(ctx, key, out)
	return out, nil
}

// Objectives returns the breakdown by campaign objective.
func (s *Service) Objectives(ctx context.Context, p Params) ([]ObjectiveStat, error) {
	defer s.observe("objectives", s.now())
	p = p.withDefaults(s.now(), 0)

	var out []ObjectiveStat
	key := cacheKey("objectives", p)
	if s.cache.get(ctx, "objectives", key, &out) {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT c.objective, COALESCE(SUM(f.amount_spent), 0) AS spend, COALESCE(SUM(f.results), 0), COALESCE(SUM(f.impressions), 0)
		 FROM fact_ads_performance f
		 JOIN dim_campaign c ON c.campaign_id = f.campaign_id
		 WHERE f.date_key BETWEEN $1 AND $2
		 GROUP BY c.objective
		 ORDER BY spend DESC`,
		DateKey(p.Start), DateKey(p.End))
	if err != nil {
		return nil, fmt.Errorf("report: objectives: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o ObjectiveStat
		if err := rows.Scan(&o.Objective, &o.Spend, &o.Results, &o.Impressions); err != nil {
			return nil, fmt.Errorf("report: objectives scan: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: objectives rows: %w", err)
	}

	s.cache.set(ctx, key, out)
	return out, nil
}

// Channels fetches per-campaign sums and groups them in memory through
// the channel classifier. All three channels are always present in the
// result, in fixed Facebook, Instagram, Other order, so the dashboard's
// series stay aligned.
func (s *Service) Channels(ctx context.Context, p Params) ([]ChannelStat, error) {
	defer s.observe("channels", s.now())
	p = p.withDefaults(s.now(), 0)

	var out []ChannelStat
	key := cacheKey("channels", p)
	if s.cache.get(ctx, "channels", key, &out) {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT c.campaign_name, COALESCE(SUM(f.amount_spent), 0), COALESCE(SUM(f.results), 0), COALESCE(SUM(f.impressions), 0)
		 FROM fact_ads_performance f
		 JOIN dim_campaign c ON c.campaign_id = f.campaign_id
		 WHERE f.date_key BETWEEN $1 AND $2
		 GROUP BY c.campaign_name`,
		DateKey(p.Start), DateKey(p.End))
	if err != nil {
		return nil, fmt.Errorf("report: channels: %w", err)
	}
	defer rows.Close()

	byChannel := map[string]*ChannelStat{}
	for rows.Next() {
		var name string
		var spend float64
		var results, impressions int64
		if err := rows.Scan(&name, &spend, &results, &impressions); err != nil {
			return nil, fmt.Errorf("report: channels scan: %w", err)
		}
		ch := classify.Channel(name)
		st, ok := byChannel[ch]
		if !ok {
			st = &ChannelStat{Channel: ch}
			byChannel[ch] = st
		}
		st.Spend += spend
		st.Results += results
		st.Impressions += impressions
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: channels rows: %w", err)
	}

	for _, ch := range []string{classify.ChannelFacebook, classify.ChannelInstagram, classify.ChannelOther} {
		if st, ok := byChannel[ch]; ok {
			out = append(out, *st)
		} else {
			out = append(out, ChannelStat{Channel: ch})
		}
	}

	s.cache.set(ctx, key, out)
	return out, nil
}

// Demographics returns the age x gender breakdown.
func (s *Service) Demographics(ctx context.Context, p Params) ([]DemographicStat, error) {
	defer s.observe("demographics", s.now())
	p = p.withDefaults(s.now(), 0)

	var out []DemographicStat
	key := cacheKey("demographics", p)
	if s.cache.get(ctx, "demographics", key, &out) {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT a.age_range, g.gender, COALESCE(SUM(f.spend), 0), COALESCE(SUM(f.impressions), 0)
		 FROM fact_ads_demographics f
		 JOIN dim_age_group a ON a.age_id = f.age_id
		 JOIN dim_gender g ON g.gender_id = f.gender_id
		 WHERE f.date_key BETWEEN $1 AND $2
		 GROUP BY a.age_range, g.gender
		 ORDER BY a.age_range, g.gender`,
		DateKey(p.Start), DateKey(p.End))
	if err != nil {
		return nil, fmt.Errorf("report: demographics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DemographicStat
		if err := rows.Scan(&d.AgeRange, &d.Gender, &d.Spend, &d.Impressions); err != nil {
			return nil, fmt.Errorf("report: demographics scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: demographics rows: %w", err)
	}

	s.cache.set(ctx, key, out)
	return out, nil
}

// Regions returns the top-N regions by spend.
func (s *Service) Regions(ctx context.Context, p Params) ([]RegionStat, error) {
	defer s.observe("regions", s.now())
	p = p.withDefaults(s.now(), DefaultLimitRegions)

	var out []RegionStat
	key := cacheKey("regions", p)
	if s.cache.get(ctx, "regions", key, &out) {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT r.region_name, r.region_type, COALESCE(SUM(f.spend), 0) AS spend, COALESCE(SUM(f.impressions), 0)
		 FROM fact_ads_regions f
		 JOIN dim_region r ON r.region_id = f.region_id
		 WHERE f.date_key BETWEEN $1 AND $2
		 GROUP BY r.region_name, r.region_type
		 ORDER BY spend DESC
		 LIMIT $3`,
		DateKey(p.Start), DateKey(p.End), p.Limit)
	if err != nil {
		return nil, fmt.Errorf("report: regions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r RegionStat
		if err := rows.Scan(&r.Region, &r.RegionType, &r.Spend, &r.Impressions); err != nil {
			return nil, fmt.Errorf("report: regions scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: regions rows: %w", err)
	}

	s.cache.set(ctx, key, out)
	return out, nil
}

// Products fetches ad-level daily spend, classifies each ad name into a
// product line, selects the top-N products by total spend, and reshapes
// the result into per-product series aligned on the sorted distinct
// dates of the window. Dates with no activity for a product are filled
// with 0, never omitted.
func (s *Service) Products(ctx context.Context, p Params) (*ProductBreakdown, error) {
	defer s.observe("products", s.now())
	p = p.withDefaults(s.now(), DefaultLimitProducts)

	var out ProductBreakdown
	key := cacheKey("products", p)
	if s.cache.get(ctx, "products", key, &out) {
		return &out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT f.date_key, COALESCE(f.ad_name, ''), COALESCE(SUM(f.amount_spent), 0)
		 FROM fact_ads_performance f
		 WHERE f.date_key BETWEEN $1 AND $2
		 GROUP BY f.date_key, f.ad_name`,
		DateKey(p.Start), DateKey(p.End))
	if err != nil {
		return nil, fmt.Errorf("report: products: %w", err)
	}
	defer rows.Close()

	spendByProductDate := map[string]map[int64]float64{}
	totalByProduct := map[string]float64{}
	dateSet := map[int64]struct{}{}

	for rows.Next() {
		var dateKey int64
		var adName string
		var spend float64
		if err := rows.Scan(&dateKey, &adName, &spend); err != nil {
			return nil, fmt.Errorf("report: products scan: %w", err)
		}
		product := classify.ProductLine(adName)
		if spendByProductDate[product] == nil {
			spendByProductDate[product] = map[int64]float64{}
		}
		spendByProductDate[product][dateKey] += spend
		totalByProduct[product] += spend
		dateSet[dateKey] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report: products rows: %w", err)
	}

	dates := make([]int64, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	products := make([]string, 0, len(totalByProduct))
	for name := range totalByProduct {
		products = append(products, name)
	}
	sort.Slice(products, func(i, j int) bool {
		if totalByProduct[products[i]] == totalByProduct[products[j]] {
			return products[i] < products[j]
		}
		return totalByProduct[products[i]] > totalByProduct[products[j]]
	})
	if len(products) > p.Limit {
		products = products[:p.Limit]
	}

	out.Dates = dates
	for _, name := range products {
		series := ProductSeries{
			Product: name,
			Total:   totalByProduct[name],
			Spend:   make([]float64, len(dates)),
		}
		for i, d := range dates {
			series.Spend[i] = spendByProductDate[name][d]
		}
		out.Series = append(out.Series, series)
	}

	s.cache.set(ctx, key, &out)
	return &out, nil
}
