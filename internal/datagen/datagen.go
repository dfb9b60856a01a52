// Package datagen generates realistic export batches for seeding a
// development warehouse. Campaign and ad names are composed from the
// token vocabulary the classifiers recognize, so seeded data exercises
// every breakdown.
package datagen

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/parfumelite/ads-warehouse/internal/classify"
	"github.com/parfumelite/ads-warehouse/internal/models"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
)

var (
	objectiveTokens = []string{"Impression", "Visit", "Mess"}
	channelTokens   = []string{"FB", "IG", "Facebook", "Instagram", "TikTok"}
	adFormats       = []string{"Video", "Story", "Feed", "Carousel", "Reels"}
	regionNames     = []string{
		"Ho Chi Minh City", "Ha Noi City", "Da Nang", "Can Tho",
		"Hai Phong", "Binh Duong", "Dong Nai", "Khanh Hoa",
	}
)

// Generator produces fake export rows.
type Generator struct {
	faker     *gofakeit.Faker
	campaigns []string
}

// New creates a generator with a fixed seed, so repeated seeding of the
// same environment produces the same data.
func New(seed uint64, campaignCount int) *Generator {
	g := &Generator{faker: gofakeit.New(seed)}
	for i := 0; i < campaignCount; i++ {
		g.campaigns = append(g.campaigns, g.campaignName())
	}
	return g
}

// campaignName composes a name carrying an objective and channel token,
// the convention the classifiers depend on.
func (g *Generator) campaignName() string {
	objective := objectiveTokens[g.faker.Number(0, len(objectiveTokens)-1)]
	channel := channelTokens[g.faker.Number(0, len(channelTokens)-1)]
	return fmt.Sprintf("%s %s %s %d", objective, channel, g.faker.ProductName(), g.faker.Number(1, 99))
}

func (g *Generator) adName() string {
	products := classify.Products()
	product := products[g.faker.Number(0, len(products)-1)]
	format := adFormats[g.faker.Number(0, len(adFormats)-1)]
	return fmt.Sprintf("%s %s %d", product, format, g.faker.Number(1, 20))
}

func (g *Generator) campaign() string {
	return g.campaigns[g.faker.Number(0, len(g.campaigns)-1)]
}

// Performance generates one performance row per campaign for each day in
// [start, end].
func (g *Generator) Performance(start, end time.Time) []models.PerformanceRow {
	var rows []models.PerformanceRow
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		for _, campaign := range g.campaigns {
			spend := g.faker.Price(50, 5000)
			results := g.faker.Number(1, 200)
			rows = append(rows, models.PerformanceRow{
				Campaign:    campaign,
				Date:        date,
				AdSet:       fmt.Sprintf("AdSet %d", g.faker.Number(1, 5)),
				Ad:          g.adName(),
				Indicator:   "daily",
				ActionKey:   "onsite_conversion",
				AmountSpent: models.Number(spend),
				Results:     models.Number(results),
				Impressions: models.Number(g.faker.Number(1000, 100000)),
			})
		}
	}
	return rows
}

// Demographics generates age/gender rows for each day in [start, end].
func (g *Generator) Demographics(start, end time.Time) []models.DemographicsRow {
	genders := warehouse.SeedGenders
	var rows []models.DemographicsRow
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		for _, campaign := range g.campaigns {
			age := warehouse.SeedAgeGroups[g.faker.Number(0, len(warehouse.SeedAgeGroups)-1)]
			gender := genders[g.faker.Number(0, len(genders)-1)]
			rows = append(rows, models.DemographicsRow{
				Campaign:    campaign,
				Date:        date,
				Age:         age,
				Gender:      gender,
				Spend:       models.Number(g.faker.Price(10, 1000)),
				Impressions: models.Number(g.faker.Number(500, 20000)),
			})
		}
	}
	return rows
}

// Regions generates regional rows for each day in [start, end].
func (g *Generator) Regions(start, end time.Time) []models.RegionRow {
	var rows []models.RegionRow
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")
		for _, campaign := range g.campaigns {
			region := regionNames[g.faker.Number(0, len(regionNames)-1)]
			rows = append(rows, models.RegionRow{
				Campaign:    campaign,
				Date:        date,
				Region:      region,
				Spend:       models.Number(g.faker.Price(10, 1000)),
				Impressions: models.Number(g.faker.Number(500, 20000)),
			})
		}
	}
	return rows
}
