// Package importer loads the daily CSV exports from disk and feeds them
// through the ingestion pipeline. It tolerates the quirks of exported
// files: UTF-8 byte order marks, shuffled column order, and mixed date
// formats.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parfumelite/ads-warehouse/internal/ingest"
	"github.com/parfumelite/ads-warehouse/internal/models"
	"go.uber.org/zap"
)

// dateLayouts are the formats seen in exports, tried in order. Matches
// normalize to ISO before the rows reach the pipeline.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "01/02/2006"}

// Importer reads export CSV files and ingests them.
type Importer struct {
	pipeline *ingest.Pipeline
	logger   *zap.Logger
}

func New(pipeline *ingest.Pipeline, logger *zap.Logger) *Importer {
	return &Importer{pipeline: pipeline, logger: logger}
}

// record is one CSV row keyed by header name.
type record map[string]string

// Performance imports an ad performance export file.
func (im *Importer) Performance(ctx context.Context, path string) (ingest.Result, error) {
	records, err := readCSV(path)
	if err != nil {
		return ingest.Result{}, err
	}

	rows := make([]models.PerformanceRow, 0, len(records))
	for _, rec := range records {
		row := models.PerformanceRow{
			Campaign:    rec.get("Campaign"),
			Date:        normalizeDate(rec.get("Date")),
			AdSet:       rec.get("AdSet"),
			Ad:          rec.get("Ad"),
			Indicator:   rec.get("Indicator"),
			ActionKey:   rec.get("ActionKey"),
			AmountSpent: rec.number("AmountSpent"),
			Results:     rec.number("Results"),
			Impressions: rec.number("Impressions"),
		}
		if v := rec.get("CostPerResult"); v != "" {
			n := rec.number("CostPerResult")
			row.CostPerResult = &n
		}
		rows = append(rows, row)
	}

	im.logger.Info("importing performance file", zap.String("path", path), zap.Int("rows", len(rows)))
	return im.pipeline.Performance(ctx, rows), nil
}

// Demographics imports an age/gender export file.
func (im *Importer) Demographics(ctx context.Context, path string) (ingest.Result, error) {
	records, err := readCSV(path)
	if err != nil {
		return ingest.Result{}, err
	}

	rows := make([]models.DemographicsRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.DemographicsRow{
			Campaign:    rec.get("Campaign"),
			Date:        normalizeDate(rec.get("Date")),
			ActionKey:   rec.get("ActionKey"),
			Age:         rec.get("Age"),
			Gender:      rec.get("Gender"),
			Spend:       rec.number("Spend"),
			Impressions: rec.number("Impressions"),
		})
	}

	im.logger.Info("importing demographics file", zap.String("path", path), zap.Int("rows", len(rows)))
	return im.pipeline.Demographics(ctx, rows), nil
}

// Regions imports a regional export file.
func (im *Importer) Regions(ctx context.Context, path string) (ingest.Result, error) {
	records, err := readCSV(path)
	if err != nil {
		return ingest.Result{}, err
	}

	rows := make([]models.RegionRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.RegionRow{
			Campaign:    rec.get("Campaign"),
			Date:        normalizeDate(rec.get("Date")),
			Region:      rec.get("Region"),
			Spend:       rec.number("Spend"),
			Impressions: rec.number("Impressions"),
		})
	}

	im.logger.Info("importing regions file", zap.String("path", path), zap.Int("rows", len(rows)))
	return im.pipeline.Regions(ctx, rows), nil
}

func (r record) get(key string) string {
	return strings.TrimSpace(r[key])
}

// number parses a locale-formatted numeric cell through models.Number,
// so "5.676,62" and "5676.62" both work.
func (r record) number(key string) models.Number {
	var n models.Number
	raw := r.get(key)
	_ = n.UnmarshalJSON([]byte(`"` + strings.ReplaceAll(raw, `"`, ``) + `"`))
	return n
}

// normalizeDate converts any supported export date format to ISO. An
// unrecognized value passes through unchanged and is handled downstream
// like any other malformed date.
func normalizeDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// readCSV parses a CSV file into header-keyed records. The first header
// cell is stripped of a UTF-8 BOM when present.
func readCSV(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("importer: read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("importer: read %s: %w", path, err)
		}
		rec := make(record, len(header))
		for i, h := range header {
			if i < len(fields) {
				rec[h] = fields[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
