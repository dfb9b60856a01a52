package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/parfumelite/ads-warehouse/internal/ingest"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSVStripsBOMAndShuffledColumns(t *testing.T) {
	path := writeFile(t, "\ufeffDate,Campaign,AmountSpent\n2025-10-14,Impression FB Perfume,\"5.676,62\"\n")

	records, err := readCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-10-14", records[0].get("Date"))
	assert.Equal(t, "Impression FB Perfume", records[0].get("Campaign"))
	assert.Equal(t, 5676.62, records[0].number("AmountSpent").Float())
}

func TestNormalizeDateFormats(t *testing.T) {
	assert.Equal(t, "2025-10-14", normalizeDate("2025-10-14"))
	assert.Equal(t, "2025-10-14", normalizeDate("14/10/2025"))
	// Day-first wins for ambiguous slash dates.
	assert.Equal(t, "2025-02-01", normalizeDate("01/02/2025"))
	// Unrecognized values pass through for downstream handling.
	assert.Equal(t, "not a date", normalizeDate("not a date"))
	assert.Equal(t, "", normalizeDate(""))
}

func TestPerformanceImportFeedsPipeline(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	pipeline := ingest.NewPipeline(mock, warehouse.NewDims(mock), zap.NewNop(), nil)
	im := New(pipeline, zap.NewNop())

	path := writeFile(t,
		"Campaign,Date,AmountSpent,Results,Impressions\n"+
			"Impression FB Perfume,14/10/2025,\"1.000,50\",5,2000\n")

	mock.ExpectQuery("SELECT date_key FROM dim_date").
		WithArgs(int64(20251014)).
		WillReturnRows(pgxmock.NewRows([]string{"date_key"}).AddRow(int64(20251014)))
	mock.ExpectQuery("SELECT campaign_id FROM dim_campaign").
		WithArgs("Impression FB Perfume").
		WillReturnRows(pgxmock.NewRows([]string{"campaign_id"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO fact_ads_performance").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	res, err := im.Performance(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	assert.Empty(t, res.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportMissingFile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	im := New(ingest.NewPipeline(mock, warehouse.NewDims(mock), zap.NewNop(), nil), zap.NewNop())
	_, err = im.Regions(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
