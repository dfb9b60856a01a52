package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parfumelite/ads-warehouse/internal/config"
	"github.com/parfumelite/ads-warehouse/internal/ingest"
	"github.com/parfumelite/ads-warehouse/internal/report"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (pgxmock.PgxPoolIface, *Server) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	logger := zap.NewNop()
	s := &Server{
		pipeline: ingest.NewPipeline(mock, warehouse.NewDims(mock), logger, nil),
		reports:  report.NewService(mock, nil, logger, nil),
		logger:   logger,
		config:   &config.Config{},
	}
	return mock, s
}

func decodeEnvelope(t *testing.T, body string) (bool, map[string]any) {
	t.Helper()
	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env.Success, env.Data
}

func TestIngestPerformanceEndpoint(t *testing.T) {
	mock, s := newTestServer(t)

	mock.ExpectQuery("SELECT date_key FROM dim_date").
		WithArgs(int64(20251014)).
		WillReturnRows(pgxmock.NewRows([]string{"date_key"}).AddRow(int64(20251014)))
	mock.ExpectQuery("SELECT campaign_id FROM dim_campaign").
		WithArgs("Impression FB Perfume").
		WillReturnRows(pgxmock.NewRows([]string{"campaign_id"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO fact_ads_performance").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	body := `[{"Campaign":"Impression FB Perfume","Date":"2025-10-14","AmountSpent":"5.676,62","Results":5,"Impressions":1000}]`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/performance", strings.NewReader(body))
	rec := httptest.NewRecorder()

	s.handleIngestPerformance(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	success, data := decodeEnvelope(t, rec.Body.String())
	assert.True(t, success)
	assert.Equal(t, float64(1), data["processed"])
	assert.NotContains(t, data, "errors")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestRejectsNonArrayBody(t *testing.T) {
	_, s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/performance", strings.NewReader(`{"Campaign":"x"}`))
	rec := httptest.NewRecorder()

	s.handleIngestPerformance(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	success, data := decodeEnvelope(t, rec.Body.String())
	assert.False(t, success)
	assert.Contains(t, data["error"], "JSON array")
}

func TestIngestRejectsGet(t *testing.T) {
	_, s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ingest/regions", nil)
	rec := httptest.NewRecorder()

	s.handleIngestRegions(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReportParamsValidation(t *testing.T) {
	_, s := newTestServer(t)

	cases := []struct {
		name  string
		query string
	}{
		{"malformed start", "startDate=14-10-2025&endDate=2025-10-20"},
		{"inverted range", "startDate=2025-10-20&endDate=2025-10-01"},
		{"bad limit", "startDate=2025-10-01&endDate=2025-10-20&limit=abc"},
		{"negative limit", "startDate=2025-10-01&endDate=2025-10-20&limit=-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/report/daily?"+tc.query, nil)
			rec := httptest.NewRecorder()

			_, ok := s.reportParams(rec, req)
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestReportParamsUnpairedDateFallsBackToDefault(t *testing.T) {
	_, s := newTestServer(t)

	// A lone startDate or endDate is treated as absent: the range stays
	// unset and the report applies its trailing default window.
	for _, query := range []string{"startDate=2025-10-01", "endDate=2025-10-20"} {
		req := httptest.NewRequest(http.MethodGet, "/api/report/daily?"+query, nil)
		rec := httptest.NewRecorder()

		p, ok := s.reportParams(rec, req)
		require.True(t, ok, query)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, p.Start.IsZero())
		assert.True(t, p.End.IsZero())
	}
}

func TestReportParamsParsed(t *testing.T) {
	_, s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/report/summary?startDate=2025-10-01&endDate=2025-10-20&limit=7&compare=true", nil)
	rec := httptest.NewRecorder()

	p, ok := s.reportParams(rec, req)
	require.True(t, ok)
	assert.Equal(t, "2025-10-01", p.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-10-20", p.End.Format("2006-01-02"))
	assert.Equal(t, 7, p.Limit)
	assert.True(t, p.Compare)
}

func TestDailyReportEndpoint(t *testing.T) {
	mock, s := newTestServer(t)

	mock.ExpectQuery("SELECT date_key, COALESCE").
		WithArgs(int64(20251014), int64(20251015)).
		WillReturnRows(pgxmock.NewRows([]string{"date_key", "spend", "results", "impressions"}).
			AddRow(int64(20251014), 150.0, int64(12), int64(3000)))

	req := httptest.NewRequest(http.MethodGet,
		"/api/report/daily?startDate=2025-10-14&endDate=2025-10-15", nil)
	rec := httptest.NewRecorder()

	s.handleReportDaily(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
