package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parfumelite/ads-warehouse/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	debug, err := NewLogger("debug", "json")
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zapcore.DebugLevel))

	warn, err := NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, warn.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, warn.Core().Enabled(zapcore.WarnLevel))

	// Unknown levels fall back to info.
	fallback, err := NewLogger("noise", "console")
	require.NoError(t, err)
	assert.False(t, fallback.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, fallback.Core().Enabled(zapcore.InfoLevel))
}

func TestLoggingMiddlewareAssignsRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})

	handler := NewLoggingMiddleware(zap.NewNop()).Handler(next)

	req := httptest.NewRequest(http.MethodGet, "/api/report/daily", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestLoggingMiddlewareKeepsCallerRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})

	handler := NewLoggingMiddleware(zap.NewNop()).Handler(next)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "caller-supplied", seen)
}

func TestRecoveryMiddlewareConvertsPanic(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	handler := NewRecoveryMiddleware(zap.NewNop()).Handler(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/summary", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"data":{"error":"internal server error"}}`, rec.Body.String())
}

func TestRateLimitSeparateBudgets(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:     true,
		IngestRPS:   1,
		IngestBurst: 1,
		ReportRPS:   1,
		ReportBurst: 2,
	}
	handler := NewRateLimitMiddleware(cfg, zap.NewNop()).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(path string) int {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		return rec.Code
	}

	// The ingest bucket empties after one request; the report bucket
	// still has its own tokens.
	assert.Equal(t, http.StatusOK, send("/api/ingest/performance"))
	assert.Equal(t, http.StatusTooManyRequests, send("/api/ingest/performance"))
	assert.Equal(t, http.StatusOK, send("/api/report/daily"))
}

func TestRateLimitDisabled(t *testing.T) {
	handler := NewRateLimitMiddleware(config.RateLimitConfig{}, zap.NewNop()).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report/daily", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
