// Package httpserver registers the HTTP API: batch ingestion endpoints
// for the three export feeds and the report endpoints backing the
// dashboard.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/parfumelite/ads-warehouse/internal/config"
	"github.com/parfumelite/ads-warehouse/internal/database"
	"github.com/parfumelite/ads-warehouse/internal/ingest"
	"github.com/parfumelite/ads-warehouse/internal/metrics"
	"github.com/parfumelite/ads-warehouse/internal/middleware"
	"github.com/parfumelite/ads-warehouse/internal/models"
	"github.com/parfumelite/ads-warehouse/internal/report"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
	"go.uber.org/zap"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB      *database.PostgresDB
	Redis   *database.RedisDB
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Server wraps the ingestion pipeline and the report service.
type Server struct {
	pipeline *ingest.Pipeline
	reports  *report.Service
	db       *database.PostgresDB
	logger   *zap.Logger
	config   *config.Config
}

// NewServer constructs an http.Handler with all routes registered and
// the middleware chain applied.
func NewServer(deps *Dependencies) http.Handler {
	dims := warehouse.NewDims(deps.DB.Pool)
	pipeline := ingest.NewPipeline(deps.DB.Pool, dims, deps.Logger, deps.Metrics)

	var cache *report.Cache
	if deps.Redis != nil {
		cache = report.NewCache(deps.Redis.Client, deps.Config.Report.CacheTTL, deps.Logger, deps.Metrics)
	}
	reports := report.NewService(deps.DB.Pool, cache, deps.Logger, deps.Metrics)

	s := &Server{
		pipeline: pipeline,
		reports:  reports,
		db:       deps.DB,
		logger:   deps.Logger,
		config:   deps.Config,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Ingestion
	mux.HandleFunc("/api/ingest/performance", s.handleIngestPerformance)
	mux.HandleFunc("/api/ingest/demographics", s.handleIngestDemographics)
	mux.HandleFunc("/api/ingest/regions", s.handleIngestRegions)

	// Reports
	mux.HandleFunc("/api/report/summary", s.handleReportSummary)
	mux.HandleFunc("/api/report/daily", s.handleReportDaily)
	mux.HandleFunc("/api/report/objectives", s.handleReportObjectives)
	mux.HandleFunc("/api/report/channels", s.handleReportChannels)
	mux.HandleFunc("/api/report/demographics", s.handleReportDemographics)
	mux.HandleFunc("/api/report/regions", s.handleReportRegions)
	mux.HandleFunc("/api/report/products", s.handleReportProducts)

	var handler http.Handler = mux
	handler = middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger).Handler(handler)
	handler = middleware.NewCORSMiddleware().Handler(handler)
	handler = middleware.NewLoggingMiddleware(deps.Logger).Handler(handler)
	handler = middleware.NewRecoveryMiddleware(deps.Logger).Handler(handler)
	return handler
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := s.db.Health(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		s.logger.Warn("health check failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// ---- Ingestion ----

func (s *Server) handleIngestPerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var rows []models.PerformanceRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		s.errorResponse(w, "request body must be a JSON array", http.StatusBadRequest)
		return
	}

	s.jsonResponse(w, s.pipeline.Performance(r.Context(), rows))
}

func (s *Server) handleIngestDemographics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var rows []models.DemographicsRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		s.errorResponse(w, "request body must be a JSON array", http.StatusBadRequest)
		return
	}

	s.jsonResponse(w, s.pipeline.Demographics(r.Context(), rows))
}

func (s *Server) handleIngestRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var rows []models.RegionRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		s.errorResponse(w, "request body must be a JSON array", http.StatusBadRequest)
		return
	}

	s.jsonResponse(w, s.pipeline.Regions(r.Context(), rows))
}

// ---- Reports ----

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r)
	if !ok {
		return
	}

	sum, err := s.reports.Summary(r.Context(), p)
	if err != nil {
		s.logger.Error("summary report failed", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, sum)
}

func (s *Server) handleReportDaily(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r)
	if !ok {
		return
	}

	points, err := s.reports.Daily(r.Context(), p)
	if err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, points)
}

func (s *Server) handleReportObjectives(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r)
	if !ok {
		return
	}

	stats, err := s.reports.Objectives(r.Context(), p)
	if err != nil {
		s.logger.Error("objectives report failed", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}

func (s *Server) handleReportChannels(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r)
	if !ok {
		return
	}

	stats, err := s.reports.Channels(r.Context(), p)
	if err != nil {
		s.logger.Error("channels report failed", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}

func (s *Server) handleReportDemographics(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r)
	if !ok {
		return
	}

	stats, err := s.reports.Demographics(r.Context(), p)
	if err != nil {
		s.logger.Error("demographics report failed", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}

func (s *Server) handleReportRegions(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r)
	if !ok {
		return
	}

	stats, err := s.reports.Regions(r.Context(), p)
	if err != nil {
		s.logger.Error("regions report failed", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}

func (s *Server) handleReportProducts(w http.ResponseWriter, r *http.Request) {
	p, ok := s.reportParams(w, r)
	if !ok {
		return
	}

	breakdown, err := s.reports.Products(r.Context(), p)
	if err != nil {
		s.logger.Error("products report failed", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, breakdown)
}

// reportParams parses the shared query parameters. startDate and endDate
// come as ISO dates; when either is absent the range is left unset and
// the report falls back to the trailing default window. limit and
// compare are optional. A false second return means a 400 was already
// written.
func (s *Server) reportParams(w http.ResponseWriter, r *http.Request) (report.Params, bool) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return report.Params{}, false
	}

	q := r.URL.Query()
	var p report.Params

	startStr, endStr := q.Get("startDate"), q.Get("endDate")
	if startStr != "" && endStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			s.errorResponse(w, "invalid startDate: "+startStr, http.StatusBadRequest)
			return report.Params{}, false
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			s.errorResponse(w, "invalid endDate: "+endStr, http.StatusBadRequest)
			return report.Params{}, false
		}
		if end.Before(start) {
			s.errorResponse(w, "endDate before startDate", http.StatusBadRequest)
			return report.Params{}, false
		}
		p.Start, p.End = start, end
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			s.errorResponse(w, "invalid limit: "+limitStr, http.StatusBadRequest)
			return report.Params{}, false
		}
		p.Limit = limit
	}

	p.Compare = q.Get("compare") == "true"
	return p, true
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.OK(data))
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(models.Fail(message))
}
