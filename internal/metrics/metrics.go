package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the warehouse. A nil *Metrics
// is safe to pass around; every record method checks the receiver so
// components never need their own nil guards.
type Metrics struct {
	// Ingestion metrics
	IngestBatches *prometheus.CounterVec
	IngestRows    *prometheus.CounterVec

	// Report metrics
	ReportDuration *prometheus.HistogramVec
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		IngestBatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_warehouse_ingest_batches_total",
			Help: "Number of ingestion batches received, by fact table.",
		}, []string{"table"}),
		IngestRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_warehouse_ingest_rows_total",
			Help: "Number of rows processed, by fact table and outcome.",
		}, []string{"table", "status"}),
		ReportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ads_warehouse_report_duration_seconds",
			Help:    "Report query latency, by report name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_warehouse_report_cache_hits_total",
			Help: "Report cache hits, by report name.",
		}, []string{"report"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_warehouse_report_cache_misses_total",
			Help: "Report cache misses, by report name.",
		}, []string{"report"}),
	}
}

// RecordBatch counts one received ingestion batch.
func (m *Metrics) RecordBatch(table string) {
	if m == nil {
		return
	}
	m.IngestBatches.WithLabelValues(table).Inc()
}

// RecordRow counts one processed row with its outcome.
func (m *Metrics) RecordRow(table string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.IngestRows.WithLabelValues(table, status).Inc()
}

// ObserveReport records the latency of one report query.
func (m *Metrics) ObserveReport(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.ReportDuration.WithLabelValues(report).Observe(d.Seconds())
}

// RecordCache counts a cache hit or miss for a report.
func (m *Metrics) RecordCache(report string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.WithLabelValues(report).Inc()
		return
	}
	m.CacheMisses.WithLabelValues(report).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
