package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the ads-warehouse application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Metrics   MetricsConfig
	Report    ReportConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// ReportConfig holds settings for the aggregation query layer.
type ReportConfig struct {
	// CacheTTL is how long cached report responses stay valid.
	CacheTTL time.Duration
}

// RateLimitConfig configures token bucket limits for the HTTP surface.
// Ingestion carries the daily export batches and gets its own budget.
type RateLimitConfig struct {
	Enabled     bool
	IngestRPS   float64
	IngestBurst int
	ReportRPS   float64
	ReportBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:            getEnv("ADS_WAREHOUSE_HTTP_ADDR", ":8080"),
			Env:             getEnv("ADS_WAREHOUSE_ENV", "development"),
			ShutdownTimeout: getDurationEnv("ADS_WAREHOUSE_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("ADS_WAREHOUSE_DB_HOST", "localhost"),
			Port:     getIntEnv("ADS_WAREHOUSE_DB_PORT", 5432),
			User:     getEnv("ADS_WAREHOUSE_DB_USER", "adswarehouse"),
			Password: getEnv("ADS_WAREHOUSE_DB_PASSWORD", "adswarehouse_secret"),
			DBName:   getEnv("ADS_WAREHOUSE_DB_NAME", "adswarehouse"),
			SSLMode:  getEnv("ADS_WAREHOUSE_DB_SSLMODE", "disable"),
			MaxConns: getIntEnv("ADS_WAREHOUSE_DB_MAX_CONNS", 25),
			MinConns: getIntEnv("ADS_WAREHOUSE_DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("ADS_WAREHOUSE_REDIS_ENABLED", true),
			Addr:     getEnv("ADS_WAREHOUSE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADS_WAREHOUSE_REDIS_PASSWORD", ""),
			DB:       getIntEnv("ADS_WAREHOUSE_REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("ADS_WAREHOUSE_LOG_LEVEL", "info"),
			Format: getEnv("ADS_WAREHOUSE_LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolEnv("ADS_WAREHOUSE_METRICS_ENABLED", true),
			Path:    getEnv("ADS_WAREHOUSE_METRICS_PATH", "/metrics"),
		},
		Report: ReportConfig{
			CacheTTL: getDurationEnv("ADS_WAREHOUSE_REPORT_CACHE_TTL", time.Minute),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getBoolEnv("ADS_WAREHOUSE_RATELIMIT_ENABLED", true),
			IngestRPS:   getFloatEnv("ADS_WAREHOUSE_RATELIMIT_INGEST_RPS", 10),
			IngestBurst: getIntEnv("ADS_WAREHOUSE_RATELIMIT_INGEST_BURST", 20),
			ReportRPS:   getFloatEnv("ADS_WAREHOUSE_RATELIMIT_REPORT_RPS", 50),
			ReportBurst: getIntEnv("ADS_WAREHOUSE_RATELIMIT_REPORT_BURST", 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Database.DBName == "" {
		return fmt.Errorf("ADS_WAREHOUSE_DB_NAME must not be empty")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("ADS_WAREHOUSE_DB_PORT out of range: %d", c.Database.Port)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions for reading environment variables

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getFloatEnv(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
