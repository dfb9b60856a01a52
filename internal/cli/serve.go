package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parfumelite/ads-warehouse/internal/database"
	"github.com/parfumelite/ads-warehouse/internal/httpserver"
	"github.com/parfumelite/ads-warehouse/internal/metrics"
	"github.com/parfumelite/ads-warehouse/internal/warehouse"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the warehouse HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger.Info("starting ads-warehouse",
			zap.String("env", cfg.Server.Env),
			zap.String("addr", cfg.Server.Addr),
		)

		db, err := database.NewPostgresDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := warehouse.EnsureSchema(ctx, db.Pool); err != nil {
			return err
		}

		var redisDB *database.RedisDB
		if cfg.Redis.Enabled {
			redisDB, err = database.NewRedisDB(ctx, cfg.Redis, logger)
			if err != nil {
				logger.Warn("Redis not available, report caching disabled", zap.Error(err))
				redisDB = nil
			} else {
				defer redisDB.Close()
			}
		}

		var m *metrics.Metrics
		if cfg.Metrics.Enabled {
			m = metrics.New()
		}

		handler := httpserver.NewServer(&httpserver.Dependencies{
			DB:      db,
			Redis:   redisDB,
			Config:  cfg,
			Logger:  logger,
			Metrics: m,
		})

		srv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("server failed", zap.Error(err))
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}

		logger.Info("server stopped")
		return nil
	},
}
