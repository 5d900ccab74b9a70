package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/product-scraper/internal/api"
	"github.com/user/product-scraper/internal/config"
	"github.com/user/product-scraper/internal/extractor"
	"github.com/user/product-scraper/internal/monitoring"
	"github.com/user/product-scraper/internal/storage"
	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}
	if cfg.PostgresURL == "" {
		logger.Fatal("POSTGRES_URL is required")
	}

	metrics := monitoring.NewMetrics()

	// Initialize Storage Layer
	pgStore, err := storage.NewPostgresStore(context.Background(), cfg.PostgresURL, metrics, logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pgStore.Close()
	redisStore := storage.NewRedisStore(cfg.RedisAddr)

	// Initialize Browser Session + Extractor
	session := extractor.NewSession(cfg.ElementWaitDuration(), cfg.NavTimeoutDuration(), logger)
	defer session.Close()
	ex := extractor.New(session, cfg.CatalogBaseURL, metrics, logger)

	// Initialize API Server
	server := api.NewServer(cfg, ex, pgStore, redisStore, metrics, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
