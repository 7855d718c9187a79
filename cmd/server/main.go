// Package main
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/api"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/cache"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/config"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/db"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/discovery"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/fetcher"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/insights"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/metrics"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/scraper"
)

const shutdownGrace = 10 * time.Second

func setupLogger(cfg config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logDir := filepath.Dir(cfg.LogFile)
	if err := os.MkdirAll(logDir, 0750); err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error(
			"Failed to create log directory", "path", logDir, "error", err,
		)
	}

	logRotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}

	multiWriter := io.MultiWriter(os.Stdout, logRotator)

	handler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
		Level: level,
	}).WithAttrs([]slog.Attr{slog.String("service", "insights-server")})

	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("FATAL: Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("--- Starting Shopify Insights Server ---")

	go metrics.ExposeMetrics(cfg.MetricsAddr)

	storage, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer storage.Close()
	if err := storage.EnsureSchema(ctx); err != nil {
		slog.Error("Failed to apply database schema", "error", err)
		os.Exit(1)
	}

	var insightsCache *cache.Cache
	if cfg.RedisAddr != "" {
		insightsCache = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		defer insightsCache.Close()
		slog.Info("Aggregate cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	competitorMap, err := cfg.CompetitorMap()
	if err != nil {
		slog.Error("Failed to load competitor map", "error", err)
		os.Exit(1)
	}

	fetch := fetcher.New(cfg.FetchTimeout, cfg.FeedTimeout, cfg.UserAgent)
	service := insights.New(
		scraper.New(fetch),
		discovery.New(fetch, competitorMap),
		insightsCache,
		insights.Options{
			MaxParallelExtractors: cfg.MaxParallelExtractors,
			MaxParallelBrands:     cfg.MaxParallelBrands,
			CompetitorLimit:       cfg.CompetitorLimit,
		},
	)

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(api.NewHandler(service, storage))
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutdown signal received. Exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
}
