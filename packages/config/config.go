// Package config
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL string
	ListenAddr  string
	MetricsAddr string

	FetchTimeout time.Duration
	FeedTimeout  time.Duration
	UserAgent    string

	MaxParallelExtractors int
	MaxParallelBrands     int
	CompetitorLimit       int
	CompetitorMapFile     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	LogFile  string
	LogLevel string
}

func Load() (Config, error) {
	cfg := Config{}

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("missing required environment variable: DATABASE_URL")
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8000")
	cfg.MetricsAddr = getEnv("METRICS_ADDR", ":9090")

	var err error
	cfg.FetchTimeout, err = time.ParseDuration(getEnv("FETCH_TIMEOUT", "12s"))
	if err != nil {
		slog.Warn("Invalid FETCH_TIMEOUT", "value", getEnv("FETCH_TIMEOUT", "12s"), "error", err)
		cfg.FetchTimeout = 12 * time.Second
	}
	cfg.FeedTimeout, _ = time.ParseDuration(getEnv("FEED_TIMEOUT", "15s"))
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = 15 * time.Second
	}
	cfg.UserAgent = getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	cfg.MaxParallelExtractors, _ = strconv.Atoi(getEnv("MAX_PARALLEL_EXTRACTORS", "4"))
	cfg.MaxParallelBrands, _ = strconv.Atoi(getEnv("MAX_PARALLEL_BRANDS", "3"))
	cfg.CompetitorLimit, _ = strconv.Atoi(getEnv("COMPETITOR_LIMIT", "5"))
	cfg.CompetitorMapFile = getEnv("COMPETITOR_MAP_FILE", "")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, _ = strconv.Atoi(getEnv("REDIS_DB", "0"))
	cfg.CacheTTL, _ = time.ParseDuration(getEnv("CACHE_TTL", "15m"))

	cfg.LogFile = getEnv("LOG_FILE", "logs/server.log")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg, nil
}

// CompetitorMap loads the curated competitor table. The table is a plain JSON
// object mapping a brand site to its competitor domains. When no file is
// configured a small built-in table is used.
func (c Config) CompetitorMap() (map[string][]string, error) {
	if c.CompetitorMapFile == "" {
		return map[string][]string{
			"memy.co.in": {"hairoriginals.com", "thelabelelement.com"},
		}, nil
	}
	raw, err := os.ReadFile(c.CompetitorMapFile)
	if err != nil {
		return nil, fmt.Errorf("reading competitor map %q: %w", c.CompetitorMapFile, err)
	}
	table := make(map[string][]string)
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parsing competitor map %q: %w", c.CompetitorMapFile, err)
	}
	return table, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
