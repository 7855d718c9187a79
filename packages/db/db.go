// Package db
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/metrics"
)

// ErrNotFound signals an unknown persisted id, as opposed to a transient
// database failure.
var ErrNotFound = errors.New("brand not found")

const schema = `
CREATE TABLE IF NOT EXISTS brand_insights (
	id         BIGSERIAL PRIMARY KEY,
	brand_name TEXT NOT NULL UNIQUE,
	data       JSONB NOT NULL
)`

// Storage persists aggregates as opaque JSON blobs keyed by surrogate id,
// with brand name as the upsert key.
type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

// EnsureSchema creates the insights table on startup.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveBrand upserts the aggregate keyed by brand name.
func (s *Storage) SaveBrand(ctx context.Context, brandName string, insights *domain.BrandInsights) error {
	data, err := json.Marshal(insights)
	if err != nil {
		return fmt.Errorf("failed to marshal insights: %w", err)
	}

	defer observe("save_brand", time.Now())
	_, err = s.pool.Exec(ctx, `
		INSERT INTO brand_insights (brand_name, data) VALUES ($1, $2)
		ON CONFLICT (brand_name) DO UPDATE SET data = EXCLUDED.data`,
		brandName, data)
	if err != nil {
		return fmt.Errorf("failed to upsert brand %q: %w", brandName, err)
	}
	slog.Debug("Persisted brand insights", "brand_name", brandName)
	return nil
}

// ListBrands returns {id, brand_name} rows ordered by id.
func (s *Storage) ListBrands(ctx context.Context) ([]domain.BrandSummary, error) {
	defer observe("list_brands", time.Now())
	rows, err := s.pool.Query(ctx, `SELECT id, brand_name FROM brand_insights ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []domain.BrandSummary{}
	for rows.Next() {
		var b domain.BrandSummary
		if err := rows.Scan(&b.ID, &b.BrandName); err != nil {
			return nil, fmt.Errorf("failed to scan brand row: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// GetBrand returns the stored aggregate blob for id, or ErrNotFound.
func (s *Storage) GetBrand(ctx context.Context, id int64) (json.RawMessage, error) {
	defer observe("get_brand", time.Now())
	var data json.RawMessage
	err := s.pool.QueryRow(ctx, `SELECT data FROM brand_insights WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load brand %d: %w", id, err)
	}
	return data, nil
}

func observe(queryName string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(queryName).Observe(time.Since(start).Seconds())
}
