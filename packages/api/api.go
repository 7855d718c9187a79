// Package api implements the HTTP surface over the extraction pipeline and
// the persisted-brand store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/db"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
)

// InsightsService is the extraction pipeline as the API consumes it.
type InsightsService interface {
	BrandInsights(ctx context.Context, baseURL string) (*domain.BrandInsights, error)
	Competitors(ctx context.Context, baseURL string) []domain.BatchEntry
}

// BrandStore is the persistence collaborator.
type BrandStore interface {
	SaveBrand(ctx context.Context, brandName string, insights *domain.BrandInsights) error
	ListBrands(ctx context.Context) ([]domain.BrandSummary, error)
	GetBrand(ctx context.Context, id int64) (json.RawMessage, error)
}

type Handler struct {
	service InsightsService
	store   BrandStore
}

func NewHandler(service InsightsService, store BrandStore) *Handler {
	return &Handler{service: service, store: store}
}

// SetupRouter wires all routes onto a fresh gin engine.
func SetupRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/fetch-insights", h.FetchInsights)
	router.GET("/fetch-competitors", h.FetchCompetitors)
	router.GET("/brands", h.ListBrands)
	router.GET("/brand/:id", h.BrandDetail)
	return router
}

// FetchInsights handles GET /fetch-insights?website_url=<url>.
func (h *Handler) FetchInsights(c *gin.Context) {
	websiteURL := c.Query("website_url")
	if websiteURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "website_url query parameter is required"})
		return
	}

	data, err := h.service.BrandInsights(c.Request.Context(), websiteURL)
	if err != nil {
		slog.Error("Failed to fetch insights", "website_url", websiteURL, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Could not fetch insights"})
		return
	}

	if err := h.store.SaveBrand(c.Request.Context(), data.BrandName, data); err != nil {
		// The aggregate is still good; persistence is best-effort here.
		slog.Error("Failed to persist brand insights", "brand_name", data.BrandName, "error", err)
	}
	c.JSON(http.StatusOK, data)
}

// FetchCompetitors handles GET /fetch-competitors?website_url=<url>.
func (h *Handler) FetchCompetitors(c *gin.Context) {
	websiteURL := c.Query("website_url")
	if websiteURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "website_url query parameter is required"})
		return
	}

	results := h.service.Competitors(c.Request.Context(), websiteURL)
	if len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No competitor data"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// ListBrands handles GET /brands.
func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.store.ListBrands(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list brands", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list brands"})
		return
	}
	c.JSON(http.StatusOK, brands)
}

// BrandDetail handles GET /brand/:id.
func (h *Handler) BrandDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid brand ID"})
		return
	}

	data, err := h.store.GetBrand(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brand not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to load brand", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load brand"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
