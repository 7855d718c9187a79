package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/db"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
)

type stubService struct {
	insights    *domain.BrandInsights
	insightsErr error
	batch       []domain.BatchEntry
}

func (s *stubService) BrandInsights(_ context.Context, baseURL string) (*domain.BrandInsights, error) {
	if s.insightsErr != nil {
		return nil, s.insightsErr
	}
	return s.insights, nil
}

func (s *stubService) Competitors(_ context.Context, baseURL string) []domain.BatchEntry {
	return s.batch
}

type stubStore struct {
	saved   map[string]*domain.BrandInsights
	brands  []domain.BrandSummary
	blobs   map[int64]json.RawMessage
	listErr error
	saveErr error
}

func newStubStore() *stubStore {
	return &stubStore{
		saved: map[string]*domain.BrandInsights{},
		blobs: map[int64]json.RawMessage{},
	}
}

func (s *stubStore) SaveBrand(_ context.Context, brandName string, insights *domain.BrandInsights) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved[brandName] = insights
	return nil
}

func (s *stubStore) ListBrands(_ context.Context) ([]domain.BrandSummary, error) {
	return s.brands, s.listErr
}

func (s *stubStore) GetBrand(_ context.Context, id int64) (json.RawMessage, error) {
	blob, ok := s.blobs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return blob, nil
}

func doRequest(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFetchInsightsRequiresWebsiteURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(NewHandler(&stubService{}, newStubStore()))

	rec := doRequest(t, router, "/fetch-insights")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFetchInsightsReturnsAndPersistsAggregate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newStubStore()
	service := &stubService{insights: &domain.BrandInsights{BrandName: "brand.com", About: "hello"}}
	router := SetupRouter(NewHandler(service, store))

	rec := doRequest(t, router, "/fetch-insights?website_url=brand.com")
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.BrandInsights
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "brand.com", got.BrandName)
	assert.Equal(t, "hello", got.About)
	assert.Contains(t, store.saved, "brand.com")
}

func TestFetchInsightsHardFailureIsNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &stubService{insightsErr: errors.New("extraction panicked")}
	router := SetupRouter(NewHandler(service, newStubStore()))

	rec := doRequest(t, router, "/fetch-insights?website_url=brand.com")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFetchInsightsSaveFailureStillReturnsAggregate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newStubStore()
	store.saveErr = errors.New("db down")
	service := &stubService{insights: &domain.BrandInsights{BrandName: "brand.com"}}
	router := SetupRouter(NewHandler(service, store))

	rec := doRequest(t, router, "/fetch-insights?website_url=brand.com")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFetchCompetitorsIncludesErrorPlaceholders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &stubService{batch: []domain.BatchEntry{
		{BrandName: "brand.com", Insights: &domain.BrandInsights{BrandName: "brand.com"}},
		{BrandName: "down.com", Err: "connection refused"},
	}}
	router := SetupRouter(NewHandler(service, newStubStore()))

	rec := doRequest(t, router, "/fetch-competitors?website_url=brand.com")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "brand.com", got[0]["brand_name"])
	assert.NotContains(t, got[0], "error")
	assert.Equal(t, "down.com", got[1]["brand_name"])
	assert.Equal(t, "connection refused", got[1]["error"])
}

func TestListBrands(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newStubStore()
	store.brands = []domain.BrandSummary{{ID: 1, BrandName: "brand.com"}}
	router := SetupRouter(NewHandler(&stubService{}, store))

	rec := doRequest(t, router, "/brands")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"brand_name":"brand.com"}]`, rec.Body.String())
}

func TestBrandDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newStubStore()
	store.blobs[7] = json.RawMessage(`{"brand_name":"brand.com","about":"hi"}`)
	router := SetupRouter(NewHandler(&stubService{}, store))

	rec := doRequest(t, router, "/brand/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"brand_name":"brand.com","about":"hi"}`, rec.Body.String())

	rec = doRequest(t, router, "/brand/99")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, "/brand/not-a-number")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
