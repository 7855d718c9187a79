package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/discovery"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/fetcher"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/scraper"
)

func newService(curated map[string][]string) *Service {
	f := fetcher.New(2*time.Second, 2*time.Second, "test-agent")
	return New(scraper.New(f), discovery.New(f, curated), nil, Options{})
}

func TestBrandInsightsFullyShapedForUnreachableSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := newService(nil)
	out, err := svc.BrandInsights(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, out.BrandName)
	assert.Equal(t, scraper.NoAboutInfo, out.About)
	require.Len(t, out.Policies, 4)
	for kind, excerpt := range out.Policies {
		assert.Equal(t, scraper.NotAvailable, excerpt, "policy %s", kind)
	}
	assert.NotNil(t, out.ContactDetails.Emails)
	assert.NotNil(t, out.ContactDetails.PhoneNumbers)
	assert.Len(t, out.SocialHandles, 5)
	assert.NotNil(t, out.FAQs)
	assert.NotNil(t, out.Products)
	assert.NotNil(t, out.HeroProducts)
	assert.NotNil(t, out.ImportantLinks)
	assert.Empty(t, out.FAQs)
	assert.Empty(t, out.Products)
}

func TestBrandInsightsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/products/tee" title="Tee"><img src="/t.jpg"></a>
			<a href="/pages/contact">contact</a>
		</body></html>`))
	}))
	t.Cleanup(srv.Close)

	svc := newService(nil)
	first, err := svc.BrandInsights(context.Background(), srv.URL)
	require.NoError(t, err)
	second, err := svc.BrandInsights(context.Background(), srv.URL)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestCompetitorsBatchKeepsOrderAndConvertsFailures(t *testing.T) {
	curated := map[string][]string{"brand.com": {"good.com", "bad.com", "boom.com"}}
	svc := newService(curated)
	svc.insightsFn = func(ctx context.Context, site string) (*domain.BrandInsights, error) {
		switch site {
		case "bad.com":
			return nil, errors.New("feed payload malformed")
		case "boom.com":
			panic("unexpected nil dereference")
		default:
			return &domain.BrandInsights{BrandName: site}, nil
		}
	}

	entries := svc.Competitors(context.Background(), "brand.com")
	require.Len(t, entries, 4)

	assert.Equal(t, "brand.com", entries[0].Insights.BrandName)
	assert.Empty(t, entries[0].Err)

	assert.Equal(t, "good.com", entries[1].Insights.BrandName)

	assert.Equal(t, "bad.com", entries[2].BrandName)
	assert.Equal(t, "feed payload malformed", entries[2].Err)
	assert.Nil(t, entries[2].Insights)

	assert.Equal(t, "boom.com", entries[3].BrandName)
	assert.Contains(t, entries[3].Err, "unexpected nil dereference")
}

func TestBatchEntryWireShape(t *testing.T) {
	ok := domain.BatchEntry{BrandName: "a.com", Insights: &domain.BrandInsights{BrandName: "a.com"}}
	failed := domain.BatchEntry{BrandName: "b.com", Err: "connection refused"}

	okJSON, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.Contains(t, string(okJSON), `"brand_name":"a.com"`)
	assert.NotContains(t, string(okJSON), `"error"`)

	failedJSON, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"brand_name":"b.com","error":"connection refused"}`, string(failedJSON))
}
