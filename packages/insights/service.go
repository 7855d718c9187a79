// Package insights composes the section and product extractors into one
// aggregate per storefront, and fans that process out across a storefront
// and its competitors.
package insights

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/cache"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/discovery"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/scraper"
)

type Options struct {
	MaxParallelExtractors int
	MaxParallelBrands     int
	CompetitorLimit       int
}

type Service struct {
	scraper   *scraper.Scraper
	discovery *discovery.Discovery
	cache     *cache.Cache // optional, may be nil
	opts      Options

	// insightsFn is what the competitor batch runs per site. It defaults
	// to BrandInsights and exists so batch failure handling is testable.
	insightsFn func(ctx context.Context, baseURL string) (*domain.BrandInsights, error)
}

func New(s *scraper.Scraper, d *discovery.Discovery, c *cache.Cache, opts Options) *Service {
	if opts.MaxParallelExtractors <= 0 {
		opts.MaxParallelExtractors = 4
	}
	if opts.MaxParallelBrands <= 0 {
		opts.MaxParallelBrands = 3
	}
	if opts.CompetitorLimit <= 0 {
		opts.CompetitorLimit = discovery.DefaultLimit
	}
	svc := &Service{scraper: s, discovery: d, cache: c, opts: opts}
	svc.insightsFn = svc.BrandInsights
	return svc
}

// BrandInsights assembles the full aggregate for one storefront. Extractors
// run concurrently, each writing only its own field, and each degrading to
// its default on failure. Only a panic inside an extractor surfaces as an
// error here.
func (s *Service) BrandInsights(ctx context.Context, baseURL string) (*domain.BrandInsights, error) {
	if s.cache != nil {
		if hit := s.cache.Get(ctx, baseURL); hit != nil {
			return hit, nil
		}
	}

	slog.Info("Fetching brand insights", "base_url", baseURL)
	out := &domain.BrandInsights{BrandName: baseURL}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxParallelExtractors)
	safeGo(g, "about", func() { out.About = s.scraper.About(gCtx, baseURL) })
	safeGo(g, "policies", func() { out.Policies = s.scraper.Policies(gCtx, baseURL) })
	safeGo(g, "contact", func() { out.ContactDetails = s.scraper.Contact(gCtx, baseURL) })
	safeGo(g, "socials", func() { out.SocialHandles = s.scraper.Socials(gCtx, baseURL) })
	safeGo(g, "faqs", func() { out.FAQs = s.scraper.FAQs(gCtx, baseURL) })
	safeGo(g, "products", func() { out.Products = s.scraper.Products(gCtx, baseURL) })
	safeGo(g, "hero_products", func() { out.HeroProducts = s.scraper.HeroProducts(gCtx, baseURL) })
	safeGo(g, "links", func() { out.ImportantLinks = s.scraper.ImportantLinks(gCtx, baseURL) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, baseURL, out)
	}
	return out, nil
}

// Competitors fetches insights for the queried storefront plus its
// discovered competitors. A site whose extraction fails outright becomes an
// error placeholder in its slot; the batch itself never fails.
func (s *Service) Competitors(ctx context.Context, baseURL string) []domain.BatchEntry {
	sites := append([]string{baseURL}, s.discovery.Competitors(ctx, baseURL, s.opts.CompetitorLimit)...)
	entries := make([]domain.BatchEntry, len(sites))

	// Plain group, not WithContext: one failed site must not cancel its
	// siblings.
	g := new(errgroup.Group)
	g.SetLimit(s.opts.MaxParallelBrands)
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Competitor extraction panicked", "site", site, "panic", r)
					entries[i] = domain.BatchEntry{BrandName: site, Err: fmt.Sprintf("%v", r)}
				}
			}()
			res, err := s.insightsFn(ctx, site)
			if err != nil {
				slog.Error("Competitor extraction failed", "site", site, "error", err)
				entries[i] = domain.BatchEntry{BrandName: site, Err: err.Error()}
				return nil
			}
			entries[i] = domain.BatchEntry{BrandName: site, Insights: res}
			return nil
		})
	}
	_ = g.Wait()
	return entries
}

// safeGo runs an extractor on the group, converting a panic into the
// group's error instead of crashing the process.
func safeGo(g *errgroup.Group, name string, fn func()) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s extraction panicked: %v", name, r)
			}
		}()
		fn()
		return nil
	})
}
