// Package discovery locates storefronts related to a brand: a curated
// table first, then a loose heuristic over the brand's outbound links.
package discovery

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/fetcher"
)

const DefaultLimit = 5

type Discovery struct {
	fetch *fetcher.Fetcher
	// curated maps a queried brand site to a hand-maintained competitor
	// list, returned verbatim when present.
	curated map[string][]string
}

func New(f *fetcher.Fetcher, curated map[string][]string) *Discovery {
	if curated == nil {
		curated = map[string][]string{}
	}
	return &Discovery{fetch: f, curated: curated}
}

// Competitors returns candidate competitor domains for baseURL. A curated
// entry wins outright and is never truncated; otherwise outbound home-page
// links are classified heuristically, up to limit distinct domains.
func (d *Discovery) Competitors(ctx context.Context, baseURL string, limit int) []string {
	if sites, ok := d.curated[baseURL]; ok {
		slog.Debug("Using curated competitor list", "base_url", baseURL, "count", len(sites))
		return sites
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return d.discover(ctx, baseURL, limit)
}

// discover scans outbound absolute links and accepts any non-self domain
// that looks like a Shopify store or simply ends in .com. The .com rule is
// deliberately loose and accepts many false positives.
func (d *Discovery) discover(ctx context.Context, baseURL string, limit int) []string {
	discovered := []string{}
	page, err := d.fetch.Fetch(ctx, baseURL, "")
	if err != nil {
		return discovered
	}

	self := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	self = strings.TrimSuffix(self, "/")
	seen := make(map[string]struct{})

	page.Doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return true
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return true
		}
		host := strings.ToLower(parsed.Host)
		if host == "" || (self != "" && strings.Contains(host, self)) {
			return true
		}
		if !looksLikeStorefront(host) {
			return true
		}
		if _, dup := seen[host]; !dup {
			seen[host] = struct{}{}
			discovered = append(discovered, host)
		}
		return len(discovered) < limit
	})

	slog.Debug("Dynamic competitor discovery finished", "base_url", baseURL, "count", len(discovered))
	return discovered
}

func looksLikeStorefront(host string) bool {
	return strings.Contains(host, "myshopify.com") || strings.HasSuffix(host, ".com")
}
