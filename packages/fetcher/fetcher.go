// Package fetcher retrieves and parses storefront pages. Every failure mode
// (bad status, timeout, connection error, unparsable body) comes back as an
// error that callers treat as "page absent"; nothing here ever panics or
// aborts an extraction.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/metrics"
)

// Page is a successfully fetched and parsed storefront page.
type Page struct {
	FinalURL string
	Doc      *goquery.Document
	// Language is the ISO 639-3 code detected from the page's title,
	// description and opening text. Diagnostic only.
	Language string
}

type Fetcher struct {
	client     *http.Client
	feedClient *http.Client
	userAgent  string
}

func New(fetchTimeout, feedTimeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client:     &http.Client{Timeout: fetchTimeout},
		feedClient: &http.Client{Timeout: feedTimeout},
		userAgent:  userAgent,
	}
}

// Normalize prepends a scheme when the raw URL has none.
func Normalize(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "http://" + rawURL
	}
	return rawURL
}

// Absolutize resolves href against base. An empty or unresolvable href
// yields "".
func Absolutize(base, href string) string {
	if href == "" {
		return ""
	}
	b, err := url.Parse(Normalize(base))
	if err != nil {
		return ""
	}
	resolved, err := b.Parse(href)
	if err != nil {
		return ""
	}
	return resolved.String()
}

func resolve(baseURL, path string) (string, error) {
	base, err := url.Parse(Normalize(baseURL))
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	full, err := base.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return full.String(), nil
}

// Fetch resolves path against baseURL and returns the parsed page on HTTP
// 200. Any other outcome returns a nil page and the reason.
func (f *Fetcher) Fetch(ctx context.Context, baseURL, path string) (*Page, error) {
	fullURL, err := resolve(baseURL, path)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("request_error").Inc()
		return nil, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("request_error").Inc()
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("network_error").Inc()
		slog.Debug("Page fetch failed", "url", fullURL, "error", err)
		return nil, err
	}
	defer resp.Body.Close()
	metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.PagesFetched.WithLabelValues("bad_status").Inc()
		slog.Debug("Page fetch returned bad status code", "url", fullURL, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("parse_error").Inc()
		slog.Debug("Page parse failed", "url", fullURL, "error", err)
		return nil, err
	}
	metrics.PagesFetched.WithLabelValues("ok").Inc()

	page := &Page{FinalURL: resp.Request.URL.String(), Doc: doc}
	page.Language = detectLanguage(doc)
	if page.Language != "" {
		metrics.PageLanguage.WithLabelValues(page.Language).Inc()
	}
	return page, nil
}

// JSON fetches path resolved against baseURL with the given query parameters
// and decodes a 200 JSON body into v. Uses the longer feed timeout.
func (f *Fetcher) JSON(ctx context.Context, baseURL, path string, query url.Values, v any) error {
	fullURL, err := resolve(baseURL, path)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.feedClient.Do(req)
	if err != nil {
		slog.Debug("Feed fetch failed", "url", fullURL, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Feed fetch returned bad status code", "url", fullURL, "status_code", resp.StatusCode)
		return fmt.Errorf("bad status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		slog.Debug("Feed decode failed", "url", fullURL, "error", err)
		return err
	}
	return nil
}

func detectLanguage(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	description, _ := doc.Find("meta[name='description']").Attr("content")

	words := strings.Fields(doc.Find("body").Text())
	if len(words) > 100 {
		words = words[:100]
	}
	sample := title + " " + strings.TrimSpace(description) + " " + strings.Join(words, " ")
	if strings.TrimSpace(sample) == "" {
		return ""
	}
	info := whatlanggo.Detect(sample)
	return info.Lang.Iso6393()
}
