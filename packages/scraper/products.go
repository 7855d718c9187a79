package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/fetcher"
)

const (
	feedPath       = "products.json"
	feedPageSize   = "250"
	catalogPath    = "collections/all"
	heroProductCap = 20
)

type productsFeed struct {
	Products []feedProduct `json:"products"`
}

type feedProduct struct {
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Images []struct {
		Src string `json:"src"`
	} `json:"images"`
	Variants []struct {
		Price json.RawMessage `json:"price"`
	} `json:"variants"`
}

// Products returns the catalog. The structured feed is tried first; the
// HTML catalog page is scraped only when the feed yields nothing. The two
// strategies are never merged.
func (s *Scraper) Products(ctx context.Context, baseURL string) []domain.Product {
	if items := s.productsFromFeed(ctx, baseURL); len(items) > 0 {
		recordExtraction("products", true)
		return items
	}
	cards := s.scrapeProductCards(ctx, baseURL, catalogPath, 0)
	recordExtraction("products", len(cards) > 0)
	out := make([]domain.Product, 0, len(cards))
	for _, c := range cards {
		out = append(out, domain.Product{Title: c.title, ProductURL: c.productURL, ImageURL: c.imageURL})
	}
	return out
}

// HeroProducts scrapes product cards off the home page, capped. Hero
// entries never carry a price.
func (s *Scraper) HeroProducts(ctx context.Context, baseURL string) []domain.HeroProduct {
	cards := s.scrapeProductCards(ctx, baseURL, "", heroProductCap)
	recordExtraction("hero_products", len(cards) > 0)
	out := make([]domain.HeroProduct, 0, len(cards))
	for _, c := range cards {
		out = append(out, domain.HeroProduct{Title: c.title, ProductURL: c.productURL, ImageURL: c.imageURL})
	}
	return out
}

func (s *Scraper) productsFromFeed(ctx context.Context, baseURL string) []domain.Product {
	var feed productsFeed
	query := url.Values{"limit": []string{feedPageSize}}
	if err := s.fetch.JSON(ctx, baseURL, feedPath, query, &feed); err != nil {
		return nil
	}

	out := make([]domain.Product, 0, len(feed.Products))
	for _, item := range feed.Products {
		p := domain.Product{Title: Clean(item.Title)}
		if item.Handle != "" {
			p.ProductURL = fetcher.Absolutize(baseURL, "/products/"+item.Handle)
		}
		if len(item.Images) > 0 && item.Images[0].Src != "" {
			p.ImageURL = fetcher.Absolutize(baseURL, item.Images[0].Src)
		}
		p.Price = minVariantPrice(item)
		out = append(out, p)
	}
	return out
}

// minVariantPrice picks the cheapest variant that parses as a non-zero
// number, formatted to two decimals. Unparsable and zero prices are
// skipped; no parsable variant at all leaves the price empty.
func minVariantPrice(item feedProduct) string {
	best := 0.0
	found := false
	for _, v := range item.Variants {
		price, ok := parsePrice(v.Price)
		if !ok {
			continue
		}
		if !found || price < best {
			best = price
			found = true
		}
	}
	if !found {
		return ""
	}
	return fmt.Sprintf("%.2f", best)
}

// parsePrice accepts the feed's price as either a JSON string or a bare
// number. Zero counts as no price.
func parsePrice(raw json.RawMessage) (float64, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil || price == 0 {
		return 0, false
	}
	return price, true
}

type productCard struct {
	title      string
	productURL string
	imageURL   string
}

// scrapeProductCards is the shared HTML strategy behind the catalog
// fallback and hero extraction: anchors pointing into /products/,
// absolutized and deduplicated by URL in first-seen order. A limit of 0
// means unbounded.
func (s *Scraper) scrapeProductCards(ctx context.Context, baseURL, path string, limit int) []productCard {
	page, err := s.fetch.Fetch(ctx, baseURL, path)
	if err != nil {
		return nil
	}

	var cards []productCard
	seen := make(map[string]struct{})
	page.Doc.Find("a[href*='/products/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href == "" || !strings.Contains(href, "/products/") {
			return true
		}
		productURL := fetcher.Absolutize(baseURL, href)
		if productURL == "" {
			return true
		}
		if _, dup := seen[productURL]; dup {
			return true
		}
		seen[productURL] = struct{}{}

		title := ""
		if t, ok := a.Attr("title"); ok && t != "" {
			title = Clean(t)
		}
		if title == "" {
			title = cleanSelection(a)
		}

		imageURL := ""
		if src := cardImageSrc(a); src != "" {
			imageURL = fetcher.Absolutize(baseURL, src)
		}

		cards = append(cards, productCard{title: title, productURL: productURL, imageURL: imageURL})
		return limit <= 0 || len(cards) < limit
	})
	return cards
}

// cardImageSrc finds the card's image: an img inside the anchor, or the
// nearest img that follows it in document order. The lazy-load attribute
// wins over the eager src when both are present.
func cardImageSrc(a *goquery.Selection) string {
	if img := a.Find("img").First(); img.Length() > 0 {
		if src, ok := img.Attr("data-src"); ok && src != "" {
			return src
		}
		src, _ := img.Attr("src")
		return src
	}
	if len(a.Nodes) == 0 {
		return ""
	}
	for n := followingNode(a.Nodes[0]); n != nil; n = followingNode(n) {
		if n.Type == html.ElementNode && n.Data == "img" {
			if src := nodeAttr(n, "data-src"); src != "" {
				return src
			}
			return nodeAttr(n, "src")
		}
	}
	return ""
}

// followingNode steps to the next node in document order: first child,
// else next sibling, else the nearest ancestor's next sibling.
func followingNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

func nodeAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
