// Package scraper turns storefront pages into the canonical insight
// sections. Every extractor degrades to an explicit empty or sentinel value
// when its pages are missing or unusable; none of them return errors.
package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/domain"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/fetcher"
	"github.com/sujan22359/Shopify-store-Insights-Fetcher-Application/packages/metrics"
)

// NotAvailable is the sentinel excerpt for a policy page that could not be
// fetched or had no readable text.
const NotAvailable = "Not available"

// NoAboutInfo is the default about-text when no candidate page yields
// content.
const NoAboutInfo = "No about info found"

const (
	policyExcerptLen  = 300
	addressExcerptLen = 200
	maxImportantLinks = 30
)

var (
	aboutPaths = []string{"pages/about", "about", "pages/our-story"}
	faqPaths   = []string{"pages/faq", "faq", "pages/faqs"}

	policyPaths = map[string]string{
		domain.PolicyPrivacy:  "policies/privacy-policy",
		domain.PolicyRefund:   "policies/refund-policy",
		domain.PolicyShipping: "policies/shipping-policy",
		domain.PolicyTerms:    "policies/terms-of-service",
	}

	linkKeywords = []string{"order", "contact", "blog", "faq", "about", "shipping", "refund"}

	socialHosts = []struct {
		platform string
		hosts    []string
	}{
		{domain.PlatformFacebook, []string{"facebook.com"}},
		{domain.PlatformInstagram, []string{"instagram.com"}},
		{domain.PlatformTwitter, []string{"twitter.com", "x.com"}},
		{domain.PlatformYouTube, []string{"youtube.com"}},
		{domain.PlatformTikTok, []string{"tiktok.com"}},
	}
)

type Scraper struct {
	fetch *fetcher.Fetcher
}

func New(f *fetcher.Fetcher) *Scraper {
	return &Scraper{fetch: f}
}

// firstHit tries candidate paths in order and returns the first extraction
// the hit predicate accepts. Fetch failures just move on to the next
// candidate.
func firstHit[T any](ctx context.Context, f *fetcher.Fetcher, baseURL string, paths []string, extract func(*goquery.Document) T, hit func(T) bool) (T, bool) {
	for _, path := range paths {
		page, err := f.Fetch(ctx, baseURL, path)
		if err != nil {
			continue
		}
		out := extract(page.Doc)
		if hit(out) {
			return out, true
		}
	}
	var zero T
	return zero, false
}

func recordExtraction(section string, hit bool) {
	outcome := "default"
	if hit {
		outcome = "hit"
	}
	metrics.Extractions.WithLabelValues(section, outcome).Inc()
}

// About returns the brand's about-text from the first candidate page with
// paragraph content.
func (s *Scraper) About(ctx context.Context, baseURL string) string {
	text, ok := firstHit(ctx, s.fetch, baseURL, aboutPaths, paragraphText, func(t string) bool { return t != "" })
	recordExtraction("about", ok)
	if !ok {
		return NoAboutInfo
	}
	return text
}

// Policies returns an excerpt per policy kind. Kinds whose page is missing
// or empty get the NotAvailable sentinel, never an absent key.
func (s *Scraper) Policies(ctx context.Context, baseURL string) domain.Policies {
	out := make(domain.Policies, len(policyPaths))
	for kind, path := range policyPaths {
		out[kind] = NotAvailable
		page, err := s.fetch.Fetch(ctx, baseURL, path)
		if err != nil {
			recordExtraction("policy", false)
			continue
		}
		if text := paragraphText(page.Doc); text != "" {
			out[kind] = excerpt(text, policyExcerptLen)
			recordExtraction("policy", true)
		} else {
			recordExtraction("policy", false)
		}
	}
	return out
}

// Contact applies token-level heuristics over the contact page's visible
// text. Tokens are accepted loosely; false positives are fine.
func (s *Scraper) Contact(ctx context.Context, baseURL string) domain.ContactDetails {
	details := domain.ContactDetails{Emails: []string{}, PhoneNumbers: []string{}}
	page, err := s.fetch.Fetch(ctx, baseURL, "pages/contact")
	if err != nil {
		recordExtraction("contact", false)
		return details
	}
	text := cleanSelection(page.Doc.Selection)
	for _, token := range strings.Fields(text) {
		if strings.Contains(token, "@") && strings.Contains(token, ".") {
			details.Emails = append(details.Emails, token)
		}
		if isPhoneToken(token) {
			details.PhoneNumbers = append(details.PhoneNumbers, token)
		}
	}
	details.Address = excerptPlain(text, addressExcerptLen)
	recordExtraction("contact", true)
	return details
}

// Socials scans the home page's anchors once. The first link per platform
// wins; later matches are ignored.
func (s *Scraper) Socials(ctx context.Context, baseURL string) domain.SocialHandles {
	handles := domain.SocialHandles{}
	for _, sh := range socialHosts {
		handles[sh.platform] = ""
	}
	page, err := s.fetch.Fetch(ctx, baseURL, "")
	if err != nil {
		recordExtraction("socials", false)
		return handles
	}
	page.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)
		for _, sh := range socialHosts {
			if !matchesAny(lower, sh.hosts) {
				continue
			}
			if handles[sh.platform] == "" {
				handles[sh.platform] = href
			}
			break
		}
	})
	recordExtraction("socials", true)
	return handles
}

// FAQs pairs heading-like nodes with their immediate next sibling's text.
// The first candidate page yielding any pair wins.
func (s *Scraper) FAQs(ctx context.Context, baseURL string) []domain.FAQ {
	faqs, ok := firstHit(ctx, s.fetch, baseURL, faqPaths, extractFAQs, func(f []domain.FAQ) bool { return len(f) > 0 })
	recordExtraction("faqs", ok)
	if !ok {
		return []domain.FAQ{}
	}
	return faqs
}

func extractFAQs(doc *goquery.Document) []domain.FAQ {
	var faqs []domain.FAQ
	doc.Find("h2, h3, strong, dt").Each(func(_ int, q *goquery.Selection) {
		question := cleanSelection(q)
		if question == "" {
			return
		}
		answer := ""
		if next := q.Next(); next.Length() > 0 {
			answer = cleanSelection(next)
		}
		faqs = append(faqs, domain.FAQ{Question: question, Answer: answer})
	})
	return faqs
}

// ImportantLinks keeps home-page links whose URL mentions one of the known
// keywords, deduplicated in first-seen order and capped.
func (s *Scraper) ImportantLinks(ctx context.Context, baseURL string) []string {
	links := []string{}
	page, err := s.fetch.Fetch(ctx, baseURL, "")
	if err != nil {
		recordExtraction("links", false)
		return links
	}
	seen := make(map[string]struct{})
	page.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if len(links) >= maxImportantLinks {
			return
		}
		href, _ := a.Attr("href")
		abs := fetcher.Absolutize(baseURL, href)
		if abs == "" || !matchesAny(strings.ToLower(abs), linkKeywords) {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	recordExtraction("links", len(links) > 0)
	return links
}

func paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := cleanSelection(p); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

// excerpt truncates to limit runes and marks the cut with an ellipsis.
func excerpt(text string, limit int) string {
	return excerptPlain(text, limit) + "..."
}

func excerptPlain(text string, limit int) string {
	r := []rune(text)
	if len(r) > limit {
		r = r[:limit]
	}
	return collapse(string(r))
}

func isPhoneToken(token string) bool {
	t := strings.NewReplacer("+", "", "-", "").Replace(token)
	if t == "" {
		return false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func matchesAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
