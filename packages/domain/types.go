// Package domain
package domain

import "encoding/json"

// Policy kinds as they appear on the wire.
const (
	PolicyPrivacy  = "privacy_policy"
	PolicyRefund   = "refund_policy"
	PolicyShipping = "shipping_policy"
	PolicyTerms    = "terms_of_service"
)

// Social platforms as they appear on the wire.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformTwitter   = "twitter"
	PlatformYouTube   = "youtube"
	PlatformTikTok    = "tiktok"
)

// Policies maps a policy kind to a truncated plain-text excerpt or the
// "Not available" sentinel. Every kind is always present.
type Policies map[string]string

// SocialHandles maps a platform to the first discovered profile URL, or ""
// when the platform was never seen.
type SocialHandles map[string]string

type ContactDetails struct {
	Emails       []string `json:"emails"`
	PhoneNumbers []string `json:"phone_numbers"`
	Address      string   `json:"address"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Product struct {
	Title      string `json:"title"`
	ProductURL string `json:"product_url"`
	ImageURL   string `json:"image_url"`
	Price      string `json:"price"`
}

// HeroProduct is a home-page product card. It carries no price on the wire.
type HeroProduct struct {
	Title      string `json:"title"`
	ProductURL string `json:"product_url"`
	ImageURL   string `json:"image_url"`
}

// BrandInsights is the aggregate record for one storefront. Every field is
// always populated with either real data or an explicit empty/default value.
type BrandInsights struct {
	BrandName      string         `json:"brand_name"`
	About          string         `json:"about"`
	Policies       Policies       `json:"policies"`
	ContactDetails ContactDetails `json:"contact_details"`
	SocialHandles  SocialHandles  `json:"social_handles"`
	FAQs           []FAQ          `json:"faqs"`
	Products       []Product      `json:"products"`
	HeroProducts   []HeroProduct  `json:"hero_products"`
	ImportantLinks []string       `json:"important_links"`
}

// BrandSummary is one row of the stored-brands listing.
type BrandSummary struct {
	ID        int64  `json:"id"`
	BrandName string `json:"brand_name"`
}

// BatchEntry is one slot of a competitor batch: either a full aggregate or
// an error placeholder for the site that failed.
type BatchEntry struct {
	Insights  *BrandInsights
	BrandName string
	Err       string
}

func (e BatchEntry) MarshalJSON() ([]byte, error) {
	if e.Err != "" {
		return json.Marshal(struct {
			BrandName string `json:"brand_name"`
			Error     string `json:"error"`
		}{BrandName: e.BrandName, Error: e.Err})
	}
	return json.Marshal(e.Insights)
}
