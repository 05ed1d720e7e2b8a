package models

// ScrapeRequest is the payload for POST /api/v1/scrape.
// It scrapes one Google Maps search results page as-is.
type ScrapeRequest struct {
	// URL is a Google Maps search URL (https://www.google.com/maps/search/...).
	// Either URL or Query is required.
	URL string `json:"url,omitempty"`

	// Query is submitted through the search box when URL is empty.
	Query string `json:"query,omitempty"`

	// Stealth enables anti-bot-detection evasions.
	Stealth bool `json:"stealth,omitempty"`

	// Filename is the user-supplied export name (sanitised server side).
	Filename string `json:"filename,omitempty"`
}

// BatchRequest is the payload for POST /api/v1/batch.
// The same term is searched once per variant, e.g. "cafe" in each city.
type BatchRequest struct {
	// Term is the search term. Required.
	Term string `json:"term" binding:"required"`

	// Variants are appended to Term one at a time. Empty values are ignored,
	// but at least one non-empty variant is required.
	Variants []string `json:"variants" binding:"required,min=1,max=100"`

	// Stealth enables anti-bot-detection evasions.
	Stealth bool `json:"stealth,omitempty"`

	// Filename is the user-supplied export name (sanitised server side).
	Filename string `json:"filename,omitempty"`

	// MaxAge allows serving a cached batch younger than this many
	// milliseconds. 0 disables the cache lookup.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}
