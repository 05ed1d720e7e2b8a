package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/mapscrape/models"
	"github.com/use-agent/mapscrape/simhash"
)

// Detail field chains, in Record column order. The fallback order encodes
// what the Maps UI has been observed to render; it is a heuristic, not a
// schema.
var (
	TitleField = Field{Name: "title", Strategies: []Strategy{
		{Selector: selTitle, Value: Text},
	}}

	RatingField = Field{Name: "rating", Strategies: []Strategy{
		{Selector: selRatingLarge, Value: TextThen(LeadingNumber)},
		{Selector: selRatingInline, Value: Attr("aria-label", LeadingNumber)},
	}}

	ReviewCountField = Field{Name: "review_count", Strategies: []Strategy{
		{Selector: selReviewButton, Value: TextThen(ReviewCount)},
		{Selector: selReviewLabel, Value: Attr("aria-label", ReviewCount)},
		{Selector: selReviewSummary, Value: TextThen(ParenCount)},
	}}

	PhoneField = Field{Name: "phone", Strategies: []Strategy{
		{Selector: selPhone, Value: Attr("aria-label", StripPhoneLabel)},
		{Selector: selPhoneText, Value: Text},
	}}

	WebsiteField = Field{Name: "website", Strategies: []Strategy{
		{Selector: selWebsite, Value: Text},
		{Selector: selWebsite, Value: Attr("href", nil)},
	}}

	AddressField = Field{Name: "address", Strategies: []Strategy{
		{Selector: selAddressText, Value: Text},
		{Selector: selAddress, Value: Attr("aria-label", StripAddressLabel)},
	}}
)

// Panel is a parsed snapshot of the detail panel.
type Panel struct {
	root *goquery.Selection
}

// Parse parses an HTML snapshot of the detail panel. A blank snapshot means
// the panel is not rendered at all and is reported as an extraction fault.
func Parse(rawHTML string) (*Panel, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "detail panel is empty", nil)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "failed to parse detail panel", err)
	}
	return &Panel{root: doc.Selection}, nil
}

// Title resolves only the title field. Used as a cheap readiness check.
func (p *Panel) Title() string {
	return TitleField.Resolve(p.root)
}

// Fingerprint returns the SimHash of the panel's visible text.
func (p *Panel) Fingerprint() uint64 {
	body := p.root.Clone()
	body.Find("script, style, noscript").Remove()
	return simhash.Fingerprint(Normalize(body.Text()))
}

// Record resolves every field independently. Href and Variant are left
// empty: the entry link is authoritative and is attached by the caller.
func (p *Panel) Record() models.Record {
	return models.Record{
		Title:       TitleField.Resolve(p.root),
		Rating:      RatingField.Resolve(p.root),
		ReviewCount: ReviewCountField.Resolve(p.root),
		Phone:       PhoneField.Resolve(p.root),
		Website:     WebsiteField.Resolve(p.root),
		Address:     AddressField.Resolve(p.root),
	}
}

// Extract parses rawHTML and returns its record.
func Extract(rawHTML string) (models.Record, error) {
	p, err := Parse(rawHTML)
	if err != nil {
		return models.Record{}, err
	}
	return p.Record(), nil
}
