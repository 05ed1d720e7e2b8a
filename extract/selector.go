package extract

import (
	"github.com/andybalholm/cascadia"
)

// Google Maps detail panel selectors. The class names are obfuscated and
// change without notice, so every field keeps at least one fallback keyed on
// a more stable attribute (data-item-id, role, aria-label).
const (
	selTitle = `.DUwDvf`

	selRatingLarge  = `div.F7nice span[aria-hidden="true"]`
	selRatingInline = `span[role="img"][aria-label*="star"]`

	selReviewButton  = `button[jsaction*="moreReviews"]`
	selReviewLabel   = `div.F7nice span[role="img"][aria-label]`
	selReviewSummary = `div.F7nice`

	selPhone     = `[data-item-id*="phone"]`
	selPhoneText = `[data-item-id*="phone"] .Io6YTe`

	selWebsite = `a[data-item-id*="authority"]`

	selAddressText = `[data-item-id="address"] .Io6YTe`
	selAddress     = `[data-item-id="address"]`
)

// compiled holds every selector above, parsed once at init. A malformed
// selector is a programming error and panics at startup.
var compiled = map[string]cascadia.Selector{}

func init() {
	for _, s := range []string{
		selTitle,
		selRatingLarge, selRatingInline,
		selReviewButton, selReviewLabel, selReviewSummary,
		selPhone, selPhoneText,
		selWebsite,
		selAddressText, selAddress,
	} {
		compiled[s] = cascadia.MustCompile(s)
	}
}

// matcher returns the compiled form of sel, compiling on demand for
// selectors registered outside this file (tests, custom fields).
func matcher(sel string) (cascadia.Selector, error) {
	if m, ok := compiled[sel]; ok {
		return m, nil
	}
	return cascadia.Compile(sel)
}
