package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reReviews      = regexp.MustCompile(`(?i)(\d[\d,.]*)\s*reviews?\b`)
	reParenCount   = regexp.MustCompile(`\((\d[\d,.]*)\)`)
	reLeadingFloat = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	rePhoneLabel   = regexp.MustCompile(`(?i)^phone:\s*`)
	reAddressLabel = regexp.MustCompile(`(?i)^address:\s*`)
)

// Normalize trims s, collapses internal whitespace runs to a single space
// and drops private-use glyphs (Maps renders its icons as PUA characters
// inside the same text nodes as the values).
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Co, r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ReviewCount extracts N from "N review(s)". Thousands separators are
// removed so "1,234 reviews" yields "1234". No match yields "".
func ReviewCount(s string) string {
	m := reReviews.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return digitsOnly(m[1])
}

// ParenCount extracts N from the compact "(N)" form shown next to the
// rating.
func ParenCount(s string) string {
	m := reParenCount.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return digitsOnly(m[1])
}

// LeadingNumber returns the first decimal number in s ("4.5 stars" -> "4.5").
func LeadingNumber(s string) string {
	return reLeadingFloat.FindString(s)
}

// StripPhoneLabel removes a leading "Phone:" label, case-insensitively.
func StripPhoneLabel(s string) string {
	return strings.TrimSpace(rePhoneLabel.ReplaceAllString(s, ""))
}

// StripAddressLabel removes a leading "Address:" label, case-insensitively.
func StripAddressLabel(s string) string {
	return strings.TrimSpace(reAddressLabel.ReplaceAllString(s, ""))
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
