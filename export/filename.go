package export

import (
	"regexp"
	"strings"
	"time"
)

// DefaultPrefix is used for synthesized filenames when none is configured.
const DefaultPrefix = "google-maps-data"

// timestampLayout is YYYYMMDDHHmm.
const timestampLayout = "200601021504"

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9]`)

// Sanitize turns a user-supplied name into a safe lowercase filename:
// every character outside [A-Za-z0-9] becomes "_" and ".csv" is appended.
func Sanitize(name string) string {
	return strings.ToLower(reUnsafe.ReplaceAllString(name, "_")) + ".csv"
}

// Filename resolves the export filename. A non-blank userName is
// sanitized. Otherwise a name is synthesized from prefix and now, with a
// slug of term inserted when term is non-empty (batch exports).
//
//	Filename("My Report!", "", "", t)             → "my_report_.csv"
//	Filename("", "", "", t)                       → "google-maps-data_202610181405.csv"
//	Filename("", "", "coffee shops", t)           → "google-maps-data_coffee_shops_202610181405.csv"
func Filename(userName, prefix, term string, now time.Time) string {
	if name := strings.TrimSpace(userName); name != "" {
		return Sanitize(name)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	stamp := now.Format(timestampLayout)
	if slug := Slug(term); slug != "" {
		return prefix + "_" + slug + "_" + stamp + ".csv"
	}
	return prefix + "_" + stamp + ".csv"
}

// Slug lowercases s and replaces every run of characters outside
// [a-z0-9] with a single "_", trimming leading and trailing underscores.
func Slug(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
