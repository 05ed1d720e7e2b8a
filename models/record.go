package models

// ErrorTitle marks a record whose extraction failed.
const ErrorTitle = "Error"

// Record is one place scraped from the detail panel.
//
// Missing data is always the empty string, never an absent field. Variant is
// only set in batch mode, where it carries the location (or other query
// variant) the record was found under.
type Record struct {
	Title       string `json:"title"`
	Rating      string `json:"rating"`
	ReviewCount string `json:"review_count"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	Href        string `json:"href"`
	Variant     string `json:"variant,omitempty"`
}

// ErrorRecord returns the placeholder appended when an entry could not be
// extracted. Only Href is carried over.
func ErrorRecord(href string) Record {
	return Record{Title: ErrorTitle, Href: href}
}

// IsError reports whether r is an extraction-failure placeholder.
func (r Record) IsError() bool {
	return r.Title == ErrorTitle
}

// WithVariant returns a copy of r tagged with variant.
func (r Record) WithVariant(variant string) Record {
	r.Variant = variant
	return r
}
