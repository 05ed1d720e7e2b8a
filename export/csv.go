// Package export serializes scraped records to CSV and names and writes
// the resulting files.
package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/use-agent/mapscrape/models"
)

// Header is the column header of a single-query export. Batch exports
// prepend LocationColumn.
var Header = []string{"Title", "Rating", "Reviews", "Phone", "Website", "Address", "Google Maps Link"}

// LocationColumn is the leading column of a batch export.
const LocationColumn = "Location"

// Row returns the cells of one record in Header order.
func Row(r models.Record, batch bool) []string {
	row := []string{r.Title, r.Rating, r.ReviewCount, r.Phone, r.Website, r.Address, r.Href}
	if batch {
		return append([]string{r.Variant}, row...)
	}
	return row
}

// CSV renders records with a header row. Every cell is quoted and embedded
// quotes are doubled; rows are joined with "\n" and there is no trailing
// newline.
func CSV(records []models.Record, batch bool) string {
	header := Header
	if batch {
		header = append([]string{LocationColumn}, Header...)
	}

	var b strings.Builder
	writeRow(&b, header)
	for _, r := range records {
		b.WriteByte('\n')
		writeRow(&b, Row(r, batch))
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
}

// ParseCSV reads text produced by CSV back into rows, header included.
func ParseCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}
