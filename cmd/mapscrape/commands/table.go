package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/use-agent/mapscrape/models"
)

// renderRecords prints records as a rounded table. The Location column is
// only shown for batch output.
func renderRecords(w io.Writer, records []models.Record, batch bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{"#", "Title", "Rating", "Reviews", "Phone", "Website", "Address"}
	if batch {
		header = append(table.Row{"#", "Location"}, header[1:]...)
	}
	t.AppendHeader(header)

	for i, r := range records {
		row := table.Row{i + 1, r.Title, r.Rating, r.ReviewCount, r.Phone, r.Website, r.Address}
		if batch {
			row = append(table.Row{i + 1, r.Variant}, row[1:]...)
		}
		t.AppendRow(row)
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 32},
		{Name: "Website", WidthMax: 32},
		{Name: "Address", WidthMax: 40},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// printFailures lists variants that produced no usable results.
func printFailures(w io.Writer, failures []models.VariantFailure) {
	if len(failures) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Variant", "Code", "Message"})
	for _, f := range failures {
		t.AppendRow(table.Row{f.Variant, f.Code, f.Message})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// recordLine is the one-line form printed while a scrape is running.
func recordLine(n int, r models.Record) string {
	if r.Variant != "" {
		return fmt.Sprintf("[%d] %s | %s | %s %s", n, r.Variant, r.Title, r.Rating, r.Address)
	}
	return fmt.Sprintf("[%d] %s | %s %s", n, r.Title, r.Rating, r.Address)
}
