package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/mapscrape/export"
	"github.com/use-agent/mapscrape/models"
	"github.com/use-agent/mapscrape/scraper"
)

var (
	runTerm     string
	runVariants []string
	runURL      string
	runOut      string
	runStealth  bool
)

func init() {
	runCmd.Flags().StringVar(&runTerm, "term", "", "search term, e.g. \"cafe\"")
	runCmd.Flags().StringArrayVar(&runVariants, "variant", nil, "query variant appended to the term (repeatable)")
	runCmd.Flags().StringVar(&runURL, "url", "", "Google Maps search URL to scrape as-is")
	runCmd.Flags().StringVar(&runOut, "out", "", "export file name")
	runCmd.Flags().BoolVar(&runStealth, "stealth", false, "enable anti-bot-detection evasions")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrapes a search (or a batch of variants) and exports the results as CSV.",
	Example: `  mapscrape run --term cafe --variant Paris --variant Lyon
  mapscrape run --url "https://www.google.com/maps/search/cafe+paris"
  mapscrape run --term "pizza napoli" --out pizza`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger(cfg.Log, os.Stderr)

		if runURL == "" && strings.TrimSpace(runTerm) == "" {
			return errors.New("either --term or --url is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			return fmt.Errorf("failed to initialise scraper: %w", err)
		}
		defer sc.Close()

		out := cmd.OutOrStdout()
		n := 0
		live := func(r models.Record) {
			n++
			fmt.Fprintln(out, recordLine(n, r))
		}

		var (
			records  []models.Record
			failures []models.VariantFailure
			batch    = len(runVariants) > 0 && runURL == ""
			runErr   error
		)
		if batch {
			var b *models.ScrapeBatch
			b, runErr = sc.DoBatch(ctx, &models.BatchRequest{
				Term:     runTerm,
				Variants: runVariants,
				Stealth:  runStealth,
			}, live, func(done, total int, variant string, failure *models.VariantFailure) {
				status := "ok"
				if failure != nil {
					status = failure.Code
				}
				fmt.Fprintf(out, "-- %d/%d %s: %s\n", done, total, variant, status)
			})
			if b != nil {
				records, failures = b.Records, b.Failures
			}
		} else {
			records, _, runErr = sc.DoScrape(ctx, &models.ScrapeRequest{
				URL:     runURL,
				Query:   runTerm,
				Stealth: runStealth,
			}, live)
		}

		if len(records) > 0 {
			fmt.Fprintln(out)
			renderRecords(out, records, batch)
		}
		printFailures(out, failures)

		if len(records) > 0 {
			slugTerm := ""
			if batch {
				slugTerm = runTerm
			}
			name := export.Filename(runOut, cfg.Export.FilenamePrefix, slugTerm, time.Now())
			path, err := export.WriteFile(cfg.Export.OutputDir, name, export.CSV(records, batch))
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(out, "%d records written to %s\n", len(records), path)
		}

		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		return nil
	},
}
