package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/use-agent/mapscrape/models"
	"github.com/use-agent/mapscrape/pipeline"
)

// DoScrape scrapes one results feed.
//
// With a URL the search page is opened as-is and its feed is scraped. With
// only a Query the start page is opened and the query is submitted first.
// Records are passed to emit as they are produced.
func (s *Scraper) DoScrape(ctx context.Context, req *models.ScrapeRequest, emit pipeline.RecordFunc) ([]models.Record, models.TimingInfo, error) {
	totalStart := time.Now()
	var timing models.TimingInfo

	if err := ValidateScrapeRequest(req); err != nil {
		return []models.Record{}, timing, err
	}

	// ── 1. Open page ───────────────────────────────────────────────
	navStart := time.Now()
	sess, err := s.Open(ctx, SessionOptions{StartURL: req.URL, Stealth: req.Stealth})
	timing.NavigationMs = time.Since(navStart).Milliseconds()
	if err != nil {
		timing.TotalMs = time.Since(totalStart).Milliseconds()
		return []models.Record{}, timing, err
	}
	defer sess.Close()

	// ── 2. Paginate + extract ──────────────────────────────────────
	p := pipeline.New(s.scraperCfg)
	extractStart := time.Now()
	var records []models.Record
	if req.URL != "" {
		records, err = p.Run(ctx, sess, emit)
	} else {
		records, err = p.Search(ctx, sess, strings.TrimSpace(req.Query), emit)
	}
	timing.ExtractionMs = time.Since(extractStart).Milliseconds()
	timing.TotalMs = time.Since(totalStart).Milliseconds()

	if err != nil && ctx.Err() != nil {
		err = categorizeError(ctx.Err(), "scrape interrupted")
	} else {
		sess.Fail(err)
	}
	return records, timing, err
}

// DoBatch runs a batch on one pooled page: the term is searched once per
// variant, strictly in order.
func (s *Scraper) DoBatch(ctx context.Context, req *models.BatchRequest, onRecord pipeline.RecordFunc, progress pipeline.ProgressFunc) (*models.ScrapeBatch, error) {
	term, variants, err := pipeline.Validate(req.Term, req.Variants)
	if err != nil {
		return nil, err
	}

	sess, err := s.Open(ctx, SessionOptions{Stealth: req.Stealth})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	b := pipeline.NewBatch(s.scraperCfg)
	b.OnRecord = onRecord
	b.Progress = progress
	batch, err := b.Run(ctx, sess, term, variants)
	if batch != nil && ctx.Err() == nil {
		for _, f := range batch.Failures {
			sess.Fail(models.NewScrapeError(f.Code, f.Message, nil))
		}
	}
	return batch, err
}

// ValidateScrapeRequest checks that req names a Maps search page or a
// query to submit.
func ValidateScrapeRequest(req *models.ScrapeRequest) error {
	switch {
	case req.URL != "":
		if !IsSearchURL(req.URL) {
			return models.NewScrapeError(models.ErrCodeInvalidInput,
				"url must be a Google Maps search page ("+SearchURLPrefix+"...)", nil)
		}
	case strings.TrimSpace(req.Query) == "":
		return models.NewScrapeError(models.ErrCodeInvalidInput, "either url or query is required", nil)
	}
	return nil
}
