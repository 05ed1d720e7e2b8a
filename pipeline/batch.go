package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/mapscrape/config"
	"github.com/use-agent/mapscrape/engine"
	"github.com/use-agent/mapscrape/models"
)

// ProgressFunc is called after each variant with the 1-based position of
// the variant just processed, the variant count, and the failure (nil on
// success).
type ProgressFunc func(done, total int, variant string, failure *models.VariantFailure)

// Batch repeats a Pipeline once per query variant and aggregates the
// results. Variants run strictly one after another on one Surface.
type Batch struct {
	pipeline *Pipeline
	cfg      config.ScraperConfig

	// OnRecord receives every variant-tagged record as it is produced.
	// Records of a variant that later fails are still mirrored here; only
	// the batch result drops them.
	OnRecord RecordFunc

	// Progress is notified once per variant.
	Progress ProgressFunc

	now func() time.Time
}

// NewBatch creates a Batch using cfg for both the per-variant pipeline and
// the inter-variant pacing.
func NewBatch(cfg config.ScraperConfig) *Batch {
	return &Batch{
		pipeline: New(cfg),
		cfg:      cfg,
		now:      time.Now,
	}
}

// NormalizeVariants trims every variant and drops the empty ones, keeping
// input order. Duplicates are kept.
func NormalizeVariants(variants []string) []string {
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks a batch before anything is scraped and returns the
// trimmed term and normalized variants.
func Validate(term string, variants []string) (string, []string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", nil, models.NewScrapeError(models.ErrCodeInvalidInput, "query term is required", nil)
	}
	variants = NormalizeVariants(variants)
	if len(variants) == 0 {
		return "", nil, models.NewScrapeError(models.ErrCodeInvalidInput, "at least one non-empty variant is required", nil)
	}
	return term, variants, nil
}

// Compose joins the term and one variant into the query that is submitted.
func Compose(term, variant string) string {
	return term + " " + variant
}

// Run scrapes every variant in input order.
//
// A failure inside one variant (submission, structural absence, a panic) is
// recorded in the batch's Failures and the batch moves on; none of that
// variant's records are kept. The only errors Run returns are validation
// errors, before any scraping, and ctx's error. On cancellation the batch
// gathered so far is returned alongside the error, finished with the
// variants that did run.
func (b *Batch) Run(ctx context.Context, s engine.Surface, term string, variants []string) (*models.ScrapeBatch, error) {
	term, variants, err := Validate(term, variants)
	if err != nil {
		return nil, err
	}

	batch := &models.ScrapeBatch{
		Term:      term,
		Variants:  variants,
		Records:   []models.Record{},
		Status:    models.StatusProcessing,
		Total:     len(variants),
		CreatedAt: b.now(),
	}

	slog.Info("batch started", "term", term, "variants", len(variants))

	for i, variant := range variants {
		records, err := b.runVariant(ctx, s, term, variant)
		if ctxErr := ctx.Err(); ctxErr != nil {
			batch.Finish(b.now())
			return batch, ctxErr
		}

		var failure *models.VariantFailure
		if err != nil {
			failure = &models.VariantFailure{
				Variant: variant,
				Code:    failureCode(err),
				Message: err.Error(),
			}
			batch.Failures = append(batch.Failures, *failure)
			slog.Warn("variant failed", "variant", variant, "error", err)
		} else {
			batch.Records = append(batch.Records, records...)
			slog.Info("variant complete", "variant", variant, "records", len(records))
		}
		batch.Completed = i + 1

		if b.Progress != nil {
			b.Progress(i+1, len(variants), variant, failure)
		}

		if i < len(variants)-1 {
			if err := b.pipeline.sleep(ctx, b.cfg.VariantDelay); err != nil {
				batch.Finish(b.now())
				return batch, err
			}
		}
	}

	batch.Finish(b.now())
	slog.Info("batch finished",
		"term", term,
		"status", batch.Status,
		"records", len(batch.Records),
		"failures", len(batch.Failures),
	)
	return batch, nil
}

// runVariant submits one composed query and tags its records. It never
// panics.
func (b *Batch) runVariant(ctx context.Context, s engine.Surface, term, variant string) (records []models.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = models.NewScrapeError(models.ErrCodeVariant, fmt.Sprintf("panic: %v", r), nil)
		}
	}()

	emit := func(rec models.Record) {
		if b.OnRecord != nil {
			b.OnRecord(rec.WithVariant(variant))
		}
	}

	raw, err := b.pipeline.Search(ctx, s, Compose(term, variant), emit)
	if err != nil {
		return nil, err
	}

	records = make([]models.Record, len(raw))
	for i, rec := range raw {
		records[i] = rec.WithVariant(variant)
	}
	return records, nil
}

func failureCode(err error) string {
	if code := models.CodeOf(err); code != models.ErrCodeInternal {
		return code
	}
	return models.ErrCodeVariant
}
