// Package pipeline turns an interactive results feed into records.
//
// Everything here drives a single engine.Surface from a single goroutine.
// Entries share one detail panel, so entries (and batch variants) are
// processed strictly one after another; this ordering is the only thing
// keeping one entry's panel from being read as another's.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/mapscrape/config"
	"github.com/use-agent/mapscrape/engine"
	"github.com/use-agent/mapscrape/extract"
	"github.com/use-agent/mapscrape/models"
	"github.com/use-agent/mapscrape/simhash"
)

// RecordFunc receives each record as soon as it is produced.
type RecordFunc func(models.Record)

// Pipeline scrapes one query's results feed.
type Pipeline struct {
	cfg   config.ScraperConfig
	sleep func(context.Context, time.Duration) error
}

// New creates a Pipeline using the timings and limits in cfg.
func New(cfg config.ScraperConfig) *Pipeline {
	return &Pipeline{cfg: cfg, sleep: engine.Sleep}
}

// act bounds one Surface interaction by ActionTimeout, so an entry that
// never becomes clickable costs one placeholder record, not the whole run.
func (p *Pipeline) act(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.ActionTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.cfg.ActionTimeout)
}

// panelState is what the previous entry left in the detail panel.
type panelState struct {
	title       string
	fingerprint uint64
}

// Run scrapes the feed currently shown by s.
//
//  1. Feed absent        – FEED_NOT_FOUND, no records
//  2. Paginate           – best effort, never fails
//  3. Enumerate entries  – none: NO_ENTRIES, no records; cap at MaxEntries
//  4. Per entry, in order:
//     activate → wait for the panel to repaint → extract → attach entry href
//     → pause EntryDelay. Any fault yields an Error placeholder record and
//     the loop continues.
//
// The returned slice is never nil. The only errors are the two structural
// ones above and ctx's error, in which case the records gathered so far are
// returned alongside it.
func (p *Pipeline) Run(ctx context.Context, s engine.Surface, emit RecordFunc) ([]models.Record, error) {
	records := []models.Record{}

	// ── 1. Feed container ──────────────────────────────────────────
	present, err := s.FeedPresent(ctx)
	if err != nil || !present {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return records, ctxErr
		}
		return records, models.NewScrapeError(models.ErrCodeFeedNotFound, "results feed not found", err)
	}

	// ── 2. Pagination ──────────────────────────────────────────────
	pr := Paginate(ctx, s, p.cfg)
	slog.Debug("pagination finished",
		"iterations", pr.Iterations, "extent", pr.Extent, "reason", pr.Reason)
	if err := ctx.Err(); err != nil {
		return records, err
	}

	// ── 3. Enumerate ───────────────────────────────────────────────
	entries, err := s.Entries(ctx)
	if err != nil || len(entries) == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return records, ctxErr
		}
		return records, models.NewScrapeError(models.ErrCodeNoEntries, "no result entries found", err)
	}
	if p.cfg.MaxEntries > 0 && len(entries) > p.cfg.MaxEntries {
		entries = entries[:p.cfg.MaxEntries]
	}
	slog.Info("scraping entries", "found", len(entries))

	// ── 4. Sequential navigate-and-extract ─────────────────────────
	prev := p.snapshot(ctx, s)
	for i, entry := range entries {
		rec, next, err := p.scrapeEntry(ctx, s, entry, prev)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return records, ctxErr
			}
			slog.Warn("entry extraction failed",
				"index", entry.Index, "href", entry.Href, "error", err)
			rec = models.ErrorRecord(entry.Href)
		} else {
			prev = next
			slog.Debug("entry extracted", "index", entry.Index, "title", rec.Title)
		}

		records = append(records, rec)
		if emit != nil {
			emit(rec)
		}

		if i < len(entries)-1 {
			if err := p.sleep(ctx, p.cfg.EntryDelay); err != nil {
				return records, err
			}
		}
	}

	slog.Info("scrape complete", "records", len(records))
	return records, nil
}

// scrapeEntry activates one entry and extracts the panel it produces.
// Panics are converted to errors so a single entry can never take the loop
// down.
func (p *Pipeline) scrapeEntry(ctx context.Context, s engine.Surface, entry engine.Entry, prev panelState) (rec models.Record, next panelState, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = models.NewScrapeError(models.ErrCodeExtraction,
				fmt.Sprintf("panic while extracting entry %d: %v", entry.Index, r), nil)
		}
	}()

	actCtx, cancel := p.act(ctx)
	err = s.Activate(actCtx, entry)
	cancel()
	if err != nil {
		return rec, next, models.NewScrapeError(models.ErrCodeExtraction, "failed to activate entry", err)
	}

	ready, panelHTML, err := p.waitForPanel(ctx, s, prev)
	if err != nil {
		return rec, next, err
	}
	if !ready {
		slog.Debug("detail panel did not settle, extracting current state", "index", entry.Index)
		actCtx, cancel := p.act(ctx)
		panelHTML, err = s.PanelHTML(actCtx)
		cancel()
		if err != nil {
			return rec, next, models.NewScrapeError(models.ErrCodeExtraction, "failed to read detail panel", err)
		}
	}

	rec, err = extract.Extract(panelHTML)
	if err != nil {
		return rec, next, err
	}
	rec.Href = entry.Href
	return rec, stateOf(panelHTML), nil
}

// waitForPanel polls the detail panel until it shows something other than
// prev and has stopped changing between two consecutive polls, or until
// EntrySettle elapses. On success the settled snapshot is returned so it is
// not fetched twice.
func (p *Pipeline) waitForPanel(ctx context.Context, s engine.Surface, prev panelState) (bool, string, error) {
	var (
		lastFP   uint64
		settled  string
		observed bool
	)
	ready, err := engine.WaitUntil(ctx, p.cfg.EntrySettle, p.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		html, err := s.PanelHTML(ctx)
		if err != nil {
			return false, err
		}
		panel, err := extract.Parse(html)
		if err != nil {
			return false, err
		}
		title := panel.Title()
		fp := panel.Fingerprint()

		changed := title != "" && (title != prev.title || simhash.Changed(prev.fingerprint, fp, 0))
		stable := observed && fp == lastFP
		lastFP, observed = fp, true
		if changed && stable {
			settled = html
			return true, nil
		}
		return false, nil
	})
	return ready, settled, err
}

// snapshot captures the panel state before the first activation, so that a
// panel left open by an earlier query is not mistaken for the first entry.
func (p *Pipeline) snapshot(ctx context.Context, s engine.Surface) panelState {
	html, err := s.PanelHTML(ctx)
	if err != nil {
		return panelState{}
	}
	return stateOf(html)
}

func stateOf(panelHTML string) panelState {
	panel, err := extract.Parse(panelHTML)
	if err != nil {
		return panelState{}
	}
	return panelState{title: panel.Title(), fingerprint: panel.Fingerprint()}
}

// Search submits query, waits for its results feed to render and then runs
// the pipeline on it.
func (p *Pipeline) Search(ctx context.Context, s engine.Surface, query string, emit RecordFunc) ([]models.Record, error) {
	before := firstHref(ctx, s)

	actCtx, cancel := p.act(ctx)
	err := s.Submit(actCtx, query)
	cancel()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return []models.Record{}, ctxErr
		}
		return []models.Record{}, models.NewScrapeError(models.ErrCodeNavigation, "failed to submit query", err)
	}

	ready, err := engine.WaitUntil(ctx, p.cfg.SubmitSettle, p.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		present, err := s.FeedPresent(ctx)
		if err != nil || !present {
			return false, err
		}
		now := firstHref(ctx, s)
		return now != "" && now != before, nil
	})
	if err != nil {
		return []models.Record{}, err
	}
	if !ready {
		slog.Debug("results did not settle after submit, continuing", "query", query)
	}

	return p.Run(ctx, s, emit)
}

func firstHref(ctx context.Context, s engine.Surface) string {
	present, err := s.FeedPresent(ctx)
	if err != nil || !present {
		return ""
	}
	entries, err := s.Entries(ctx)
	if err != nil || len(entries) == 0 {
		return ""
	}
	return entries[0].Href
}
