package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/mapscrape/models"
	"github.com/ysmood/gson"
)

// SearchURLPrefix is the URL prefix of a Maps search results page.
const SearchURLPrefix = "https://www.google.com/maps/search/"

// SessionOptions controls how a Session's page is prepared.
type SessionOptions struct {
	// StartURL is opened once the page is prepared. Empty means the
	// configured start URL.
	StartURL string

	// Stealth injects the stealth evasion script before navigation.
	Stealth bool
}

// Session is one pooled browser tab showing Google Maps. It implements
// engine.Surface and must be driven from a single goroutine.
type Session struct {
	scraper *Scraper
	page    *rod.Page
	router  *rod.HijackRouter
	closed  bool
	failed  bool
}

// Open borrows a page from the pool, prepares it and navigates to the
// start URL.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Acquire page           – blocks while every pooled page is busy
//  2. Stealth injection      – mask navigator.webdriver etc. (before navigation!)
//  3. Headers                – pin Accept-Language so English labels match
//  4. Hijack mount           – block images/fonts/media (before navigation!)
//  5. Navigate               – bounded by NavigationTimeout
//  6. Consent interstitial   – dismissed when Google shows one
//
// The caller must Close the session to return the page to the pool.
func (s *Scraper) Open(ctx context.Context, opts SessionOptions) (*Session, error) {
	startURL := opts.StartURL
	if startURL == "" {
		startURL = s.scraperCfg.StartURL
	}

	// ── 1. Acquire page from pool ─────────────────────────────────────
	s.queuedJobs.Add(1)
	page, err := s.acquire(ctx)
	s.queuedJobs.Add(-1)
	if err != nil {
		return nil, err
	}
	s.activePages.Add(1)
	sess := &Session{scraper: s, page: page}

	// ── 2. Stealth injection ──────────────────────────────────────────
	if opts.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// ── 3. Extra headers ──────────────────────────────────────────────
	if lang := s.browserCfg.AcceptLanguage; lang != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": lang}),
		}.Call(page)
	}

	// ── 4. Mount hijack router ────────────────────────────────────────
	sess.router = setupHijack(page, s.scraperCfg.BlockedResourceTypes)

	// ── 5. Navigate ───────────────────────────────────────────────────
	navCtx, cancel := context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
	defer cancel()
	p := page.Context(navCtx)
	if err := p.Navigate(startURL); err != nil {
		sess.failed = true
		sess.Close()
		return nil, categorizeError(err, "navigation to start URL failed")
	}
	if err := p.WaitLoad(); err != nil {
		slog.Debug("start page did not finish loading, proceeding", "error", err)
	}

	// ── 6. Consent interstitial ───────────────────────────────────────
	if dismissConsent(p) {
		slog.Info("dismissed consent interstitial")
		if err := p.WaitLoad(); err != nil {
			slog.Debug("page did not reload after consent, proceeding", "error", err)
		}
	}

	return sess, nil
}

// acquire waits for a free pooled page or ctx.
func (s *Scraper) acquire(ctx context.Context) (*rod.Page, error) {
	type result struct {
		page *rod.Page
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		page, err := s.pagePool.Get(func() (*rod.Page, error) {
			page, err := s.browser.Page(proto.TargetCreateTarget{})
			if err == nil {
				s.health.register(page.TargetID)
			}
			return page, err
		})
		ch <- result{page, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, models.NewScrapeError(
				models.ErrCodeBrowserCrash,
				"failed to acquire page from pool",
				r.err,
			)
		}
		return r.page, nil
	case <-ctx.Done():
		// The page is returned to the pool as soon as it is handed out.
		go func() {
			if r := <-ch; r.err == nil {
				s.pagePool.Put(r.page)
			}
		}()
		return nil, categorizeError(ctx.Err(), "waiting for a free browser page")
	}
}

// Fail marks the session's page as unhealthy when err points at the page
// rather than at the search.
func (sess *Session) Fail(err error) {
	if err != nil && pageFailure(err) {
		sess.failed = true
	}
}

// Close stops request interception, blanks the page and returns it to the
// pool. A page that has been used too often, for too long or with too many
// failures is closed instead and a fresh one is created on the next Open.
// It is safe to call more than once.
func (sess *Session) Close() {
	if sess.closed {
		return
	}
	sess.closed = true
	s := sess.scraper
	defer s.activePages.Add(-1)

	if sess.router != nil {
		_ = sess.router.Stop()
	}
	if navErr := sess.page.Navigate("about:blank"); navErr != nil {
		slog.Warn("cleanup: failed to navigate to about:blank",
			"error", navErr,
		)
		sess.failed = true
	}

	if s.health.record(sess.page.TargetID, !sess.failed) {
		slog.Info("retiring browser page", "target", sess.page.TargetID)
		_ = sess.page.Close()
		s.pagePool.Put(nil)
		return
	}
	s.pagePool.Put(sess.page)
}

// IsSearchURL reports whether u is a Google Maps search results page.
func IsSearchURL(u string) bool {
	return strings.Contains(u, "://www.google.com/maps/search")
}

// SearchURL returns the Maps search URL for query.
func SearchURL(query string) string {
	return SearchURLPrefix + url.PathEscape(query)
}

// dismissConsent clicks through consent.google.com when it intercepts the
// first navigation. It reports whether a button was clicked.
func dismissConsent(p *rod.Page) bool {
	const js = `() => {
		if (!location.hostname.startsWith("consent.")) return false;
		const wanted = /^(accept all|reject all|i agree|agree)$/i;
		for (const b of document.querySelectorAll('button, input[type="submit"]')) {
			const label = (b.innerText || b.value || "").trim();
			if (wanted.test(label)) { b.click(); return true; }
		}
		return false;
	}`
	res, err := p.Eval(js)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// primaryLanguage returns the first tag of an Accept-Language value.
func primaryLanguage(acceptLanguage string) string {
	tag, _, _ := strings.Cut(acceptLanguage, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.TrimSpace(tag)
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
