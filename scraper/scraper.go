package scraper

import (
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/mapscrape/config"
	"github.com/use-agent/mapscrape/models"
)

// Scraper owns one Chromium process and a fixed pool of tabs. Each Session
// holds a tab exclusively, so at most MaxPages searches run at once and
// the rest queue in Open. Scraper is safe for concurrent use; a Session is not.
type Scraper struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	browserCfg  config.BrowserConfig
	scraperCfg  config.ScraperConfig
	activePages atomic.Int32
	queuedJobs  atomic.Int32
	health      *healthTracker
}

// chromeFlags hide the usual automation fingerprints and keep background
// tabs from being throttled while a feed is scrolled.
var chromeFlags = map[flags.Flag]string{
	"disable-blink-features":                 "AutomationControlled",
	"disable-features":                       "AudioServiceOutOfProcess,TranslateUI",
	"disable-popup-blocking":                 "",
	"disable-renderer-backgrounding":         "",
	"disable-background-timer-throttling":    "",
	"disable-backgrounding-occluded-windows": "",
	"disable-dev-shm-usage":                  "",
	"disable-extensions":                     "",
	"no-first-run":                           "",
	// Maps collapses the side panel on narrow windows.
	"window-size": "1366,900",
}

// NewScraper launches Chromium and creates the page pool.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	browser, err := launch(browserCfg)
	if err != nil {
		return nil, err
	}

	slog.Info("page pool created", "maxPages", browserCfg.MaxPages)
	return &Scraper{
		browser:    browser,
		pagePool:   rod.NewPagePool(browserCfg.MaxPages),
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		health:     newHealthTracker(),
	}, nil
}

func launch(cfg config.BrowserConfig) (*rod.Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	l.Delete(flags.Flag("enable-automation"))
	for name, value := range chromeFlags {
		if value == "" {
			l.Set(name)
		} else {
			l.Set(name, value)
		}
	}
	if lang := primaryLanguage(cfg.AcceptLanguage); lang != "" {
		l.Set(flags.Flag("lang"), lang)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	return browser, nil
}

// Stats reports pool occupancy for the health endpoint.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxPages:    s.browserCfg.MaxPages,
		ActivePages: int(s.activePages.Load()),
		QueuedJobs:  int(s.queuedJobs.Load()),
	}
}

// Close closes every idle tab and then the browser. Sessions still open
// when Close is called are torn down with the browser.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down")
	s.pagePool.Cleanup(func(p *rod.Page) {
		if p != nil {
			_ = p.Close()
		}
	})
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser did not close cleanly", "error", err)
	}
	slog.Info("scraper shutdown complete")
}
