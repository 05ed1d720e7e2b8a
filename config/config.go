package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Export    ExportConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity. Each page hosts one scrape job at
	// a time, so this is also the number of jobs that can run at once.
	MaxPages int // default: 2

	// DefaultProxy is the proxy URL for all browser traffic.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// AcceptLanguage pins the UI language. Several field heuristics match
	// English labels ("Phone:", "reviews"), so this defaults to English.
	AcceptLanguage string // default: "en-US,en;q=0.9"
}

// ScraperConfig controls the pagination and extraction pipeline.
type ScraperConfig struct {
	// StartURL is opened before the first query is submitted.
	StartURL string // default: "https://www.google.com/maps/search/"

	// MaxScrolls is the pagination iteration budget.
	MaxScrolls int // default: 30

	// NoGrowthLimit stops pagination after this many consecutive
	// iterations without feed growth.
	NoGrowthLimit int // default: 3

	// ScrollSettle bounds the wait for the feed to grow after each scroll.
	ScrollSettle time.Duration // default: 1.5s

	// MaxEntries caps the entries extracted per query.
	MaxEntries int // default: 50

	// EntrySettle bounds the wait for the detail panel to repaint after an
	// entry is activated.
	EntrySettle time.Duration // default: 2.5s

	// EntryDelay is the pause between consecutive entries.
	EntryDelay time.Duration // default: 300ms

	// SubmitSettle bounds the wait for results after a query is submitted.
	SubmitSettle time.Duration // default: 3s

	// VariantDelay is the pause between consecutive batch variants.
	VariantDelay time.Duration // default: 2s

	// PollInterval is how often readiness predicates are re-evaluated.
	PollInterval time.Duration // default: 100ms

	// NavigationTimeout is the max time for opening the start page.
	NavigationTimeout time.Duration // default: 30s

	// ActionTimeout bounds each single interaction with the page (a click,
	// typing a query, one script evaluation). rod retries a covered or
	// disabled element until its context ends.
	ActionTimeout time.Duration // default: 10s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the batch result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached batches.
	MaxEntries int // default: 200
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// ExportConfig controls CSV export.
type ExportConfig struct {
	// OutputDir is where exported CSV files are written.
	OutputDir string // default: "exports"

	// FilenamePrefix prefixes synthesized filenames.
	FilenamePrefix string // default: "google-maps-data"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MAPSCRAPE_HOST", "0.0.0.0"),
			Port: envIntOr("MAPSCRAPE_PORT", 8080),
			Mode: envOr("MAPSCRAPE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("MAPSCRAPE_HEADLESS", true),
			MaxPages:       envIntOr("MAPSCRAPE_MAX_PAGES", 2),
			DefaultProxy:   os.Getenv("MAPSCRAPE_PROXY"),
			NoSandbox:      envBoolOr("MAPSCRAPE_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("MAPSCRAPE_BROWSER_BIN"),
			AcceptLanguage: envOr("MAPSCRAPE_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
		},
		Scraper: ScraperConfig{
			StartURL:          envOr("MAPSCRAPE_START_URL", "https://www.google.com/maps/search/"),
			MaxScrolls:        envIntOr("MAPSCRAPE_MAX_SCROLLS", 30),
			NoGrowthLimit:     envIntOr("MAPSCRAPE_NO_GROWTH_LIMIT", 3),
			ScrollSettle:      envDurationOr("MAPSCRAPE_SCROLL_SETTLE", 1500*time.Millisecond),
			MaxEntries:        envIntOr("MAPSCRAPE_MAX_ENTRIES", 50),
			EntrySettle:       envDurationOr("MAPSCRAPE_ENTRY_SETTLE", 2500*time.Millisecond),
			EntryDelay:        envDurationOr("MAPSCRAPE_ENTRY_DELAY", 300*time.Millisecond),
			SubmitSettle:      envDurationOr("MAPSCRAPE_SUBMIT_SETTLE", 3*time.Second),
			VariantDelay:      envDurationOr("MAPSCRAPE_VARIANT_DELAY", 2*time.Second),
			PollInterval:      envDurationOr("MAPSCRAPE_POLL_INTERVAL", 100*time.Millisecond),
			NavigationTimeout: envDurationOr("MAPSCRAPE_NAV_TIMEOUT", 30*time.Second),
			ActionTimeout:     envDurationOr("MAPSCRAPE_ACTION_TIMEOUT", 10*time.Second),
			BlockedResourceTypes: envSliceOr("MAPSCRAPE_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MAPSCRAPE_AUTH_ENABLED", true),
			APIKeys: envSliceOr("MAPSCRAPE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MAPSCRAPE_RATE_RPS", 2.0),
			Burst:             envIntOr("MAPSCRAPE_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("MAPSCRAPE_CACHE_MAX_ENTRIES", 200),
		},
		Log: LogConfig{
			Level:  envOr("MAPSCRAPE_LOG_LEVEL", "info"),
			Format: envOr("MAPSCRAPE_LOG_FORMAT", "json"),
		},
		Export: ExportConfig{
			OutputDir:      envOr("MAPSCRAPE_OUTPUT_DIR", "exports"),
			FilenamePrefix: envOr("MAPSCRAPE_FILENAME_PREFIX", "google-maps-data"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
