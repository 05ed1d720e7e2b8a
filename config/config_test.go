package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Scraper.MaxScrolls != 30 {
		t.Errorf("MaxScrolls = %d, want 30", cfg.Scraper.MaxScrolls)
	}
	if cfg.Scraper.NoGrowthLimit != 3 {
		t.Errorf("NoGrowthLimit = %d, want 3", cfg.Scraper.NoGrowthLimit)
	}
	if cfg.Scraper.MaxEntries != 50 {
		t.Errorf("MaxEntries = %d, want 50", cfg.Scraper.MaxEntries)
	}
	durations := []struct {
		name      string
		got, want time.Duration
	}{
		{"ScrollSettle", cfg.Scraper.ScrollSettle, 1500 * time.Millisecond},
		{"EntrySettle", cfg.Scraper.EntrySettle, 2500 * time.Millisecond},
		{"EntryDelay", cfg.Scraper.EntryDelay, 300 * time.Millisecond},
		{"SubmitSettle", cfg.Scraper.SubmitSettle, 3 * time.Second},
		{"VariantDelay", cfg.Scraper.VariantDelay, 2 * time.Second},
		{"ActionTimeout", cfg.Scraper.ActionTimeout, 10 * time.Second},
	}
	for _, d := range durations {
		if d.got != d.want {
			t.Errorf("%s = %v, want %v", d.name, d.got, d.want)
		}
	}
	if cfg.Export.FilenamePrefix != "google-maps-data" {
		t.Errorf("FilenamePrefix = %q, want %q", cfg.Export.FilenamePrefix, "google-maps-data")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAPSCRAPE_MAX_ENTRIES", "10")
	t.Setenv("MAPSCRAPE_ENTRY_SETTLE", "4s")
	t.Setenv("MAPSCRAPE_HEADLESS", "false")
	t.Setenv("MAPSCRAPE_API_KEYS", " a, ,b ")
	t.Setenv("MAPSCRAPE_MAX_SCROLLS", "not-a-number")

	cfg := Load()

	if cfg.Scraper.MaxEntries != 10 {
		t.Errorf("MaxEntries = %d, want 10", cfg.Scraper.MaxEntries)
	}
	if cfg.Scraper.EntrySettle != 4*time.Second {
		t.Errorf("EntrySettle = %v, want 4s", cfg.Scraper.EntrySettle)
	}
	if cfg.Browser.Headless {
		t.Error("Headless = true, want false")
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[0] != "a" || cfg.Auth.APIKeys[1] != "b" {
		t.Errorf("APIKeys = %q, want [a b]", cfg.Auth.APIKeys)
	}
	if cfg.Scraper.MaxScrolls != 30 {
		t.Errorf("MaxScrolls = %d, want fallback 30 for unparsable value", cfg.Scraper.MaxScrolls)
	}
}
