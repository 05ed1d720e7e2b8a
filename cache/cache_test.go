package cache

import (
	"testing"
	"time"

	"github.com/use-agent/mapscrape/models"
)

func TestKey(t *testing.T) {
	a := Key("Cafe", []string{"Paris", "Lyon"})
	if b := Key("  cafe ", []string{"Paris", " Lyon"}); a != b {
		t.Error("keys should ignore term case and surrounding space")
	}
	if b := Key("cafe", []string{"Lyon", "Paris"}); a == b {
		t.Error("variant order must change the key")
	}
	if b := Key("cafe", []string{"ParisLyon"}); a == b {
		t.Error("variant boundaries must change the key")
	}
}

func TestCache_GetHonoursMaxAge(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := newCache(10)
	c.now = func() time.Time { return now }

	batch := &models.ScrapeBatch{Term: "cafe", Status: models.StatusCompleted}
	c.Set("k", batch)

	if _, hit := c.Get("k", 0); hit {
		t.Error("max_age 0 must skip the cache")
	}

	now = now.Add(30 * time.Second)
	if got, hit := c.Get("k", 60_000); !hit || got != batch {
		t.Errorf("Get = %v, %v; want cached batch", got, hit)
	}
	if _, hit := c.Get("k", 10_000); hit {
		t.Error("entry older than max_age must miss")
	}
	if _, hit := c.Get("other", 60_000); hit {
		t.Error("unknown key must miss")
	}
}

func TestCache_SkipsFailedBatches(t *testing.T) {
	c := newCache(10)
	c.Set("k", &models.ScrapeBatch{Status: models.StatusFailed})
	c.Set("nil", nil)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := newCache(2)
	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, &models.ScrapeBatch{Status: models.StatusCompleted})
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, hit := c.Get("c", 60_000); !hit {
		t.Error("most recent entry must survive eviction")
	}
}

func TestCache_EvictOlderThan(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := newCache(10)
	c.now = func() time.Time { return now }
	c.Set("old", &models.ScrapeBatch{Status: models.StatusCompleted})

	now = now.Add(2 * time.Hour)
	c.Set("new", &models.ScrapeBatch{Status: models.StatusCompleted})
	c.evictOlderThan(time.Hour)

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
