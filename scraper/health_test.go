package scraper

import (
	"errors"
	"testing"
	"time"

	"github.com/use-agent/mapscrape/models"
)

func TestHealthTracker_Retire(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []bool
		age      time.Duration
		want     bool
	}{
		{"healthy", []bool{true, true, false}, 0, false},
		{"three failures", []bool{false, false, false}, 0, true},
		{"success offsets failure", []bool{false, false, true, false}, 0, false},
		{"too old", []bool{true}, retireAge, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			now := start
			h := newHealthTracker()
			h.now = func() time.Time { return now }
			h.register("page-1")

			var got bool
			for i, ok := range tt.outcomes {
				if i == len(tt.outcomes)-1 {
					now = start.Add(tt.age)
				}
				got = h.record("page-1", ok)
			}
			if got != tt.want {
				t.Errorf("retire = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthTracker_AgeCountsFromCreation(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := created
	h := newHealthTracker()
	h.now = func() time.Time { return now }
	h.register("page-1")

	// The first session on the page ends an hour after the page opened.
	now = created.Add(time.Hour)
	if !h.record("page-1", true) {
		t.Errorf("page alive for %v not retired (limit %v)", now.Sub(created), retireAge)
	}
}

func TestHealthTracker_RegisterKeepsFirstCreation(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := created
	h := newHealthTracker()
	h.now = func() time.Time { return now }
	h.register("page-1")

	now = created.Add(10 * time.Minute)
	h.register("page-1")
	if got := h.pages["page-1"].created; !got.Equal(created) {
		t.Errorf("created = %v, want %v", got, created)
	}
}

func TestHealthTracker_RetiresAfterMaxUses(t *testing.T) {
	h := newHealthTracker()
	for i := 1; i < retireUses; i++ {
		if h.record("page-1", true) {
			t.Fatalf("retired after %d uses", i)
		}
	}
	if !h.record("page-1", true) {
		t.Errorf("not retired after %d uses", retireUses)
	}
	if _, ok := h.pages["page-1"]; ok {
		t.Error("retired page still tracked")
	}
}

func TestPageFailure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{models.NewScrapeError(models.ErrCodeBrowserCrash, "crash", nil), true},
		{models.NewScrapeError(models.ErrCodeNavigation, "nav", nil), true},
		{models.NewScrapeError(models.ErrCodeFeedNotFound, "no feed", nil), false},
		{models.NewScrapeError(models.ErrCodeNoEntries, "empty", nil), false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := pageFailure(tt.err); got != tt.want {
			t.Errorf("pageFailure(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
