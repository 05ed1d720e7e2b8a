package scraper

import (
	"math"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/mapscrape/models"
)

// Page retirement thresholds. A page is closed and replaced by a fresh one
// once any of them is reached.
const (
	retireErrScore = 3.0
	retireUses     = 50
	retireAge      = 50 * time.Minute
)

// pageHealth scores one pooled page. Each failed session adds 1, each
// successful one takes off 0.5 down to 0.
type pageHealth struct {
	errScore float64
	uses     int
	created  time.Time
}

// healthTracker keeps a pageHealth per browser target.
type healthTracker struct {
	mu    sync.Mutex
	pages map[proto.TargetTargetID]*pageHealth
	now   func() time.Time
}

func newHealthTracker() *healthTracker {
	return &healthTracker{
		pages: make(map[proto.TargetTargetID]*pageHealth),
		now:   time.Now,
	}
}

// register starts the age clock of a freshly created page.
func (t *healthTracker) register(id proto.TargetTargetID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, found := t.pages[id]; !found {
		t.pages[id] = &pageHealth{created: t.now()}
	}
}

// record scores a finished session on page id and reports whether the page
// should be retired. A retired page is forgotten.
func (t *healthTracker) record(id proto.TargetTargetID, ok bool) (retire bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, found := t.pages[id]
	if !found {
		// Not seen at creation; age counts from now.
		h = &pageHealth{created: t.now()}
		t.pages[id] = h
	}
	h.uses++
	if ok {
		h.errScore = math.Max(0, h.errScore-0.5)
	} else {
		h.errScore += 1.0
	}

	retire = h.errScore >= retireErrScore ||
		h.uses >= retireUses ||
		t.now().Sub(h.created) >= retireAge
	if retire {
		delete(t.pages, id)
	}
	return retire
}

// pageFailure reports whether err means the page itself is suspect, as
// opposed to a search that simply had no results.
func pageFailure(err error) bool {
	switch models.CodeOf(err) {
	case models.ErrCodeBrowserCrash, models.ErrCodeNavigation, models.ErrCodeTimeout:
		return true
	}
	return false
}
