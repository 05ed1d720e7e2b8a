package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/use-agent/mapscrape/config"
	"github.com/use-agent/mapscrape/engine"
)

// fakeSurface is a scripted engine.Surface. The detail panel switches to
// panels[href] as soon as an entry is activated.
type fakeSurface struct {
	feed     bool
	entries  []engine.Entry
	panels   map[string]string
	failing  map[string]error
	panicky  map[string]bool
	stuck    map[string]bool // Activate or Submit blocks until its context ends
	current  string
	extent   func(scrolls int) int
	endAfter int // end marker visible once scrolls reaches this; 0 = never

	scrolls   int
	activated []string
	submitted []string
	onSubmit  func(f *fakeSurface, query string) error
}

func newFakeSurface(ps ...place) *fakeSurface {
	f := &fakeSurface{
		feed:    true,
		panels:  map[string]string{},
		failing: map[string]error{},
		panicky: map[string]bool{},
		stuck:   map[string]bool{},
		extent:  func(int) int { return 1000 },
	}
	f.load(ps)
	return f
}

func (f *fakeSurface) load(ps []place) {
	f.entries = f.entries[:0]
	for i, p := range ps {
		f.entries = append(f.entries, engine.Entry{Index: i, Href: p.href})
		f.panels[p.href] = p.panel
	}
}

func (f *fakeSurface) FeedPresent(context.Context) (bool, error) { return f.feed, nil }

func (f *fakeSurface) ScrollFeed(context.Context) error {
	f.scrolls++
	return nil
}

func (f *fakeSurface) FeedExtent(context.Context) (int, error) { return f.extent(f.scrolls), nil }

func (f *fakeSurface) EndOfResults(context.Context) (bool, error) {
	return f.endAfter > 0 && f.scrolls >= f.endAfter, nil
}

func (f *fakeSurface) Entries(context.Context) ([]engine.Entry, error) {
	out := make([]engine.Entry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeSurface) Activate(ctx context.Context, e engine.Entry) error {
	f.activated = append(f.activated, e.Href)
	if f.panicky[e.Href] {
		panic("detached node")
	}
	if f.stuck[e.Href] {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := f.failing[e.Href]; err != nil {
		return err
	}
	f.current = f.panels[e.Href]
	return nil
}

func (f *fakeSurface) PanelHTML(context.Context) (string, error) { return f.current, nil }

func (f *fakeSurface) Submit(ctx context.Context, query string) error {
	f.submitted = append(f.submitted, query)
	if f.stuck[query] {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.onSubmit != nil {
		return f.onSubmit(f, query)
	}
	return nil
}

type place struct {
	href  string
	panel string
}

func placeAt(title, address string) place {
	return place{
		href: "https://www.google.com/maps/place/" + title,
		panel: fmt.Sprintf(`<div role="main"><h1 class="DUwDvf">%s</h1>`+
			`<button data-item-id="address"><div class="Io6YTe">%s</div></button></div>`, title, address),
	}
}

func places(n int) []place {
	out := make([]place, n)
	for i := range out {
		out[i] = placeAt(fmt.Sprintf("Place %d", i), fmt.Sprintf("%d Main St", i))
	}
	return out
}

// fastConfig keeps the production limits but shrinks every wait.
func fastConfig() config.ScraperConfig {
	return config.ScraperConfig{
		MaxScrolls:    30,
		NoGrowthLimit: 3,
		ScrollSettle:  5 * time.Millisecond,
		MaxEntries:    50,
		EntrySettle:   30 * time.Millisecond,
		SubmitSettle:  30 * time.Millisecond,
		PollInterval:  time.Millisecond,
		ActionTimeout: 50 * time.Millisecond,
	}
}
