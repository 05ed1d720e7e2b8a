package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/mapscrape/engine"
)

// Host UI selectors. These track Google's markup and are expected to drift.
const (
	feedSelector      = `div[role="feed"]`
	entrySelector     = `a.hfpxzc`
	searchBoxSelector = `#searchboxinput`
	endMarkerText     = "You've reached the end"
)

// lookupTimeout bounds a single element lookup, which rod otherwise
// retries until the context ends.
const lookupTimeout = 3 * time.Second

var _ engine.Surface = (*Session)(nil)

// FeedPresent reports whether the result feed container exists.
func (sess *Session) FeedPresent(ctx context.Context) (bool, error) {
	p, cancel := sess.act(ctx)
	defer cancel()
	has, _, err := p.Has(feedSelector)
	return has, err
}

// ScrollFeed scrolls the feed container to its current bottom.
func (sess *Session) ScrollFeed(ctx context.Context) error {
	p, cancel := sess.act(ctx)
	defer cancel()
	res, err := p.Eval(`(sel) => {
		const feed = document.querySelector(sel);
		if (!feed) return false;
		feed.scrollTo(0, feed.scrollHeight);
		return true;
	}`, feedSelector)
	if err != nil {
		return err
	}
	if !res.Value.Bool() {
		return fmt.Errorf("feed %s not found", feedSelector)
	}
	return nil
}

// FeedExtent returns the feed's scrollHeight.
func (sess *Session) FeedExtent(ctx context.Context) (int, error) {
	p, cancel := sess.act(ctx)
	defer cancel()
	res, err := p.Eval(`(sel) => {
		const feed = document.querySelector(sel);
		return feed ? feed.scrollHeight : -1;
	}`, feedSelector)
	if err != nil {
		return 0, err
	}
	if n := res.Value.Int(); n >= 0 {
		return n, nil
	}
	return 0, fmt.Errorf("feed %s not found", feedSelector)
}

// EndOfResults reports whether the feed shows its end-of-list notice.
func (sess *Session) EndOfResults(ctx context.Context) (bool, error) {
	p, cancel := sess.act(ctx)
	defer cancel()
	res, err := p.Eval(`(text) => {
		const nodes = document.querySelectorAll('[role="heading"][aria-level="3"], span.HlvSq');
		for (const n of nodes) {
			if ((n.textContent || "").includes(text)) return true;
		}
		return false;
	}`, endMarkerText)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// Entries lists the place links in feed order.
func (sess *Session) Entries(ctx context.Context) ([]engine.Entry, error) {
	p, cancel := sess.act(ctx)
	defer cancel()
	res, err := p.Eval(`(sel) =>
		Array.from(document.querySelectorAll(sel)).map(a => a.href || "")
	`, entrySelector)
	if err != nil {
		return nil, err
	}

	hrefs := res.Value.Arr()
	entries := make([]engine.Entry, 0, len(hrefs))
	for i, h := range hrefs {
		entries = append(entries, engine.Entry{Index: i, Href: h.Str()})
	}
	return entries, nil
}

// Activate scrolls the entry into view and clicks it within one action
// deadline. The entry is looked up by position and confirmed by href, since
// the feed may have re-rendered since it was enumerated.
func (sess *Session) Activate(ctx context.Context, entry engine.Entry) error {
	p, cancel := sess.act(ctx)
	defer cancel()

	els, err := p.Elements(entrySelector)
	if err != nil {
		return err
	}
	el := pickEntry(els, entry)
	if el == nil {
		return fmt.Errorf("entry %d (%s) is no longer in the feed", entry.Index, entry.Href)
	}

	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll entry into view: %w", err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func pickEntry(els rod.Elements, entry engine.Entry) *rod.Element {
	if entry.Index < len(els) && hrefOf(els[entry.Index]) == entry.Href {
		return els[entry.Index]
	}
	for _, el := range els {
		if hrefOf(el) == entry.Href {
			return el
		}
	}
	return nil
}

func hrefOf(el *rod.Element) string {
	v, err := el.Property("href")
	if err != nil {
		return ""
	}
	return v.Str()
}

// PanelHTML returns the detail panel's outer HTML. The panel is the last
// main region that does not hold the result feed; without one the whole
// document is returned.
func (sess *Session) PanelHTML(ctx context.Context) (string, error) {
	p, cancel := sess.act(ctx)
	defer cancel()
	res, err := p.Eval(`(feedSel) => {
		const mains = Array.from(document.querySelectorAll('div[role="main"]'))
			.filter(m => !m.querySelector(feedSel));
		const panel = mains.length ? mains[mains.length - 1] : document.documentElement;
		return panel.outerHTML;
	}`, feedSelector)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Submit types query into the search box and presses Enter. Without a
// usable search box it navigates straight to the search URL.
func (sess *Session) Submit(ctx context.Context, query string) error {
	if err := sess.typeQuery(ctx, query); err != nil {
		return sess.navigateSearch(ctx, query, err)
	}
	return nil
}

func (sess *Session) typeQuery(ctx context.Context, query string) error {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	box, err := sess.page.Context(lookupCtx).Element(searchBoxSelector)
	if err != nil {
		return fmt.Errorf("search box not found: %w", err)
	}
	p, done := sess.act(ctx)
	defer done()
	box = box.Context(p.GetContext())
	if err := box.SelectAllText(); err != nil {
		return fmt.Errorf("select search text: %w", err)
	}
	if err := box.Input(query); err != nil {
		return fmt.Errorf("type query: %w", err)
	}
	return box.Type(input.Enter)
}

func (sess *Session) navigateSearch(ctx context.Context, query string, cause error) error {
	target := SearchURL(query)
	slog.Debug("search box unusable, navigating to search URL", "url", target, "cause", cause)

	navCtx, cancel := context.WithTimeout(ctx, sess.scraper.scraperCfg.NavigationTimeout)
	defer cancel()
	if err := sess.page.Context(navCtx).Navigate(target); err != nil {
		return categorizeError(err, "navigation to search URL failed")
	}
	return nil
}
