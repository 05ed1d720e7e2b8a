package engine

import "context"

// Surface is the host page the pipeline drives: a scrollable result feed
// whose entries, when activated, repaint one shared detail panel.
//
// Implementations are not safe for concurrent use. Activating two entries at
// once would race on the detail panel, so callers must drive a Surface from
// a single goroutine, strictly one entry at a time.
type Surface interface {
	// FeedPresent reports whether the result feed container exists.
	FeedPresent(ctx context.Context) (bool, error)

	// ScrollFeed scrolls the feed to its current maximum extent.
	ScrollFeed(ctx context.Context) error

	// FeedExtent returns the feed's current scrollable extent.
	FeedExtent(ctx context.Context) (int, error)

	// EndOfResults reports whether the "end of results" marker is visible.
	EndOfResults(ctx context.Context) (bool, error)

	// Entries lists the activatable entries in feed order.
	Entries(ctx context.Context) ([]Entry, error)

	// Activate selects entry, which starts repainting the detail panel.
	// It returns once the click is dispatched, not once the panel is ready.
	Activate(ctx context.Context, entry Entry) error

	// PanelHTML returns an HTML snapshot of the detail panel.
	PanelHTML(ctx context.Context) (string, error)

	// Submit delivers a query into the page's search box and triggers
	// navigation. It returns once dispatched, not once results render.
	Submit(ctx context.Context, query string) error
}

// Entry is one result in the feed.
type Entry struct {
	// Index is the entry's position in feed order.
	Index int

	// Href is the entry's canonical place link.
	Href string
}
