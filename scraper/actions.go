package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// defaultActionTimeout is the per-action deadline when the config leaves
// it unset.
const defaultActionTimeout = 10 * time.Second

// actionContext derives the deadline for one page interaction.
func actionContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// act returns the session page bound to a fresh per-action deadline.
// Elements found through it inherit the deadline, so a click on a covered
// entry or typing into a disabled box fails instead of retrying forever.
// The caller must call cancel once the action is done.
func (sess *Session) act(ctx context.Context) (p *rod.Page, cancel context.CancelFunc) {
	actionCtx, cancel := actionContext(ctx, sess.scraper.scraperCfg.ActionTimeout)
	return sess.page.Context(actionCtx), cancel
}
