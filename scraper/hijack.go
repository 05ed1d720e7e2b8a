package scraper

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypes maps the names accepted in MAPSCRAPE_BLOCKED_RESOURCES to
// CDP resource types.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
}

// trackerHosts are ad and analytics hosts Maps pulls in that never affect
// the result feed or the detail panel.
var trackerHosts = []string{
	"doubleclick.net",
	"googlesyndication.com",
	"googleadservices.com",
	"google-analytics.com",
	"googletagmanager.com",
}

func isTrackerHost(host string) bool {
	host = strings.ToLower(host)
	for _, t := range trackerHosts {
		if host == t || strings.HasSuffix(host, "."+t) {
			return true
		}
	}
	return false
}

// requestFilter decides which requests a session page never sends.
type requestFilter map[proto.NetworkResourceType]bool

func newRequestFilter(names []string) requestFilter {
	f := make(requestFilter, len(names))
	for _, name := range names {
		if rt, ok := resourceTypes[name]; ok {
			f[rt] = true
		}
	}
	return f
}

func (f requestFilter) blocks(rt proto.NetworkResourceType, host string) bool {
	return f[rt] || isTrackerHost(host)
}

// setupHijack intercepts every request on page and fails the ones the
// filter blocks. The returned router must be stopped by the caller.
func setupHijack(page *rod.Page, blockedTypes []string) *rod.HijackRouter {
	filter := newRequestFilter(blockedTypes)

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if filter.blocks(h.Request.Type(), h.Request.URL().Hostname()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop.
	go router.Run()
	return router
}
