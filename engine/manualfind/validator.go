package manualfind

import (
	"net/url"
	"strings"
)

// searchPageMarkers flag URLs that point at a search engine's own result
// or redirect pages rather than a real document host.
var searchPageMarkers = []string{
	"google.com/search",
	"google.com/url",
	"bing.com/search",
	"bing.com/ck/a",
	"duckduckgo.com/html",
	"search.yahoo.com",
	"search.brave.com",
}

// trackingParams are search-engine tracking/query parameters that survive
// into scraped hrefs. A URL carrying one is a results-page artifact, not
// a manual.
var trackingParams = []string{"sa", "ved", "usg", "tbm", "ei", "oq"}

// AcceptPDFURL reports whether a candidate URL string is an acceptable,
// fetchable manual-PDF link. Rules run in order and any reject is final;
// structural rejects (search pages, redirect shapes) run before the
// permissive PDF-indicator check because a search URL can carry "pdf" as
// a query term.
func AcceptPDFURL(raw string) bool {
	if raw == "" {
		return false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}

	// Percent-decode for substring checks; decode failures are non-fatal
	// and leave the original string in place.
	decoded := raw
	if d, err := url.QueryUnescape(raw); err == nil {
		decoded = d
	}
	lower := strings.ToLower(decoded)

	u, err := url.Parse(decoded)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return false
	}

	for _, m := range searchPageMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}

	if strings.Contains(lower, "/url?q=") || strings.Contains(lower, "/url?url=") {
		return false
	}
	if strings.Contains(strings.ToLower(u.Path), "redirect") {
		return false
	}

	path := strings.ToLower(u.Path)
	if !strings.HasSuffix(path, ".pdf") && !strings.Contains(path, "/pdf") {
		return false
	}

	if strings.Contains(lower, "search?q=") {
		return false
	}
	q := u.Query()
	for _, p := range trackingParams {
		if q.Has(p) {
			return false
		}
	}

	return true
}

// plausibleURL is the looser syntactic check used for support-page
// fallbacks: scheme plus a dotted host is enough.
func plausibleURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Host != "" && strings.Contains(u.Host, ".")
}
