package manualfind

import (
	"net/url"
	"strings"
)

// ResolveHref extracts the true destination from an anchor href scraped
// off a search-result page. Search engines wrap destinations in redirect
// links of the shape /url?q=<target>&... (or a url= query parameter);
// plain absolute hrefs pass through. The resolved URL is only returned
// when it survives AcceptPDFURL. Never panics; any parse failure is
// treated as "no resolution".
func ResolveHref(href string) (string, bool) {
	switch {
	case strings.Contains(href, "/url?q="):
		target := strings.SplitN(href, "/url?q=", 2)[1]
		target = strings.SplitN(target, "&", 2)[0]
		if d, err := url.QueryUnescape(target); err == nil {
			target = d
		}
		if AcceptPDFURL(target) {
			return target, true
		}

	case strings.Contains(href, "url="):
		u, err := url.Parse(href)
		if err != nil {
			return "", false
		}
		target := u.Query().Get("url")
		if target == "" {
			return "", false
		}
		if d, err := url.QueryUnescape(target); err == nil {
			target = d
		}
		if AcceptPDFURL(target) {
			return target, true
		}

	case strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://"):
		if AcceptPDFURL(href) {
			return href, true
		}
	}

	return "", false
}
