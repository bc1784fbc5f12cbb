package manualfind

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// libraryEndpoints are third-party manual-aggregator search pages, probed
// in order with "<brand> <model>" as the query.
var libraryEndpoints = []string{
	"https://www.manualslib.com/srh/?q=",
	"https://www.manua.ls/search?q=",
}

// LibrarySource searches manual-aggregator sites for a PDF.
type LibrarySource struct {
	client    *http.Client
	endpoints []string
}

// NewLibrarySource creates the manual-library probe strategy.
func NewLibrarySource() *LibrarySource {
	return &LibrarySource{client: newSearchClient(), endpoints: libraryEndpoints}
}

func (s *LibrarySource) Name() string { return "library" }

func (s *LibrarySource) Find(ctx context.Context, app domain.Appliance) (domain.SearchResult, error) {
	var zero domain.SearchResult

	query := strings.TrimSpace(app.Brand + " " + app.ModelNumber)
	if query == "" {
		return zero, fmt.Errorf("library: empty query")
	}

	for _, endpoint := range s.endpoints {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		body, err := fetchPage(ctx, s.client, endpoint+url.QueryEscape(query))
		if err != nil {
			continue
		}
		if res, ok := scanAnchorsForPDF(body, app); ok {
			return res, nil
		}
	}

	return zero, fmt.Errorf("library: nothing for %q", query)
}

// scanAnchorsForPDF accepts the first anchor with a validating .pdf href.
func scanAnchorsForPDF(html []byte, app domain.Appliance) (domain.SearchResult, bool) {
	var zero domain.SearchResult
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return zero, false
	}

	var found domain.SearchResult
	var ok bool

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			return true
		}
		if !AcceptPDFURL(href) {
			return true
		}
		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title = defaultTitle(app)
		}
		found = domain.SearchResult{URL: href, Title: title}
		ok = true
		return false
	})

	return found, ok
}
