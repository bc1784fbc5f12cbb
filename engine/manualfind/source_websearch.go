package manualfind

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
	"golang.org/x/time/rate"
)

// Inline PDF URLs that never surface as anchors: an exact .pdf suffix, or
// a path with a pdf segment.
var (
	pdfSuffixRegex = regexp.MustCompile(`https?://[^\s"'<>]+\.pdf\b`)
	pdfPathRegex   = regexp.MustCompile(`https?://[^\s"'<>]*/pdf[^\s"'<>]*`)
)

// candidate is a scraped URL awaiting content-type confirmation.
type candidate struct {
	url   string
	title string
}

// WebSearchSource scrapes general search-engine result pages. Every
// candidate goes through redirect resolution and validation, and is then
// optionally confirmed with a HEAD request; a HEAD failure must not block
// a URL that visually ends in .pdf.
type WebSearchSource struct {
	client     *http.Client
	headClient *http.Client
	limiter    *rate.Limiter
	endpoints  func(query string) []string
}

// NewWebSearchSource creates the web-search scrape strategy.
func NewWebSearchSource() *WebSearchSource {
	return &WebSearchSource{
		client:     newSearchClient(),
		headClient: &http.Client{Timeout: headTimeout},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 2),
		endpoints: func(query string) []string {
			q := url.QueryEscape(query)
			return []string{
				"https://html.duckduckgo.com/html/?q=" + q,
				"https://www.google.com/search?q=" + q,
			}
		},
	}
}

func (s *WebSearchSource) Name() string { return "web-search" }

func (s *WebSearchSource) Find(ctx context.Context, app domain.Appliance) (domain.SearchResult, error) {
	var zero domain.SearchResult

	query := fmt.Sprintf(`"%s %s %s manual pdf" filetype:pdf`, app.Brand, app.ModelNumber, app.Name)

	for _, endpoint := range s.endpoints(query) {
		if err := s.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		body, err := fetchPage(ctx, s.client, endpoint)
		if err != nil {
			continue
		}

		for _, c := range scrapeCandidates(body) {
			if !s.confirmPDF(ctx, c.url) {
				continue
			}
			title := c.title
			if title == "" {
				title = defaultTitle(app)
			}
			return domain.SearchResult{URL: c.url, Title: title}, nil
		}
	}

	return zero, fmt.Errorf("web-search: nothing for %s %s", app.Brand, app.ModelNumber)
}

// scrapeCandidates pulls candidates out of a results page: anchors first
// (resolved through the redirect decoder), then raw-body regex matches
// for PDF URLs not exposed as anchors.
func scrapeCandidates(html []byte) []candidate {
	var out []candidate
	seen := make(map[string]bool)

	add := func(u, title string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, candidate{url: u, title: title})
		}
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html)); err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if resolved, ok := ResolveHref(href); ok {
				add(resolved, strings.TrimSpace(sel.Text()))
			}
		})
	}

	for _, re := range []*regexp.Regexp{pdfSuffixRegex, pdfPathRegex} {
		for _, m := range re.FindAllString(string(html), 20) {
			if AcceptPDFURL(m) {
				add(m, "")
			}
		}
	}

	return out
}

// confirmPDF issues a HEAD request to check the content type. Network
// failure does not reject an otherwise-plausible .pdf URL.
func (s *WebSearchSource) confirmPDF(ctx context.Context, candidateURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidateURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := s.headClient.Do(req)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(candidateURL), ".pdf")
	}
	resp.Body.Close()

	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "pdf")
}
