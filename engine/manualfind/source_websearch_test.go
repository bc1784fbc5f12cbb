package manualfind

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// newTestWebSearchSource points the source at a single fake results page.
func newTestWebSearchSource(ts *httptest.Server, resultsPath string) *WebSearchSource {
	s := NewWebSearchSource()
	s.client = ts.Client()
	s.headClient = ts.Client()
	s.endpoints = func(string) []string { return []string{ts.URL + resultsPath} }
	return s
}

func TestWebSearchResolvesRedirectAnchor(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	manualURL := ts.URL + "/files/manual.pdf"
	mux.HandleFunc("/results", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a href="/url?q=%s&sa=U&ved=xyz">Samsung RF28R7351SG owner manual</a>
		</body></html>`, url.QueryEscape(manualURL))
	})
	mux.HandleFunc("/files/manual.pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
	})

	s := newTestWebSearchSource(ts, "/results")
	res, err := s.Find(context.Background(), domain.Appliance{
		Brand: "Samsung", ModelNumber: "RF28R7351SG", Name: "Refrigerator",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if res.URL != manualURL {
		t.Errorf("URL = %q, want %q", res.URL, manualURL)
	}
	if res.Title != "Samsung RF28R7351SG owner manual" {
		t.Errorf("Title = %q", res.Title)
	}
}

func TestWebSearchHarvestsInlinePDFURL(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	manualURL := ts.URL + "/docs/guide.pdf"
	mux.HandleFunc("/results", func(w http.ResponseWriter, _ *http.Request) {
		// No anchors at all; the URL only appears in page text.
		fmt.Fprintf(w, `<html><body><p>Download at %s today</p></body></html>`, manualURL)
	})
	mux.HandleFunc("/docs/guide.pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
	})

	s := newTestWebSearchSource(ts, "/results")
	res, err := s.Find(context.Background(), domain.Appliance{Brand: "LG", ModelNumber: "WM3400CW"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if res.URL != manualURL {
		t.Errorf("URL = %q, want %q", res.URL, manualURL)
	}
	if res.Title != "LG WM3400CW Manual" {
		t.Errorf("Title = %q", res.Title)
	}
}

func TestWebSearchSkipsNonPDFCandidates(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	htmlURL := ts.URL + "/fake/manual.pdf"
	mux.HandleFunc("/results", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><a href="%s">manual</a></body></html>`, htmlURL)
	})
	mux.HandleFunc("/fake/manual.pdf", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})

	s := newTestWebSearchSource(ts, "/results")
	if _, err := s.Find(context.Background(), domain.Appliance{Brand: "GE"}); err == nil {
		t.Error("expected miss when HEAD reports non-PDF")
	}
}

func TestScrapeCandidatesDedupes(t *testing.T) {
	html := []byte(`<html><body>
		<a href="https://example.com/a.pdf">one</a>
		<a href="https://example.com/a.pdf">two</a>
		text mention https://example.com/a.pdf and https://example.com/b.pdf
	</body></html>`)

	got := scrapeCandidates(html)
	urls := make(map[string]int)
	for _, c := range got {
		urls[c.url]++
	}
	if urls["https://example.com/a.pdf"] != 1 {
		t.Errorf("a.pdf appeared %d times", urls["https://example.com/a.pdf"])
	}
	if urls["https://example.com/b.pdf"] != 1 {
		t.Errorf("b.pdf appeared %d times", urls["https://example.com/b.pdf"])
	}
}
