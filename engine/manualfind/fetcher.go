package manualfind

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	fetchTimeout = 30 * time.Second
	// maxManualBytes caps a manual download. Owner manuals rarely exceed
	// a few tens of megabytes.
	maxManualBytes = 50 * 1024 * 1024
)

var pdfMagic = []byte("%PDF")

// Fetcher downloads manual PDFs into memory.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the standard download timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:   fetchTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewFetcherWithClient creates a Fetcher over an explicit client.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch downloads url and verifies the payload really is a PDF: either
// the Content-Type says so or the body starts with the %PDF magic. Any
// failure yields a nil file and an error the caller may log and drop.
func (f *Fetcher) Fetch(ctx context.Context, url, suggestedName string) (*domain.FetchedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch manual: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manual: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch manual: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManualBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch manual: read body: %w", err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "pdf") && !bytes.HasPrefix(body, pdfMagic) {
		return nil, domain.ErrNotPDF
	}

	name := strings.ReplaceAll(suggestedName, " ", "_") + "_manual.pdf"
	return &domain.FetchedFile{Name: name, Bytes: body}, nil
}
