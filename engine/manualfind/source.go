package manualfind

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
	"github.com/UpkeepAI/upkeep-mvp/pkg/fn"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// browserUA is sent on every outbound request. Manufacturer and search
// sites routinely refuse bare Go user agents.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

const (
	searchTimeout = 10 * time.Second
	headTimeout   = 5 * time.Second
	maxPageBytes  = 2 * 1024 * 1024
)

// Source is one strategy for locating an appliance manual online. A
// Source absorbs its own transport errors: a returned error means "this
// strategy found nothing" and the engine moves on to the next one.
type Source interface {
	Name() string
	Find(ctx context.Context, app domain.Appliance) (domain.SearchResult, error)
}

func newSearchClient() *http.Client {
	return &http.Client{
		Timeout:   searchTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// fetchPage GETs a page with the browser UA and a capped body, retrying
// once on transient failure.
func fetchPage(ctx context.Context, client *http.Client, pageURL string) ([]byte, error) {
	result := fn.Retry(ctx, fn.RetryOpts{
		MaxAttempts: 2,
		InitialWait: time.Second,
		MaxWait:     5 * time.Second,
	}, func(ctx context.Context) fn.Result[[]byte] {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return fn.Err[[]byte](err)
		}
		req.Header.Set("User-Agent", browserUA)
		resp, err := client.Do(req)
		if err != nil {
			return fn.Err[[]byte](err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fn.Errf[[]byte]("status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		if err != nil {
			return fn.Err[[]byte](err)
		}
		return fn.Ok(body)
	})
	return result.Unwrap()
}

// defaultTitle is used when a source anchor carries no usable text.
func defaultTitle(app domain.Appliance) string {
	return fmt.Sprintf("%s %s Manual", app.Brand, app.ModelNumber)
}
