// Package manualfind locates appliance user-manual PDFs on the web. It
// layers several search strategies (AI-assisted lookup, manufacturer
// site probes, manual-library sites, general web search scraping) behind
// one engine that returns the first validated candidate. The engine
// never returns an error to its caller: a failed strategy just means the
// next one runs.
package manualfind

import (
	"context"
	"log/slog"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
)

// Options configures the search engine.
type Options struct {
	// LLM enables the AI-assisted strategy when non-nil and configured.
	LLM Completer
	// PreferAI places the AI strategy first. Without a configured LLM
	// this has no effect.
	PreferAI bool
}

// Engine orchestrates manual search strategies in order.
type Engine struct {
	sources []Source
	logger  *slog.Logger
}

// NewEngine builds an Engine with the standard strategy order: AI lookup
// (when configured and preferred), manufacturer direct probe, manual
// libraries, then general web search.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	var sources []Source
	if opts.PreferAI && opts.LLM != nil && opts.LLM.Enabled() {
		sources = append(sources, NewAISource(opts.LLM))
	}
	sources = append(sources,
		NewBrandSiteSource(),
		NewLibrarySource(),
		NewWebSearchSource(),
	)

	return &Engine{sources: sources, logger: logger}
}

// NewEngineWithSources builds an Engine over explicit sources.
func NewEngineWithSources(logger *slog.Logger, sources ...Source) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{sources: sources, logger: logger}
}

// Search runs the strategies in order and returns the first hit. With
// neither brand nor model number there is nothing worth searching for
// and Search returns immediately without any network calls. The second
// return is false when every strategy came up empty.
func (e *Engine) Search(ctx context.Context, app domain.Appliance) (domain.SearchResult, bool) {
	var zero domain.SearchResult
	if !domain.HasSearchTerms(app) {
		return zero, false
	}

	for _, src := range e.sources {
		if ctx.Err() != nil {
			return zero, false
		}

		res, err := src.Find(ctx, app)
		if err != nil {
			e.logger.Debug("manual search strategy found nothing",
				"strategy", src.Name(), "brand", app.Brand, "model", app.ModelNumber, "err", err)
			continue
		}

		if res.Title == "" {
			res.Title = defaultTitle(app)
		}
		e.logger.Info("manual located",
			"strategy", src.Name(), "url", res.URL, "support_page", res.Note != "")
		return res, true
	}

	return zero, false
}
