// Package pipeline drives the manual acquisition flow end to end:
// locate a manual for an appliance, download it, extract text, mine
// maintenance tasks, and persist the results. Every run completes with
// a Report; a missing manual or an empty extraction is a reported
// outcome, not an error.
package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
	"github.com/UpkeepAI/upkeep-mvp/engine/pdftext"
	"github.com/UpkeepAI/upkeep-mvp/engine/registry"
	"github.com/UpkeepAI/upkeep-mvp/pkg/fn"
	"github.com/UpkeepAI/upkeep-mvp/pkg/metrics"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	// OutcomeTasksExtracted: a manual was found and tasks were mined.
	OutcomeTasksExtracted Outcome = "tasks_extracted"
	// OutcomeManualOnly: a manual was found but yielded no tasks.
	OutcomeManualOnly Outcome = "manual_only"
	// OutcomeNoManual: no manual could be located.
	OutcomeNoManual Outcome = "no_manual"
)

// Report summarizes one pipeline run.
type Report struct {
	Appliance     domain.Appliance       `json:"appliance"`
	Outcome       Outcome                `json:"outcome"`
	Manual        domain.SearchResult    `json:"manual,omitempty"`
	ManualID      string                 `json:"manual_id,omitempty"`
	Tasks         []domain.TaskCandidate `json:"tasks,omitempty"`
	TasksCreated  int                    `json:"tasks_created"`
	ChunksIndexed int                    `json:"chunks_indexed"`
	FetchError    string                 `json:"fetch_error,omitempty"`
	Duration      time.Duration          `json:"duration"`
}

// Finder locates a manual for an appliance.
type Finder interface {
	Search(ctx context.Context, app domain.Appliance) (domain.SearchResult, bool)
}

// Downloader retrieves a manual PDF.
type Downloader interface {
	Fetch(ctx context.Context, url, suggestedName string) (*domain.FetchedFile, error)
}

// TaskMiner extracts maintenance tasks from manual text.
type TaskMiner interface {
	Mine(ctx context.Context, text, applianceType string) []domain.TaskCandidate
}

// Registry is the persistence surface the pipeline writes through.
type Registry interface {
	SaveAppliance(ctx context.Context, app domain.Appliance) error
	SaveManual(ctx context.Context, m registry.ManualRecord) error
	UpdateManualStatus(ctx context.Context, id, status, errMsg string) error
	UpsertTasks(ctx context.Context, applianceID string, tasks []domain.TaskCandidate) (int, error)
}

// ChunkIndexer stores manual text chunks for similarity search.
type ChunkIndexer interface {
	IndexManual(ctx context.Context, manualID string, app domain.Appliance, text string) (int, error)
}

// Pipeline wires the stages together. Store and Indexer are optional;
// when nil the pipeline runs in-memory only.
type Pipeline struct {
	finder  Finder
	fetcher Downloader
	miner   TaskMiner
	store   Registry
	indexer ChunkIndexer
	extract func(ctx context.Context, data []byte) string
	logger  *slog.Logger

	runs     *metrics.Counter
	found    *metrics.Counter
	missed   *metrics.Counter
	tasks    *metrics.Counter
	duration *metrics.Histogram
}

// Config holds pipeline dependencies.
type Config struct {
	Finder  Finder
	Fetcher Downloader
	Miner   TaskMiner
	Store   Registry
	Indexer ChunkIndexer
	Metrics *metrics.Registry
	Logger  *slog.Logger

	// Extract overrides PDF text extraction. Nil uses pdftext.Extract.
	Extract func(ctx context.Context, data []byte) string
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.New()
	}
	extract := cfg.Extract
	if extract == nil {
		extract = pdftext.Extract
	}
	return &Pipeline{
		finder:   cfg.Finder,
		fetcher:  cfg.Fetcher,
		miner:    cfg.Miner,
		store:    cfg.Store,
		indexer:  cfg.Indexer,
		extract:  extract,
		logger:   logger,
		runs:     reg.Counter("upkeep_pipeline_runs_total", "Pipeline runs started"),
		found:    reg.Counter("upkeep_manuals_found_total", "Manuals located by search"),
		missed:   reg.Counter("upkeep_manuals_missed_total", "Searches that found no manual"),
		tasks:    reg.Counter("upkeep_tasks_extracted_total", "Maintenance tasks mined from manuals"),
		duration: reg.Histogram("upkeep_pipeline_duration_seconds", "End-to-end pipeline run duration", nil),
	}
}

// Run executes the full flow for one appliance.
func (p *Pipeline) Run(ctx context.Context, app domain.Appliance) Report {
	start := time.Now()
	p.runs.Inc()
	report := Report{Appliance: app, Outcome: OutcomeNoManual}
	defer func() {
		p.duration.Since(start)
	}()

	search := fn.TracedStage("pipeline.search", func(ctx context.Context, a domain.Appliance) fn.Result[domain.SearchResult] {
		res, ok := p.finder.Search(ctx, a)
		if !ok {
			return fn.Errf[domain.SearchResult]("no manual for %s %s", a.Brand, a.ModelNumber)
		}
		return fn.Ok(res)
	})

	sr := search(ctx, app)
	if sr.IsErr() {
		p.missed.Inc()
		p.logger.Info("no manual found", "appliance", app.Name, "brand", app.Brand, "model", app.ModelNumber)
		report.Duration = time.Since(start)
		return report
	}
	result, _ := sr.Unwrap()

	report.Manual = result
	report.Outcome = OutcomeManualOnly
	report.ManualID = registry.ManualRecordID(result.URL)
	p.found.Inc()
	p.saveFound(ctx, &report, app, result)

	// Support pages are recorded but never downloaded.
	if result.Note != "" {
		report.Duration = time.Since(start)
		return report
	}

	text := p.fetchAndExtract(ctx, &report, app, result)
	if text == "" {
		report.Duration = time.Since(start)
		return report
	}

	mine := fn.TracedStage("pipeline.mine", func(ctx context.Context, t string) fn.Result[[]domain.TaskCandidate] {
		return fn.Ok(p.miner.Mine(ctx, t, app.Type))
	})
	mr := mine(ctx, text)
	candidates, _ := mr.Unwrap()
	report.Tasks = candidates

	if len(candidates) > 0 {
		report.Outcome = OutcomeTasksExtracted
		p.tasks.Add(int64(len(candidates)))
		p.persistTasks(ctx, &report, app, candidates)
	}
	p.indexChunks(ctx, &report, app, text)

	p.logger.Info("pipeline run complete",
		"appliance", app.Name,
		"outcome", string(report.Outcome),
		"tasks", len(report.Tasks),
		"chunks", report.ChunksIndexed)
	report.Duration = time.Since(start)
	return report
}

func (p *Pipeline) saveFound(ctx context.Context, report *Report, app domain.Appliance, result domain.SearchResult) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveAppliance(ctx, app); err != nil {
		p.logger.Warn("save appliance failed", "appliance", app.ID, "err", err)
	}
	rec := registry.ManualRecord{
		ID:            report.ManualID,
		URL:           result.URL,
		SourceSite:    sourceSite(result.URL),
		Brand:         app.Brand,
		ModelNumber:   app.ModelNumber,
		ApplianceID:   app.ID,
		ApplianceType: app.Type,
		Title:         result.Title,
		Note:          result.Note,
		DiscoveredAt:  time.Now(),
		Status:        registry.StatusFound,
	}
	if err := p.store.SaveManual(ctx, rec); err != nil {
		p.logger.Warn("save manual failed", "manual", rec.ID, "err", err)
	}
}

// fetchAndExtract downloads the manual and extracts its text. Returns
// "" when the manual could not be fetched or yielded no text; the
// manual record's status reflects which.
func (p *Pipeline) fetchAndExtract(ctx context.Context, report *Report, app domain.Appliance, result domain.SearchResult) string {
	fetch := fn.TracedStage("pipeline.fetch", func(ctx context.Context, url string) fn.Result[*domain.FetchedFile] {
		return fn.FromPair(p.fetcher.Fetch(ctx, url, app.Name))
	})
	fr := fetch(ctx, result.URL)
	if fr.IsErr() {
		_, err := fr.Unwrap()
		report.FetchError = err.Error()
		p.logger.Warn("manual fetch failed", "url", result.URL, "err", err)
		p.updateStatus(ctx, report.ManualID, registry.StatusFailed, err.Error())
		return ""
	}
	file, _ := fr.Unwrap()
	p.updateStatus(ctx, report.ManualID, registry.StatusFetched, "")

	extract := fn.TracedStage("pipeline.extract", func(ctx context.Context, data []byte) fn.Result[string] {
		return fn.Ok(p.extract(ctx, data))
	})
	er := extract(ctx, file.Bytes)
	text, _ := er.Unwrap()
	if text == "" {
		p.logger.Info("manual yielded no text", "manual", report.ManualID, "name", file.Name)
	}
	return text
}

func (p *Pipeline) persistTasks(ctx context.Context, report *Report, app domain.Appliance, candidates []domain.TaskCandidate) {
	if p.store == nil {
		return
	}
	created, err := p.store.UpsertTasks(ctx, app.ID, candidates)
	if err != nil {
		p.logger.Warn("task upsert failed", "appliance", app.ID, "err", err)
		return
	}
	report.TasksCreated = created
	p.updateStatus(ctx, report.ManualID, registry.StatusExtracted, "")
}

func (p *Pipeline) indexChunks(ctx context.Context, report *Report, app domain.Appliance, text string) {
	if p.indexer == nil {
		return
	}
	n, err := p.indexer.IndexManual(ctx, report.ManualID, app, text)
	if err != nil {
		p.logger.Warn("chunk indexing failed", "manual", report.ManualID, "err", err)
		return
	}
	report.ChunksIndexed = n
}

func (p *Pipeline) updateStatus(ctx context.Context, id, status, errMsg string) {
	if p.store == nil {
		return
	}
	if err := p.store.UpdateManualStatus(ctx, id, status, errMsg); err != nil {
		p.logger.Warn("status update failed", "manual", id, "status", status, "err", err)
	}
}

func sourceSite(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
