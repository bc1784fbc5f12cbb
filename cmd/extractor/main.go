// Command extractor locates appliance manuals on the web, mines them
// for maintenance tasks, and persists the results. It runs as a
// one-shot CLI for a single appliance, as a NATS worker consuming
// extraction requests, or as a label parser for OCR'd rating-plate
// photos.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/UpkeepAI/upkeep-mvp/engine/domain"
	"github.com/UpkeepAI/upkeep-mvp/engine/label"
	"github.com/UpkeepAI/upkeep-mvp/engine/manualfind"
	"github.com/UpkeepAI/upkeep-mvp/engine/mine"
	"github.com/UpkeepAI/upkeep-mvp/engine/ocr"
	"github.com/UpkeepAI/upkeep-mvp/engine/pipeline"
	"github.com/UpkeepAI/upkeep-mvp/engine/registry"
	"github.com/UpkeepAI/upkeep-mvp/engine/semantic"
	"github.com/UpkeepAI/upkeep-mvp/pkg/llm"
	"github.com/UpkeepAI/upkeep-mvp/pkg/metrics"
	"github.com/UpkeepAI/upkeep-mvp/pkg/natsutil"
	"github.com/UpkeepAI/upkeep-mvp/pkg/ollama"
)

// Config holds all environment-based configuration.
type Config struct {
	NatsURL     string
	Subject     string
	Queue       string
	ReplySubj   string
	Neo4jURL    string
	Neo4jUser   string
	Neo4jPass   string
	QdrantURL   string
	Collection  string
	OllamaURL   string
	EmbedModel  string
	EmbedDims   int
	OpenAIKey   string
	OpenAIBase  string
	OpenAIModel string
	MetricsPort int
}

func loadConfig() Config {
	return Config{
		NatsURL:     envOr("NATS_URL", ""),
		Subject:     envOr("EXTRACT_SUBJECT", "upkeep.extract.requests"),
		Queue:       envOr("EXTRACT_QUEUE", "extractor"),
		ReplySubj:   envOr("EXTRACT_REPORT_SUBJECT", "upkeep.extract.reports"),
		Neo4jURL:    envOr("NEO4J_URL", ""),
		Neo4jUser:   envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:   envOr("NEO4J_PASS", "password"),
		QdrantURL:   envOr("QDRANT_URL", ""),
		Collection:  envOr("QDRANT_COLLECTION", "upkeep_manuals"),
		OllamaURL:   envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:  envOr("EMBED_MODEL", "nomic-embed-text"),
		EmbedDims:   envIntOr("EMBED_DIMS", 768),
		OpenAIKey:   envOr("OPENAI_API_KEY", ""),
		OpenAIBase:  envOr("OPENAI_BASE_URL", ""),
		OpenAIModel: envOr("OPENAI_MODEL", ""),
		MetricsPort: envIntOr("METRICS_PORT", 9093),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	worker := flag.Bool("worker", false, "run as a NATS worker consuming extraction requests")
	labelPath := flag.String("label", "", "parse an appliance rating label photo and exit")
	status := flag.Bool("status", false, "print manual registry stats and exit")
	id := flag.String("id", "", "appliance ID (generated when empty)")
	name := flag.String("name", "", "appliance name")
	brand := flag.String("brand", "", "appliance brand")
	model := flag.String("model", "", "appliance model number")
	appType := flag.String("type", "", "appliance type, e.g. refrigerator")
	flag.Parse()

	// Absent .env files are fine; env vars still apply.
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger, runOpts{
		worker:    *worker,
		labelPath: *labelPath,
		status:    *status,
		appliance: domain.Appliance{
			ID:          *id,
			Name:        strings.TrimSpace(*name),
			Brand:       strings.TrimSpace(*brand),
			ModelNumber: strings.TrimSpace(*model),
			Type:        strings.TrimSpace(*appType),
		},
	}); err != nil {
		logger.Error("extractor exited with error", "err", err)
		os.Exit(1)
	}
}

type runOpts struct {
	worker    bool
	labelPath string
	status    bool
	appliance domain.Appliance
}

func run(cfg Config, logger *slog.Logger, opts runOpts) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.labelPath != "" {
		return runLabel(ctx, logger, opts.labelPath)
	}

	met := metrics.New()

	var store *registry.Store
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j connect: %w", err)
		}
		defer driver.Close(ctx)
		store = registry.New(driver)
	}

	if opts.status {
		if store == nil {
			return fmt.Errorf("status requires NEO4J_URL")
		}
		stats, err := store.ManualStats(ctx)
		if err != nil {
			return fmt.Errorf("manual stats: %w", err)
		}
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	var indexer *semantic.Indexer
	if cfg.QdrantURL != "" {
		vs, err := semantic.New(cfg.QdrantURL, cfg.Collection)
		if err != nil {
			return err
		}
		defer vs.Close()
		if err := vs.EnsureCollection(ctx, cfg.EmbedDims); err != nil {
			return err
		}
		embedder := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel)
		indexer = semantic.NewIndexer(vs, embedder)
	}

	completer := llm.New(cfg.OpenAIBase, cfg.OpenAIKey, cfg.OpenAIModel)
	finder := manualfind.NewEngine(manualfind.Options{
		LLM:      completer,
		PreferAI: completer.Enabled(),
	}, logger)

	pipe := pipeline.New(pipeline.Config{
		Finder:  finder,
		Fetcher: manualfind.NewFetcher(),
		Miner:   mine.NewMiner(completer, logger),
		Store:   storeOrNil(store),
		Indexer: indexerOrNil(indexer),
		Metrics: met,
		Logger:  logger,
	})

	if opts.worker {
		if cfg.NatsURL == "" {
			return fmt.Errorf("worker mode requires NATS_URL")
		}
		met.ServeAsync(cfg.MetricsPort)
		return runWorker(ctx, cfg, logger, pipe)
	}

	app := opts.appliance
	if app.Brand == "" && app.ModelNumber == "" {
		return fmt.Errorf("need -brand or -model (or -worker / -label / -status)")
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}

	report := pipe.Run(ctx, app)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// runWorker consumes appliances from NATS and publishes a report per run.
func runWorker(ctx context.Context, cfg Config, logger *slog.Logger, pipe *pipeline.Pipeline) error {
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	sub, err := natsutil.QueueSubscribe(nc, cfg.Subject, cfg.Queue, func(msgCtx context.Context, app domain.Appliance) {
		if app.ID == "" {
			app.ID = uuid.NewString()
		}
		report := pipe.Run(msgCtx, app)
		if err := natsutil.Publish(msgCtx, nc, cfg.ReplySubj, report); err != nil {
			logger.Warn("report publish failed", "appliance", app.ID, "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.Subject, err)
	}
	defer sub.Unsubscribe()

	logger.Info("extractor worker running", "subject", cfg.Subject, "queue", cfg.Queue)
	<-ctx.Done()
	return nil
}

// runLabel OCRs a rating-plate photo and prints the parsed fields.
func runLabel(ctx context.Context, logger *slog.Logger, path string) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read label image: %w", err)
	}

	caps := ocr.Detect()
	if !caps.Available() {
		return fmt.Errorf("no OCR backend available (install tesseract)")
	}
	extractor := ocr.NewExtractor(caps, ocr.DefaultLanguages, logger)
	text := extractor.Extract(ctx, image)

	info := label.Parse(text)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// storeOrNil avoids a typed-nil interface when Neo4j is not configured.
func storeOrNil(s *registry.Store) pipeline.Registry {
	if s == nil {
		return nil
	}
	return s
}

func indexerOrNil(ix *semantic.Indexer) pipeline.ChunkIndexer {
	if ix == nil {
		return nil
	}
	return ix
}
