package app

import (
	"context"
	"log/slog"
	"time"

	"morningbyte/internal/config"
	"morningbyte/internal/content"
	"morningbyte/internal/domain"
	"morningbyte/internal/infrastructure/delivery"
	"morningbyte/internal/infrastructure/epub"
	"morningbyte/internal/infrastructure/scheduler"
	"morningbyte/internal/logging"
	"morningbyte/internal/ports"
	"morningbyte/internal/source"
	"morningbyte/internal/usecase"
)

// Application wires configuration to the digest pipeline and its adapters.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	store    ports.Store
	logger   *slog.Logger
}

// New builds a runnable application instance with all built-in sources
// registered.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := source.NewRegistry()
	registry.Register(source.NewHackerNewsSource(nil))
	registry.Register(source.NewRedditSource(nil))
	registry.Register(source.NewLobstersSource(nil))
	registry.Register(source.NewDevToSource(nil))
	registry.Register(source.NewRSSSource(nil))

	fetcher := usecase.NewFetcher(registry, baseLogger.With("component", "fetcher"))
	enricher := content.NewFetcher(nil, cfg.Enrichment, baseLogger.With("component", "content"))
	store := delivery.NewLocalStore(cfg.Delivery)

	var mailer ports.Mailer
	if km := delivery.NewKindleMailer(cfg.Delivery); km.Configured() {
		mailer = km
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:  fetcher,
		Enricher: enricher,
		Renderer: epub.NewGenerator(cfg.Digest),
		Store:    store,
		Mailer:   mailer,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		pipeline: pipeline,
		store:    store,
		logger:   baseLogger,
	}
}

// Generate runs one full digest cycle and returns the written path.
func (a *Application) Generate(ctx context.Context, opts usecase.RunOptions) (string, error) {
	return a.pipeline.Run(ctx, a.cfg, opts)
}

// Preview runs only the fetch phase and returns the grouped articles.
func (a *Application) Preview(ctx context.Context) *domain.Grouped {
	return a.pipeline.Fetch(ctx, a.cfg.Entries())
}

// ListDigests returns previously generated digests, newest first.
func (a *Application) ListDigests() ([]ports.DigestFile, error) {
	return a.store.List()
}

// Serve runs the pipeline on a daily schedule until the context is done.
func (a *Application) Serve(ctx context.Context, send bool) error {
	driver := scheduler.NewDailyScheduler(24 * time.Hour)
	if err := driver.Start(ctx, a.pipeline.RunAt(ctx, a.cfg, send)); err != nil {
		return err
	}
	<-ctx.Done()
	return driver.Stop(context.Background())
}
