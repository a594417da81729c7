package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
	"morningbyte/internal/ports"
)

// ErrNoArticles is returned when every enabled source came back empty. It is
// the only condition that halts the run before rendering; partial results
// from a subset of sources are expected and fine.
var ErrNoArticles = errors.New("no articles found from any source")

// PipelineDeps wires all driven adapters into the digest pipeline.
type PipelineDeps struct {
	Fetcher  *Fetcher
	Enricher ports.Enricher
	Renderer ports.Renderer
	Store    ports.Store
	Mailer   ports.Mailer
	Logger   *slog.Logger
}

// Pipeline implements the fetch -> enrich -> assemble -> render -> deliver
// workflow for one digest run.
type Pipeline struct {
	fetcher  *Fetcher
	enricher ports.Enricher
	renderer ports.Renderer
	store    ports.Store
	mailer   ports.Mailer
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher:  deps.Fetcher,
		enricher: deps.Enricher,
		renderer: deps.Renderer,
		store:    deps.Store,
		mailer:   deps.Mailer,
		logger:   deps.Logger,
	}
}

// RunOptions tweak a single pipeline execution.
type RunOptions struct {
	OutputPath string // overrides the store's dated default when set
	Send       bool   // mail the generated file afterwards
}

// Fetch runs only the fan-out/fan-in phase; preview mode uses it directly.
func (p *Pipeline) Fetch(ctx context.Context, sources []config.SourceEntry) *domain.Grouped {
	return p.fetcher.FetchAll(ctx, sources)
}

// Run executes one full digest cycle and returns the path written.
func (p *Pipeline) Run(ctx context.Context, cfg config.Config, opts RunOptions) (string, error) {
	grouped := p.fetcher.FetchAll(ctx, cfg.Entries())
	p.info("fetch complete", "articles", grouped.Total(), "groups", len(grouped.Keys()))

	if grouped.Total() == 0 {
		return "", ErrNoArticles
	}

	if cfg.Enrichment.Enabled && p.enricher != nil {
		p.enricher.Enrich(ctx, grouped)
	}

	digest := BuildDigest(grouped, cfg.Digest)

	path := opts.OutputPath
	if path == "" && p.store != nil {
		path = p.store.TargetPath(digest.Date)
	}
	if path == "" {
		return "", errors.New("no output path configured")
	}

	written, err := p.renderer.Render(digest, path)
	if err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	p.info("digest rendered", "path", written, "articles", digest.TotalArticles())

	if p.store != nil && opts.OutputPath == "" {
		if deleted, err := p.store.CleanupOld(); err != nil {
			p.warn("cleanup failed", "error", err)
		} else if len(deleted) > 0 {
			p.info("cleaned up old digests", "count", len(deleted))
		}
	}

	if opts.Send {
		if p.mailer == nil {
			return written, errors.New("email delivery is not configured")
		}
		if err := p.mailer.Send(ctx, written); err != nil {
			return written, fmt.Errorf("send digest: %w", err)
		}
		p.info("digest sent")
	}

	return written, nil
}

// RunAt adapts Run for the scheduler, which only supplies a trigger time.
func (p *Pipeline) RunAt(ctx context.Context, cfg config.Config, send bool) func(time.Time) {
	return func(trigger time.Time) {
		if _, err := p.Run(ctx, cfg, RunOptions{Send: send}); err != nil {
			p.warn("scheduled run failed", "trigger", trigger.Format(time.RFC3339), "error", err)
		}
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
