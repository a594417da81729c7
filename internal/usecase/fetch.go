package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
	"morningbyte/internal/source"
)

// Fetcher fans out over all enabled configured sources concurrently and
// regroups the combined articles by each article's own source label.
type Fetcher struct {
	registry *source.Registry
	logger   *slog.Logger
}

// NewFetcher wires the source registry.
func NewFetcher(registry *source.Registry, logger *slog.Logger) *Fetcher {
	return &Fetcher{registry: registry, logger: logger}
}

type fetchResult struct {
	order    int
	articles []domain.Article
}

// FetchAll runs every enabled source concurrently. A failing or panicking
// source is logged as a warning and contributes zero articles; it never
// aborts the others. Groups appear in configured-source order, and articles
// within a group keep their adapter's own ordering.
func (f *Fetcher) FetchAll(ctx context.Context, entries []config.SourceEntry) *domain.Grouped {
	type job struct {
		order int
		name  string
		src   source.Source
		cfg   config.SourceConfig
	}

	var jobs []job
	for _, entry := range entries {
		if !entry.Config.Enabled {
			continue
		}
		src, err := f.registry.Resolve(entry.Name)
		if err != nil {
			// Unregistered names are a configuration mistake, not a fault.
			f.debug("skipping unknown source", "source", entry.Name)
			continue
		}
		jobs = append(jobs, job{order: len(jobs), name: entry.Name, src: src, cfg: entry.Config})
	}

	results := make(chan fetchResult, len(jobs))
	for _, j := range jobs {
		go func(j job) {
			results <- fetchResult{order: j.order, articles: f.fetchOne(ctx, j.name, j.src, j.cfg)}
		}(j)
	}

	byOrder := make([][]domain.Article, len(jobs))
	for range jobs {
		res := <-results
		byOrder[res.order] = res.articles
	}

	grouped := domain.NewGrouped()
	for _, articles := range byOrder {
		for _, article := range articles {
			grouped.Add(article)
		}
	}
	return grouped
}

// fetchOne contains one source's failure, whether returned or escaping.
func (f *Fetcher) fetchOne(ctx context.Context, name string, src source.Source, cfg config.SourceConfig) (articles []domain.Article) {
	defer func() {
		if r := recover(); r != nil {
			f.warn("source fetch failed", "source", name, "error", fmt.Sprint(r))
			articles = nil
		}
	}()

	articles, err := src.Fetch(ctx, cfg)
	if err != nil {
		f.warn("source fetch failed", "source", name, "error", err)
		return nil
	}
	f.debug("source fetched", "source", name, "count", len(articles))
	return articles
}

func (f *Fetcher) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
