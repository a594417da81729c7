package source

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

const rssUserAgent = "MorningByte/1.0 (feed fetcher; https://github.com/morning-byte)"

const (
	// Raw entries are capped per feed before the merged result is processed.
	rssEntriesPerFeed = 10
	rssSummaryLimit   = 500
)

// RSSSource fetches and parses arbitrary RSS/Atom feeds, one request per
// configured feed run concurrently. Each feed's display name becomes its own
// digest section.
type RSSSource struct {
	client *http.Client
	strip  *bluemonday.Policy
}

// NewRSSSource wires an HTTP client; a nil client gets a 30s timeout default.
func NewRSSSource(client *http.Client) *RSSSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RSSSource{client: client, strip: bluemonday.StrictPolicy()}
}

// Name identifies the source inside the registry.
func (r *RSSSource) Name() string {
	return "rss"
}

// Fetch merges all configured feeds, sorted by descending publication time
// (entries without a resolvable timestamp sort oldest) and capped at
// cfg.MaxItems.
func (r *RSSSource) Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Article, error) {
	if len(cfg.Feeds) == 0 {
		return nil, nil
	}

	results := make(chan []domain.Article, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		go func(feed config.FeedConfig) {
			results <- r.fetchFeed(ctx, feed)
		}(feed)
	}

	var articles []domain.Article
	for range cfg.Feeds {
		articles = append(articles, <-results...)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > cfg.MaxItems {
		articles = articles[:cfg.MaxItems]
	}

	// Entries that kept the zero time only needed it for ordering; the model
	// wants a best-effort timestamp on every article.
	for i := range articles {
		if articles[i].PublishedAt.IsZero() {
			articles[i].PublishedAt = time.Now()
		}
	}
	return articles, nil
}

// fetchFeed returns nil on any failure so one dead feed never hides the rest.
func (r *RSSSource) fetchFeed(ctx context.Context, feedCfg config.FeedConfig) []domain.Article {
	if feedCfg.URL == "" {
		return nil
	}
	name := feedCfg.Name
	if name == "" {
		name = feedCfg.URL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedCfg.URL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", rssUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil
	}

	items := feed.Items
	if len(items) > rssEntriesPerFeed {
		items = items[:rssEntriesPerFeed]
	}

	var articles []domain.Article
	for _, item := range items {
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		article := domain.Article{
			Title:  item.Title,
			URL:    item.Link,
			Source: name,
		}
		if item.Author != nil {
			article.Author = item.Author.Name
		}
		article.PublishedAt = r.resolveDate(item)
		article.Summary = r.summarize(item)
		articles = append(articles, article)
	}
	return articles
}

// resolveDate checks the standard date fields in priority order
// published, updated, created and returns the first parseable one. The zero
// time marks entries without a usable date so they sort oldest.
func (r *RSSSource) resolveDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.Published != "" {
		if parsed, err := dateparse.ParseAny(item.Published); err == nil {
			return parsed
		}
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	if item.Updated != "" {
		if parsed, err := dateparse.ParseAny(item.Updated); err == nil {
			return parsed
		}
	}
	if created, ok := item.Custom["created"]; ok && created != "" {
		if parsed, err := dateparse.ParseAny(created); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// summarize strips markup, preferring the short description over the full
// content body, and hard-truncates the result.
func (r *RSSSource) summarize(item *gofeed.Item) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	if raw == "" {
		return ""
	}

	text := strings.TrimSpace(r.strip.Sanitize(raw))
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > rssSummaryLimit {
		text = string(runes[:rssSummaryLimit-3]) + "..."
	}
	return text
}
