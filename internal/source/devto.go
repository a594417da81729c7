package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

const devtoUserAgent = "MorningByte/1.0 (Dev.to fetcher; https://github.com/morning-byte)"

// Each per-tag request is capped at a small page; the global MaxItems cap is
// applied after the merge.
const devtoTagPageSize = 10

// DevToSource pulls articles from the Forem API. With configured tags it
// fans out one request per tag and merges; without tags it issues a single
// "top" request.
type DevToSource struct {
	client  *http.Client
	baseURL string
}

// NewDevToSource wires an HTTP client; a nil client gets a 30s timeout default.
func NewDevToSource(client *http.Client) *DevToSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &DevToSource{client: client, baseURL: "https://dev.to/api"}
}

// Name identifies the source inside the registry.
func (d *DevToSource) Name() string {
	return "devto"
}

// DisplayName is the section label articles are grouped under.
func (d *DevToSource) DisplayName() string {
	return "Dev.to"
}

// Fetch merges per-tag results deduplicated by URL, sorted by descending
// reaction count; equal scores keep first-configured-tag order. Without tags
// a single top-articles request is used.
func (d *DevToSource) Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Article, error) {
	if len(cfg.Tags) == 0 {
		return d.fetchTop(ctx, cfg.MaxItems), nil
	}

	type tagResult struct {
		order    int
		articles []domain.Article
	}
	results := make(chan tagResult, len(cfg.Tags))
	for i, tag := range cfg.Tags {
		go func(order int, tag string) {
			results <- tagResult{order: order, articles: d.fetchTag(ctx, tag)}
		}(i, tag)
	}

	byOrder := make([][]domain.Article, len(cfg.Tags))
	for range cfg.Tags {
		res := <-results
		byOrder[res.order] = res.articles
	}

	// Concatenate in configured tag order so the stable sort below gives a
	// deterministic winner when scores tie.
	var merged []domain.Article
	for _, articles := range byOrder {
		merged = append(merged, articles...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	seen := map[string]struct{}{}
	unique := make([]domain.Article, 0, len(merged))
	for _, article := range merged {
		if _, ok := seen[article.URL]; ok {
			continue
		}
		seen[article.URL] = struct{}{}
		unique = append(unique, article)
	}

	if len(unique) > cfg.MaxItems {
		unique = unique[:cfg.MaxItems]
	}
	return unique, nil
}

func (d *DevToSource) fetchTop(ctx context.Context, maxItems int) []domain.Article {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(maxItems))
	params.Set("top", "1")
	return d.fetchArticles(ctx, params)
}

func (d *DevToSource) fetchTag(ctx context.Context, tag string) []domain.Article {
	params := url.Values{}
	params.Set("tag", tag)
	params.Set("per_page", strconv.Itoa(devtoTagPageSize))
	params.Set("top", "1")
	return d.fetchArticles(ctx, params)
}

type devtoArticle struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Description   string   `json:"description"`
	PublishedAt   string   `json:"published_at"`
	ReactionCount int      `json:"positive_reactions_count"`
	CommentsCount int      `json:"comments_count"`
	TagList       []string `json:"tag_list"`
	User          struct {
		Username string `json:"username"`
	} `json:"user"`
}

// fetchArticles returns nil on any failure so one bad tag never hides the rest.
func (d *DevToSource) fetchArticles(ctx context.Context, params url.Values) []domain.Article {
	endpoint := fmt.Sprintf("%s/articles?%s", d.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", devtoUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var items []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil
	}

	var articles []domain.Article
	for _, item := range items {
		if item.Title == "" || item.URL == "" {
			continue
		}
		article := domain.NewArticle(item.Title, item.URL, d.DisplayName())
		article.Author = item.User.Username
		article.Score = item.ReactionCount
		article.CommentsCount = item.CommentsCount
		article.CommentsURL = item.URL
		article.Summary = item.Description
		article.Tags = item.TagList
		if item.PublishedAt != "" {
			if parsed, err := dateparse.ParseAny(item.PublishedAt); err == nil {
				article.PublishedAt = parsed
			}
		}
		articles = append(articles, article)
	}
	return articles
}
