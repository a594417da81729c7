package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

const hackerNewsUserAgent = "MorningByte/1.0 (Hacker News fetcher; https://github.com/morning-byte)"

// HackerNewsSource pulls top stories from the official Hacker News API.
// Fetching is two-phase: the ranked id list first, then one detail request
// per story run concurrently.
type HackerNewsSource struct {
	client  *http.Client
	baseURL string
	siteURL string
}

// NewHackerNewsSource wires an HTTP client; a nil client gets a 30s timeout default.
func NewHackerNewsSource(client *http.Client) *HackerNewsSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HackerNewsSource{
		client:  client,
		baseURL: "https://hacker-news.firebaseio.com/v0",
		siteURL: "https://news.ycombinator.com",
	}
}

// Name identifies the source inside the registry.
func (h *HackerNewsSource) Name() string {
	return "hackernews"
}

// DisplayName is the section label articles are grouped under.
func (h *HackerNewsSource) DisplayName() string {
	return "Hacker News"
}

// Fetch returns up to cfg.MaxItems stories ordered by descending score.
func (h *HackerNewsSource) Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Article, error) {
	ids, err := h.fetchTopStoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	if len(ids) > cfg.MaxItems {
		ids = ids[:cfg.MaxItems]
	}

	results := make(chan *domain.Article, len(ids))
	for _, id := range ids {
		go func(storyID int) {
			results <- h.fetchStory(ctx, storyID)
		}(id)
	}

	articles := make([]domain.Article, 0, len(ids))
	for range ids {
		if article := <-results; article != nil {
			articles = append(articles, *article)
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Score > articles[j].Score
	})
	return articles, nil
}

func (h *HackerNewsSource) fetchTopStoryIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := h.getJSON(ctx, h.baseURL+"/topstories.json", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	By          string `json:"by"`
	Text        string `json:"text"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Time        int64  `json:"time"`
}

// fetchStory returns nil for any per-item failure or non-story item so one
// bad id never poisons the batch.
func (h *HackerNewsSource) fetchStory(ctx context.Context, id int) *domain.Article {
	var item hnItem
	if err := h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.baseURL, id), &item); err != nil {
		return nil
	}
	if item.Type != "story" || item.Title == "" {
		return nil
	}

	permalink := fmt.Sprintf("%s/item?id=%d", h.siteURL, id)
	url := item.URL
	if url == "" {
		// Ask HN / Show HN posts have no external link.
		url = permalink
	}

	article := domain.NewArticle(item.Title, url, h.DisplayName())
	article.Author = item.By
	article.Score = item.Score
	article.CommentsCount = item.Descendants
	article.CommentsURL = permalink
	article.Summary = item.Text
	if item.Time > 0 {
		article.PublishedAt = time.Unix(item.Time, 0)
	}
	return &article
}

func (h *HackerNewsSource) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", hackerNewsUserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hacker news returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
