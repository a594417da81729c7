package source

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/araddon/dateparse"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

const lobstersUserAgent = "MorningByte/1.0 (Lobsters fetcher; https://github.com/morning-byte)"

// LobstersSource pulls the hottest stories from the public JSON endpoint.
type LobstersSource struct {
	client     *http.Client
	hottestURL string
}

// NewLobstersSource wires an HTTP client; a nil client gets a 30s timeout default.
func NewLobstersSource(client *http.Client) *LobstersSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &LobstersSource{client: client, hottestURL: "https://lobste.rs/hottest.json"}
}

// Name identifies the source inside the registry.
func (l *LobstersSource) Name() string {
	return "lobsters"
}

// DisplayName is the section label articles are grouped under.
func (l *LobstersSource) DisplayName() string {
	return "Lobsters"
}

type lobstersStory struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	ShortIDURL    string   `json:"short_id_url"`
	Score         int      `json:"score"`
	CommentCount  int      `json:"comment_count"`
	CreatedAt     string   `json:"created_at"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	SubmitterUser struct {
		Username string `json:"username"`
	} `json:"submitter_user"`
}

// Fetch returns up to cfg.MaxItems stories in the endpoint's own (hotness)
// order. Link-less discussions fall back to their permalink as the URL.
func (l *LobstersSource) Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.hottestURL, nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("User-Agent", lobstersUserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var stories []lobstersStory
	if err := json.NewDecoder(resp.Body).Decode(&stories); err != nil {
		return nil, nil
	}

	if len(stories) > cfg.MaxItems {
		stories = stories[:cfg.MaxItems]
	}

	articles := make([]domain.Article, 0, len(stories))
	for _, story := range stories {
		url := story.URL
		if url == "" {
			url = story.ShortIDURL
		}
		if story.Title == "" || url == "" {
			continue
		}

		article := domain.NewArticle(story.Title, url, l.DisplayName())
		article.Author = story.SubmitterUser.Username
		article.Score = story.Score
		article.CommentsCount = story.CommentCount
		article.CommentsURL = story.ShortIDURL
		article.Summary = story.Description
		article.Tags = story.Tags
		if story.CreatedAt != "" {
			if parsed, err := dateparse.ParseAny(story.CreatedAt); err == nil {
				article.PublishedAt = parsed
			}
		}
		articles = append(articles, article)
	}
	return articles, nil
}
