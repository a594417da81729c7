package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

// Reddit wants a descriptive User-Agent on the public JSON API.
const redditUserAgent = "MorningByte/1.0 (Daily tech digest; contact@example.com)"

const selfTextLimit = 500

// RedditSource pulls hot posts from the public JSON API, one request per
// configured subreddit run concurrently. Articles are labeled "r/<subreddit>"
// so every community becomes its own digest section.
type RedditSource struct {
	client  *http.Client
	baseURL string
}

// NewRedditSource wires an HTTP client; a nil client gets a 30s timeout default.
func NewRedditSource(client *http.Client) *RedditSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RedditSource{client: client, baseURL: "https://www.reddit.com"}
}

// Name identifies the source inside the registry.
func (r *RedditSource) Name() string {
	return "reddit"
}

// Fetch returns the combined hot posts from all configured subreddits, sorted
// by descending score and capped at cfg.MaxItems across all communities.
func (r *RedditSource) Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Article, error) {
	if len(cfg.Subreddits) == 0 {
		return nil, nil
	}

	results := make(chan []domain.Article, len(cfg.Subreddits))
	for _, sub := range cfg.Subreddits {
		go func(subreddit string) {
			results <- r.fetchSubreddit(ctx, subreddit)
		}(sub)
	}

	var articles []domain.Article
	for range cfg.Subreddits {
		articles = append(articles, <-results...)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Score > articles[j].Score
	})
	if len(articles) > cfg.MaxItems {
		articles = articles[:cfg.MaxItems]
	}
	return articles, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
	IsSelf      bool    `json:"is_self"`
	SelfText    string  `json:"selftext"`
}

// fetchSubreddit returns nil on any failure so one broken community never
// hides the others.
func (r *RedditSource) fetchSubreddit(ctx context.Context, subreddit string) []domain.Article {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=25&t=day", r.baseURL, subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil
	}

	var articles []domain.Article
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied || post.Title == "" {
			continue
		}

		permalink := r.baseURL + post.Permalink
		url := post.URL
		if post.IsSelf || url == "" || strings.HasPrefix(url, r.baseURL) {
			url = permalink
		}

		summary := ""
		if post.IsSelf && post.SelfText != "" {
			summary = truncate(post.SelfText, selfTextLimit)
		}

		article := domain.NewArticle(post.Title, url, "r/"+subreddit)
		article.Author = post.Author
		article.Score = post.Score
		article.CommentsCount = post.NumComments
		article.CommentsURL = permalink
		article.Summary = summary
		article.Tags = []string{subreddit}
		if post.CreatedUTC > 0 {
			article.PublishedAt = time.Unix(int64(post.CreatedUTC), 0)
		}
		articles = append(articles, article)
	}
	return articles
}

// truncate counts runes, not bytes, so a cut never lands inside a multi-byte
// character.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
