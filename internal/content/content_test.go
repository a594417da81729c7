package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

// articlePage is long enough that readability treats it as a real article.
func articlePage() string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Sample Article</title></head><body><article><h1>Sample Article</h1>`)
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "<p>Paragraph %d with plenty of readable text content that goes on and on, describing the topic at hand in sufficient detail for extraction heuristics to keep it as main body text.</p>", i)
	}
	b.WriteString(`</article></body></html>`)
	return b.String()
}

func newEnrichmentConfig(maxConcurrent, timeoutSeconds int) config.EnrichmentConfig {
	return config.EnrichmentConfig{
		Enabled:        true,
		MaxConcurrent:  maxConcurrent,
		TimeoutSeconds: timeoutSeconds,
	}
}

func TestFetchAllExtractsContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage())
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), newEnrichmentConfig(5, 15), nil)
	results := fetcher.FetchAll(context.Background(), []domain.Article{
		{Title: "a", URL: server.URL + "/post"},
	})

	result, ok := results[server.URL+"/post"]
	if !ok {
		t.Fatal("no result for the article URL")
	}
	if !result.Success {
		t.Fatalf("extraction failed: %q", result.Error)
	}
	if !strings.Contains(result.Content, "Paragraph 3") {
		t.Fatalf("extracted content missing body text: %q", result.Content)
	}
	if strings.Contains(result.Content, "<script") || strings.Contains(result.Content, "<a ") {
		t.Fatalf("sanitizer let interactive markup through: %q", result.Content)
	}
}

func TestFetchAllSkipsDeniedDomainsWithoutRequests(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), newEnrichmentConfig(5, 15), nil)
	results := fetcher.FetchAll(context.Background(), []domain.Article{
		{Title: "tweet", URL: "https://twitter.com/someone/status/1"},
		{Title: "repo", URL: "https://www.github.com/someone/project"},
	})

	if got := requests.Load(); got != 0 {
		t.Fatalf("deny-listed URLs triggered %d requests", got)
	}
	for url, result := range results {
		if result.Success || result.Error != "domain skipped" {
			t.Fatalf("%s: got %+v, want domain skipped", url, result)
		}
	}
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := inFlight.Add(1)
		for {
			old := peak.Load()
			if now <= old || peak.CompareAndSwap(old, now) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
		fmt.Fprint(w, articlePage())
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), newEnrichmentConfig(2, 15), nil)

	var articles []domain.Article
	for i := 0; i < 6; i++ {
		articles = append(articles, domain.Article{URL: fmt.Sprintf("%s/post-%d", server.URL, i)})
	}
	results := fetcher.FetchAll(context.Background(), articles)

	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if got := peak.Load(); got > 2 {
		t.Fatalf("concurrency peaked at %d, cap is 2", got)
	}
}

func TestFetchAllClassifiesFailures(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	slow := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/slow":
			mu.Lock()
			slow = true
			mu.Unlock()
			time.Sleep(3 * time.Second)
		case "/empty":
			fmt.Fprint(w, "<html><body></body></html>")
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), newEnrichmentConfig(5, 15), nil)
	fetcher.timeout = 200 * time.Millisecond

	results := fetcher.FetchAll(context.Background(), []domain.Article{
		{URL: server.URL + "/missing"},
		{URL: server.URL + "/slow"},
		{URL: server.URL + "/empty"},
	})

	if got := results[server.URL+"/missing"].Error; got != "HTTP 404" {
		t.Fatalf("missing page error = %q, want HTTP 404", got)
	}
	if got := results[server.URL+"/slow"].Error; got != "timeout" {
		t.Fatalf("slow page error = %q, want timeout", got)
	}
	if got := results[server.URL+"/empty"].Error; got != "no content extracted" {
		t.Fatalf("empty page error = %q, want no content extracted", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if !slow {
		t.Fatal("slow handler never ran")
	}
}

func TestFetchAllDeduplicatesURLs(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, articlePage())
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), newEnrichmentConfig(5, 15), nil)
	results := fetcher.FetchAll(context.Background(), []domain.Article{
		{URL: server.URL + "/same"},
		{URL: server.URL + "/same"},
		{URL: ""},
	})

	if got := requests.Load(); got != 1 {
		t.Fatalf("duplicate URL fetched %d times", got)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestNormalizeFragment(t *testing.T) {
	t.Parallel()

	got := normalizeFragment("<p>first</p><p>   </p><p></p><p>second</p>")
	if got != "<p>first</p><p>second</p>" {
		t.Fatalf("empty blocks not dropped: %q", got)
	}

	var b strings.Builder
	for i := 0; i < maxContentBlocks+20; i++ {
		fmt.Fprintf(&b, "<p>block %d</p>", i)
	}
	capped := normalizeFragment(b.String())
	if got := strings.Count(capped, "<p>"); got != maxContentBlocks {
		t.Fatalf("fragment capped at %d blocks, want %d", got, maxContentBlocks)
	}

	if got := normalizeFragment(""); got != "" {
		t.Fatalf("empty input produced %q", got)
	}
}

func TestApplyIsAdditive(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		{Title: "hit", URL: "https://a.example.com", Summary: "short"},
		{Title: "miss", URL: "https://b.example.com", Summary: "short"},
		{Title: "failed", URL: "https://c.example.com", Summary: "short"},
	}
	results := map[string]Result{
		"https://a.example.com": {URL: "https://a.example.com", Content: "<p>body</p>", Success: true},
		"https://c.example.com": {URL: "https://c.example.com", Error: "timeout"},
	}

	Apply(articles, results)

	if articles[0].Content != "<p>body</p>" {
		t.Fatalf("successful result not applied: %q", articles[0].Content)
	}
	if articles[1].Content != "" || articles[2].Content != "" {
		t.Fatal("articles without successful results must stay untouched")
	}
	for _, article := range articles {
		if article.Summary != "short" {
			t.Fatalf("summary mutated: %q", article.Summary)
		}
	}
}

func TestEnrichUpdatesGroupedInPlace(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage())
	}))
	defer server.Close()

	grouped := domain.NewGrouped()
	grouped.Add(domain.Article{Title: "a", Source: "Hacker News", URL: server.URL + "/a"})
	grouped.Add(domain.Article{Title: "b", Source: "Lobsters", URL: "https://twitter.com/x/status/2"})

	fetcher := NewFetcher(server.Client(), newEnrichmentConfig(5, 15), nil)
	fetcher.Enrich(context.Background(), grouped)

	hn := grouped.Get("Hacker News")
	if len(hn) != 1 || hn[0].Content == "" {
		t.Fatal("fetched content not written back to the grouped article")
	}
	lob := grouped.Get("Lobsters")
	if len(lob) != 1 || lob[0].Content != "" {
		t.Fatal("deny-listed article must keep empty content")
	}
}
