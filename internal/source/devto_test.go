package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"morningbyte/internal/config"
)

func TestDevToMergesTagsAndDeduplicates(t *testing.T) {
	t.Parallel()

	// "shared" appears under both tags with different reaction counts; the
	// higher-scored occurrence must survive the dedupe.
	byTag := map[string]string{
		"go": `[
			{"title":"Shared","url":"https://dev.to/shared","positive_reactions_count":40,"tag_list":["go"],"user":{"username":"a"}},
			{"title":"Go only","url":"https://dev.to/go-only","positive_reactions_count":25,"tag_list":["go"],"user":{"username":"b"}}
		]`,
		"rust": `[
			{"title":"Shared","url":"https://dev.to/shared","positive_reactions_count":60,"tag_list":["rust"],"user":{"username":"a"}},
			{"title":"Rust only","url":"https://dev.to/rust-only","positive_reactions_count":10,"tag_list":["rust"],"user":{"username":"c"}}
		]`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag := r.URL.Query().Get("tag")
		body, ok := byTag[tag]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	src := NewDevToSource(server.Client())
	src.baseURL = server.URL

	articles, err := src.Fetch(context.Background(), config.SourceConfig{
		Enabled:  true,
		MaxItems: 10,
		Tags:     []string{"go", "rust"},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(articles) != 3 {
		t.Fatalf("expected 3 unique articles, got %d", len(articles))
	}
	if articles[0].URL != "https://dev.to/shared" || articles[0].Score != 60 {
		t.Fatalf("dedupe kept the wrong occurrence: %q score %d", articles[0].URL, articles[0].Score)
	}
	if articles[1].Score != 25 || articles[2].Score != 10 {
		t.Fatalf("not sorted by descending score: %d, %d", articles[1].Score, articles[2].Score)
	}
}

func TestDevToTiedScoresKeepConfiguredTagOrder(t *testing.T) {
	t.Parallel()

	byTag := map[string]string{
		"second": `[{"title":"From second","url":"https://dev.to/second","positive_reactions_count":5}]`,
		"first":  `[{"title":"From first","url":"https://dev.to/first","positive_reactions_count":5}]`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, byTag[r.URL.Query().Get("tag")])
	}))
	defer server.Close()

	src := NewDevToSource(server.Client())
	src.baseURL = server.URL

	articles, err := src.Fetch(context.Background(), config.SourceConfig{
		Enabled:  true,
		MaxItems: 1,
		Tags:     []string{"first", "second"},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "From first" {
		t.Fatalf("tie not resolved in configured tag order: %+v", articles)
	}
}

func TestDevToWithoutTagsUsesTopEndpoint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tag") != "" {
			t.Errorf("unexpected tag query: %q", r.URL.Query().Get("tag"))
		}
		if r.URL.Query().Get("top") != "1" {
			t.Errorf("missing top parameter")
		}
		if r.URL.Query().Get("per_page") != "4" {
			t.Errorf("per_page = %q, want max items", r.URL.Query().Get("per_page"))
		}
		fmt.Fprint(w, `[
			{"title":"One","url":"https://dev.to/one","positive_reactions_count":3},
			{"title":"","url":"https://dev.to/untitled","positive_reactions_count":2}
		]`)
	}))
	defer server.Close()

	src := NewDevToSource(server.Client())
	src.baseURL = server.URL

	articles, err := src.Fetch(context.Background(), config.SourceConfig{Enabled: true, MaxItems: 4})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "One" {
		t.Fatalf("expected only the titled article, got %+v", articles)
	}
	if articles[0].Source != "Dev.to" {
		t.Fatalf("unexpected source label: %q", articles[0].Source)
	}
}

func TestDevToFailingTagDoesNotHideOthers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tag") == "broken" {
			http.Error(w, "nope", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"title":"Fine","url":"https://dev.to/fine","positive_reactions_count":1}]`)
	}))
	defer server.Close()

	src := NewDevToSource(server.Client())
	src.baseURL = server.URL

	articles, err := src.Fetch(context.Background(), config.SourceConfig{
		Enabled:  true,
		MaxItems: 10,
		Tags:     []string{"broken", "ok"},
	})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Fine" {
		t.Fatalf("expected only the healthy tag's article, got %+v", articles)
	}
}
