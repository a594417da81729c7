package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"morningbyte/internal/config"
)

func TestLobstersFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"title":"Hot one","url":"https://example.com/one","short_id_url":"https://lobste.rs/s/aaa","score":30,"comment_count":4,"created_at":"2024-05-01T10:00:00Z","tags":["go"],"submitter_user":{"username":"alice"}},
			{"title":"Discussion","url":"","short_id_url":"https://lobste.rs/s/bbb","score":12,"comment_count":20,"created_at":"2024-05-01T09:00:00Z","tags":["culture"],"submitter_user":{"username":"bob"}},
			{"title":"Third","url":"https://example.com/three","short_id_url":"https://lobste.rs/s/ccc","score":8}
		]`)
	}))
	defer server.Close()

	src := NewLobstersSource(server.Client())
	src.hottestURL = server.URL

	articles, err := src.Fetch(context.Background(), config.SourceConfig{Enabled: true, MaxItems: 2})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	// Capped at MaxItems, keeping the endpoint's hotness order.
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "Hot one" || articles[1].Title != "Discussion" {
		t.Fatalf("order changed: %q, %q", articles[0].Title, articles[1].Title)
	}

	// Link-less discussions use the permalink as the URL.
	if articles[1].URL != "https://lobste.rs/s/bbb" {
		t.Fatalf("discussion URL = %q, want permalink", articles[1].URL)
	}
	if articles[0].CommentsURL != "https://lobste.rs/s/aaa" {
		t.Fatalf("CommentsURL = %q, want permalink", articles[0].CommentsURL)
	}
	if articles[0].Source != "Lobsters" {
		t.Fatalf("unexpected source label: %q", articles[0].Source)
	}
	if articles[0].PublishedAt.IsZero() {
		t.Fatal("created_at not parsed")
	}
}

func TestLobstersEndpointFailureYieldsNothing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewLobstersSource(server.Client())
	src.hottestURL = server.URL

	articles, err := src.Fetch(context.Background(), config.SourceConfig{Enabled: true, MaxItems: 5})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles on endpoint failure, got %d", len(articles))
	}
}
