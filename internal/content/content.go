// Package content implements the optional second pass that fetches full
// article bodies for offline reading.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/semaphore"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
	"morningbyte/internal/ports"
)

const contentUserAgent = "MorningByte/1.0 (content fetcher; https://github.com/morning-byte)"

// A single enriched article is capped at this many top-level blocks so one
// long read cannot dominate the digest.
const maxContentBlocks = 80

// Domains that block automated retrieval, need login, or are already covered
// by a dedicated source adapter. Checked before any network call.
var skipDomains = map[string]struct{}{
	"twitter.com":          {},
	"x.com":                {},
	"youtube.com":          {},
	"youtu.be":             {},
	"github.com":           {},
	"reddit.com":           {},
	"news.ycombinator.com": {},
	"lobste.rs":            {},
	"dev.to":               {},
	"medium.com":           {},
	"nytimes.com":          {},
	"wsj.com":              {},
	"bloomberg.com":        {},
	"ft.com":               {},
	"patreon.com":          {},
	"substack.com":         {},
}

// Result reports one URL's extraction outcome. Error carries a short
// classification: "domain skipped", "timeout", "HTTP <status>",
// "no content extracted", or the underlying error text.
type Result struct {
	URL     string
	Content string
	Success bool
	Error   string
}

// Fetcher retrieves readable article bodies under a shared concurrency cap.
type Fetcher struct {
	client        *http.Client
	maxConcurrent int64
	timeout       time.Duration
	logger        *slog.Logger
	keep          *bluemonday.Policy
}

var _ ports.Enricher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets sane defaults. Requests
// time out per cfg (default 15s) and at most cfg.MaxConcurrent (default 5)
// fetches are in flight at once.
func NewFetcher(client *http.Client, cfg config.EnrichmentConfig, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	maxConcurrent := int64(cfg.MaxConcurrent)
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:        client,
		maxConcurrent: maxConcurrent,
		timeout:       timeout,
		logger:        logger,
		keep:          readerPolicy(),
	}
}

// readerPolicy keeps text structure and tables but drops images, links and
// anything interactive from the extracted fragment.
func readerPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "blockquote", "pre", "code",
		"em", "strong", "b", "i", "sub", "sup",
		"table", "thead", "tbody", "tfoot", "tr", "td", "th", "caption",
	)
	return p
}

// FetchAll fetches content for every distinct article URL and maps each URL
// to its result. Deny-listed domains are reported as skipped without any
// network call.
func (f *Fetcher) FetchAll(ctx context.Context, articles []domain.Article) map[string]Result {
	sem := semaphore.NewWeighted(f.maxConcurrent)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Result, len(articles))
	)

	seen := map[string]struct{}{}
	for _, article := range articles {
		articleURL := article.URL
		if articleURL == "" {
			continue
		}
		if _, ok := seen[articleURL]; ok {
			continue
		}
		seen[articleURL] = struct{}{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			result := f.fetchOne(ctx, articleURL)
			mu.Lock()
			results[articleURL] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL string) Result {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Result{URL: rawURL, Error: "invalid URL"}
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	if _, ok := skipDomains[host]; ok {
		return Result{URL: rawURL, Error: "domain skipped"}
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{URL: rawURL, Error: err.Error()}
	}
	req.Header.Set("User-Agent", contentUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return Result{URL: rawURL, Error: "timeout"}
		}
		return Result{URL: rawURL, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return Result{URL: rawURL, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return Result{URL: rawURL, Error: err.Error()}
	}

	cleaned := normalizeFragment(strings.TrimSpace(f.keep.Sanitize(article.Content)))
	if cleaned == "" {
		return Result{URL: rawURL, Error: "no content extracted"}
	}

	return Result{URL: rawURL, Content: cleaned, Success: true}
}

// normalizeFragment drops whitespace-only blocks left over from sanitizing
// and truncates the fragment at maxContentBlocks.
func normalizeFragment(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="root">` + fragment + `</div>`))
	if err != nil {
		return fragment
	}

	root := doc.Find("#root")
	blocks := 0
	root.Children().Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.Text()) == "" {
			sel.Remove()
			return
		}
		blocks++
		if blocks > maxContentBlocks {
			sel.Remove()
		}
	})

	html, err := root.Html()
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(html)
}

func isTimeout(err error) bool {
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}

// Apply sets Content on articles with a successful non-empty result; all
// others are left unchanged. Enrichment is strictly additive.
func Apply(articles []domain.Article, results map[string]Result) {
	for i := range articles {
		if result, ok := results[articles[i].URL]; ok && result.Success && result.Content != "" {
			articles[i].Content = result.Content
		}
	}
}

// Enrich implements ports.Enricher over a grouped fetch result, updating the
// grouped articles in place.
func (f *Fetcher) Enrich(ctx context.Context, grouped *domain.Grouped) {
	results := f.FetchAll(ctx, grouped.All())

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}
	if f.logger != nil {
		f.logger.Info("content enrichment finished", "urls", len(results), "extracted", succeeded)
	}

	for _, key := range grouped.Keys() {
		Apply(grouped.Get(key), results)
	}
}
