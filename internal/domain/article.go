package domain

import (
	"net/url"
	"strings"
	"time"
)

// Article is the normalized record every source produces. Title and URL are
// mandatory: adapters drop items that cannot populate both instead of emitting
// partial records.
type Article struct {
	Title         string
	URL           string
	Source        string
	Summary       string
	Author        string
	Score         int
	CommentsCount int
	CommentsURL   string
	PublishedAt   time.Time
	Tags          []string
	Content       string
}

// NewArticle fills PublishedAt with the current time when the source gave none.
func NewArticle(title, rawURL, source string) Article {
	return Article{
		Title:       title,
		URL:         rawURL,
		Source:      source,
		PublishedAt: time.Now(),
	}
}

// Domain returns the URL host with a single leading "www." stripped.
// Computed on demand; never stored on the article.
func (a Article) Domain() string {
	parsed, err := url.Parse(a.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// Section is one titled block of the digest. Built once by the assembler and
// not mutated afterwards.
type Section struct {
	Title       string
	Articles    []Article
	Description string
}

// Digest is the complete output of one run.
type Digest struct {
	Title    string
	Date     time.Time
	Sections []Section
	Intro    string
}

// TotalArticles sums section sizes; it is derived, never stored.
func (d Digest) TotalArticles() int {
	total := 0
	for _, s := range d.Sections {
		total += len(s.Articles)
	}
	return total
}

// SourceLabels collects the distinct source labels across all sections.
func (d Digest) SourceLabels() []string {
	seen := map[string]struct{}{}
	var labels []string
	for _, s := range d.Sections {
		for _, a := range s.Articles {
			if _, ok := seen[a.Source]; ok {
				continue
			}
			seen[a.Source] = struct{}{}
			labels = append(labels, a.Source)
		}
	}
	return labels
}
