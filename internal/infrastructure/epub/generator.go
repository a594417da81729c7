// Package epub renders a finalized digest into an EPUB document for
// Send-to-Kindle delivery.
package epub

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	goepub "github.com/bmaupin/go-epub"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
	"morningbyte/internal/ports"
)

// Generator implements ports.Renderer on top of go-epub.
type Generator struct {
	cfg config.DigestConfig
}

var _ ports.Renderer = (*Generator)(nil)

// NewGenerator builds a renderer for the given digest settings.
func NewGenerator(cfg config.DigestConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Render writes the digest as an EPUB file at path and returns the path
// actually written.
func (g *Generator) Render(digest domain.Digest, path string) (string, error) {
	book := goepub.NewEpub(fmt.Sprintf("%s - %s", digest.Title, digest.Date.Format("January 2, 2006")))
	book.SetIdentifier("morning-byte-" + digest.Date.Format("20060102"))
	book.SetLang("en")
	book.SetAuthor("Morning Byte")

	cssRef, cleanup, err := addStylesheet(book)
	if err != nil {
		return "", fmt.Errorf("embed stylesheet: %w", err)
	}
	defer cleanup()

	cover, err := g.renderCover(digest)
	if err != nil {
		return "", fmt.Errorf("render cover: %w", err)
	}
	if _, err := book.AddSection(cover, "Cover", "cover.xhtml", cssRef); err != nil {
		return "", fmt.Errorf("add cover: %w", err)
	}

	contents, err := g.renderContents(digest)
	if err != nil {
		return "", fmt.Errorf("render contents: %w", err)
	}
	if _, err := book.AddSection(contents, "Today's Digest", "toc.xhtml", cssRef); err != nil {
		return "", fmt.Errorf("add contents: %w", err)
	}

	for i, section := range digest.Sections {
		if len(section.Articles) == 0 {
			continue
		}
		body, err := g.renderSection(section)
		if err != nil {
			return "", fmt.Errorf("render section %s: %w", section.Title, err)
		}
		filename := fmt.Sprintf("section_%d.xhtml", i)
		if _, err := book.AddSection(body, section.Title, filename, cssRef); err != nil {
			return "", fmt.Errorf("add section %s: %w", section.Title, err)
		}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := book.Write(path); err != nil {
		return "", fmt.Errorf("write epub: %w", err)
	}
	return path, nil
}

// addStylesheet stages the embedded CSS through a temp file, since go-epub
// only accepts CSS by source path.
func addStylesheet(book *goepub.Epub) (string, func(), error) {
	tmp, err := os.CreateTemp("", "morning-byte-*.css")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := tmp.WriteString(digestCSS); err != nil {
		tmp.Close()
		return "", cleanup, err
	}
	if err := tmp.Close(); err != nil {
		return "", cleanup, err
	}

	ref, err := book.AddCSS(tmp.Name(), "main.css")
	if err != nil {
		return "", cleanup, err
	}
	return ref, cleanup, nil
}

var coverTemplate = template.Must(template.New("cover").Parse(`
<div class="cover">
  <h1>{{.Title}}</h1>
  <p class="subtitle">{{.Subtitle}}</p>
  <p class="date">{{.Date}}</p>
  {{if .Intro}}<p>{{.Intro}}</p>{{end}}
  <p class="stats">{{.TotalArticles}} articles from {{.NumSources}} sources</p>
</div>
`))

func (g *Generator) renderCover(digest domain.Digest) (string, error) {
	data := struct {
		Title         string
		Subtitle      string
		Date          string
		Intro         string
		TotalArticles int
		NumSources    int
	}{
		Title:         digest.Title,
		Subtitle:      g.cfg.Subtitle,
		Date:          digest.Date.Format("Monday, January 2, 2006"),
		Intro:         digest.Intro,
		TotalArticles: digest.TotalArticles(),
		NumSources:    len(digest.SourceLabels()),
	}

	var sb strings.Builder
	if err := coverTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var contentsTemplate = template.Must(template.New("contents").Parse(`
<div class="toc">
  <h2>Today's Digest</h2>
  <ul>
    {{range .}}
    <li>{{.Title}} <span class="count">({{.Count}} articles)</span></li>
    {{end}}
  </ul>
</div>
`))

func (g *Generator) renderContents(digest domain.Digest) (string, error) {
	type row struct {
		Title string
		Count int
	}
	rows := make([]row, 0, len(digest.Sections))
	for _, section := range digest.Sections {
		if len(section.Articles) > 0 {
			rows = append(rows, row{Title: section.Title, Count: len(section.Articles)})
		}
	}

	var sb strings.Builder
	if err := contentsTemplate.Execute(&sb, rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var sectionTemplate = template.Must(template.New("section").Parse(`
<div class="section">
  <h2>{{.Title}}</h2>
  {{if .Description}}<p class="section-description">{{.Description}}</p>{{end}}
  {{range .Articles}}
  <div class="article">
    <h3 class="article-title"><a href="{{.URL}}">{{.Title}}</a></h3>
    <p class="article-meta">
      <span class="source">{{.Source}}</span>
      {{if .Author}} &#183; by {{.Author}}{{end}}
      {{if .Score}} &#183; <span class="score">&#9650; {{.Score}}</span>{{end}}
      {{if .Comments}} &#183; <a href="{{.CommentsURL}}" class="comments">{{.Comments}} comments</a>{{end}}
    </p>
    {{if .Domain}}<p class="article-domain">({{.Domain}})</p>{{end}}
    {{if .Content}}
    <div class="article-content">{{.Content}}</div>
    {{else if .Summary}}
    <p class="article-summary">{{.Summary}}</p>
    {{end}}
    {{if .Tags}}
    <div class="tags">{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>
    {{end}}
  </div>
  {{end}}
</div>
`))

type articleView struct {
	Title       string
	URL         string
	Source      string
	Author      string
	Score       int
	Comments    int
	CommentsURL string
	Domain      string
	Summary     string
	Content     template.HTML
	Tags        []string
}

func (g *Generator) renderSection(section domain.Section) (string, error) {
	articles := section.Articles
	if len(articles) > g.cfg.MaxArticlesPerSection {
		articles = articles[:g.cfg.MaxArticlesPerSection]
	}

	views := make([]articleView, 0, len(articles))
	for _, article := range articles {
		view := articleView{
			Title:   article.Title,
			URL:     article.URL,
			Source:  article.Source,
			Author:  article.Author,
			Domain:  article.Domain(),
			Summary: article.Summary,
			Tags:    article.Tags,
		}
		if g.cfg.IncludeScores {
			view.Score = article.Score
		}
		if g.cfg.IncludeCommentsLink {
			view.Comments = article.CommentsCount
			view.CommentsURL = article.CommentsURL
		}
		// Enriched content is already sanitized by the extraction pass.
		view.Content = template.HTML(article.Content)
		if len(view.Tags) > 5 {
			view.Tags = view.Tags[:5]
		}
		views = append(views, view)
	}

	data := struct {
		Title       string
		Description string
		Articles    []articleView
	}{
		Title:       section.Title,
		Description: section.Description,
		Articles:    views,
	}

	var sb strings.Builder
	if err := sectionTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
