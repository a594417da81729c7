package usecase

import (
	"fmt"
	"time"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

// Well-known sources lead the digest in this order; remaining groups follow
// in order of first appearance.
var sectionPriority = []string{"Hacker News", "Lobsters", "Dev.to"}

// BuildDigest turns grouped articles into an ordered sequence of titled
// sections. Empty groups never produce a section.
func BuildDigest(grouped *domain.Grouped, cfg config.DigestConfig) domain.Digest {
	now := time.Now()

	var sections []domain.Section
	taken := map[string]bool{}

	for _, label := range sectionPriority {
		if articles := grouped.Get(label); len(articles) > 0 {
			sections = append(sections, domain.Section{Title: label, Articles: articles})
			taken[label] = true
		}
	}

	for _, label := range grouped.Keys() {
		if taken[label] {
			continue
		}
		if articles := grouped.Get(label); len(articles) > 0 {
			sections = append(sections, domain.Section{Title: label, Articles: articles})
		}
	}

	return domain.Digest{
		Title:    cfg.Title,
		Date:     now,
		Sections: sections,
		Intro:    fmt.Sprintf("Your curated tech digest for %s.", now.Format("Monday, January 2")),
	}
}
