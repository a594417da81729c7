package domain

// Grouped holds articles keyed by their source label while remembering the
// order in which keys first appeared. A plain map would lose that order, and
// section assembly depends on it for every group outside the priority list.
type Grouped struct {
	keys  []string
	byKey map[string][]Article
}

// NewGrouped builds an empty grouping.
func NewGrouped() *Grouped {
	return &Grouped{byKey: map[string][]Article{}}
}

// Add appends the article under its own Source label.
func (g *Grouped) Add(article Article) {
	key := article.Source
	if _, ok := g.byKey[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.byKey[key] = append(g.byKey[key], article)
}

// Keys returns group labels in order of first appearance.
func (g *Grouped) Keys() []string {
	return g.keys
}

// Get returns the articles grouped under key, nil when absent.
func (g *Grouped) Get(key string) []Article {
	return g.byKey[key]
}

// Total counts articles across all groups.
func (g *Grouped) Total() int {
	total := 0
	for _, articles := range g.byKey {
		total += len(articles)
	}
	return total
}

// All returns every article, iterating groups in insertion order.
func (g *Grouped) All() []Article {
	out := make([]Article, 0, g.Total())
	for _, key := range g.keys {
		out = append(out, g.byKey[key]...)
	}
	return out
}
