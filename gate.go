package wikimcp

import "strings"

// DefaultNamespacePrefixes are the title prefixes of non-article pages.
var DefaultNamespacePrefixes = []string{
	"File:",
	"Category:",
	"Template:",
	"User:",
	"Talk:",
	"Wikipedia:",
	"Help:",
	"Portal:",
	"MediaWiki:",
	"Module:",
}

// A Gate is the two stage PageGate built from an optional TopicFilter.
type Gate struct {
	// Filter is the active topic filter; nil accepts every article.
	Filter TopicFilter
	// Prefixes are rejected namespace prefixes. Nil means
	// DefaultNamespacePrefixes.
	Prefixes []string
}

// NewGate gets a gate for the given filter (which may be nil).
func NewGate(f TopicFilter) *Gate {
	return &Gate{Filter: f}
}

func (g *Gate) prefixes() []string {
	if g.Prefixes == nil {
		return DefaultNamespacePrefixes
	}
	return g.Prefixes
}

// AcceptTitle rejects empty and namespaced titles, then requires a
// keyword in the title when a filter is active.
func (g *Gate) AcceptTitle(title string) bool {
	if title == "" {
		return false
	}
	for _, p := range g.prefixes() {
		if strings.HasPrefix(title, p) {
			return false
		}
	}
	if g.Filter == nil {
		return true
	}
	return g.Filter.MatchTitle(title)
}

// AcceptPage re-evaluates relevance over title and cleaned content.
func (g *Gate) AcceptPage(p *Page) bool {
	if g.Filter == nil {
		return true
	}
	return g.Filter.IsRelevant(p.Title, p.Content)
}
