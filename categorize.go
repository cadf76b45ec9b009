package wikimcp

import "sort"

// A Categorizer assigns categories to an article.
type Categorizer interface {
	Categorize(title, content string) []string
}

// NoCategorizer assigns no categories.
type NoCategorizer struct{}

func (NoCategorizer) Categorize(title, content string) []string { return nil }

// A KeywordCategorizer puts an article in every category for which one
// of the keywords is a word of the title or content.
type KeywordCategorizer map[string][]string

func (k KeywordCategorizer) Categorize(title, content string) []string {
	tw, bw := words(title), words(content)

	var rv []string
	for cat, keywords := range k {
		for _, kw := range keywords {
			if hasWord(tw, kw) || hasWord(bw, kw) {
				rv = append(rv, cat)
				break
			}
		}
	}
	sort.Strings(rv)
	return rv
}
