package wikimcp

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// cleaners run in order; later ones rely on the earlier ones having
// removed templates and links.
var cleaners []rewrite

var nowikiRE, commentRE *regexp.Regexp

func init() {
	nowikiRE = regexp.MustCompile(`(?s)<nowiki>.*?</nowiki>`)
	commentRE = regexp.MustCompile(`(?s)<!--.*?-->`)

	for _, c := range []struct{ pattern, repl string }{
		// templates, not nested
		{`\{\{[^}]*\}\}`, ""},
		{`\[\[\s*(?i:category)\s*:[^\]]*\]\]`, ""},
		{`\[\[\s*(?i:file|image)\s*:[^\]]*\]\]`, ""},
		// piped links keep the label, plain links the target
		{`\[\[[^\]]*\|([^\]]*)\]\]`, "$1"},
		{`\[\[([^\]]*)\]\]`, "$1"},
		{`'''([^']*?)'''`, "$1"},
		{`''([^']*?)''`, "$1"},
		// <ref name="x"/> is left to the tag pass so it can't swallow
		// the text up to the next </ref>
		{`(?s)<ref(?:\s[^>]*[^/>])?>.*?</ref>`, ""},
		{nowikiRE.String(), ""},
		{commentRE.String(), ""},
		{`<[^>]*>`, ""},
		{`={2,6}([^=]*?)={2,6}`, "$1"},
	} {
		cleaners = append(cleaners, rewrite{regexp.MustCompile(c.pattern), c.repl})
	}
}

// CleanWikitext converts raw wikitext into plain prose.
//
// This is a regex pass, not a parser: nested templates and other
// malformed or deeply nested markup may leave residue.
func CleanWikitext(text string) string {
	for _, c := range cleaners {
		text = c.re.ReplaceAllString(text, c.repl)
	}

	lines := strings.Split(text, "\n")
	rv := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			rv = append(rv, l)
		}
	}
	return strings.Join(rv, "\n")
}
