package wikimcp

import (
	"regexp"
	"strings"
)

var linkRE, categoryRE *regexp.Regexp

func init() {
	linkRE = regexp.MustCompile(`\[\[([^\|\]]+)`)
	categoryRE = regexp.MustCompile(`\[\[\s*(?i:category)\s*:\s*([^\|\]]+)`)
}

func stripHidden(text string) string {
	return nowikiRE.ReplaceAllString(commentRE.ReplaceAllString(text, ""), "")
}

// FindLinks finds all the link targets from within a raw article body.
func FindLinks(text string) []string {
	matches := linkRE.FindAllStringSubmatch(stripHidden(text), -1)

	rv := make([]string, 0, len(matches))
	for _, x := range matches {
		rv = append(rv, x[1])
	}

	return rv
}

// FindCategories finds the categories a raw article body declares with
// [[Category:Name]] or [[Category:Name|sort key]], without duplicates
// and in order of appearance.
func FindCategories(text string) []string {
	matches := categoryRE.FindAllStringSubmatch(stripHidden(text), -1)

	var rv []string
	seen := map[string]bool{}
	for _, x := range matches {
		name := strings.TrimSpace(x[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		rv = append(rv, name)
	}

	return rv
}

// redirectTarget gets the target of a "#REDIRECT [[Target]]" body, as
// written by dumps that predate the <redirect/> element.
func redirectTarget(text string) string {
	t := strings.TrimSpace(text)
	if len(t) < 9 || !strings.EqualFold(t[:9], "#REDIRECT") {
		return ""
	}
	links := FindLinks(t)
	if len(links) == 0 {
		return ""
	}
	return strings.TrimSpace(links[0])
}
