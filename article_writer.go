package wikimcp

import (
	"fmt"
	"regexp"
	"strings"
)

// MergeThreshold is the size, in bytes, up to which colliding articles
// are merged into one document instead of being split behind an index.
const MergeThreshold = 1000

// An ArtifactKind classifies the text stored under an article name.
type ArtifactKind int

const (
	// KindArticle is a single "# Title" article.
	KindArticle ArtifactKind = iota
	// KindMerged is several short articles separated by dividers.
	KindMerged
	// KindIndex is a "Multiple articles found" listing of colliding titles.
	KindIndex
)

func (k ArtifactKind) String() string {
	switch k {
	case KindArticle:
		return "article"
	case KindMerged:
		return "merged"
	case KindIndex:
		return "index"
	}
	return fmt.Sprintf("ArtifactKind(%d)", int(k))
}

const (
	indexHeader    = "Multiple articles found. Choose the one you need:\n\n"
	sectionDivider = "\n\n---\n\n## "
)

var indexEntryRE = regexp.MustCompile(
	`(?m)^• \*\*(.*)\*\* - Use get_article tool with title '.*'(?: \(see ([a-z0-9_-]+)\))?$`)

// Classify tells which of the three artifact shapes text has.
func Classify(text string) ArtifactKind {
	switch {
	case strings.HasPrefix(text, "Multiple articles found"):
		return KindIndex
	case strings.Contains(text, sectionDivider):
		return KindMerged
	}
	return KindArticle
}

type section struct {
	title   string
	content string
}

func renderArticle(title, content string) string {
	return "# " + title + "\n\n" + content
}

func renderSections(secs []section) string {
	var b strings.Builder
	for i, s := range secs {
		if i == 0 {
			b.WriteString(renderArticle(s.title, s.content))
			continue
		}
		b.WriteString(sectionDivider)
		b.WriteString(s.title)
		b.WriteString("\n\n")
		b.WriteString(s.content)
	}
	return b.String()
}

// parseSections splits an article or merged document back into its
// articles. Cleaned content never holds a blank line, so "\n\n" only
// ever occurs in the framing.
func parseSections(text string) []section {
	parts := strings.Split(text, sectionDivider)
	rv := make([]section, 0, len(parts))
	for i, p := range parts {
		if i == 0 {
			if !strings.HasPrefix(p, "# ") {
				rv = append(rv, section{title: "Unknown", content: p})
				continue
			}
			p = p[2:]
		}
		title, content, _ := strings.Cut(p, "\n\n")
		rv = append(rv, section{title: title, content: content})
	}
	return rv
}

type indexEntry struct {
	title string
	name  string
}

func renderIndexEntry(e indexEntry) string {
	if e.name == "" {
		return fmt.Sprintf("• **%s** - Use get_article tool with title '%s'\n", e.title, e.title)
	}
	return fmt.Sprintf("• **%s** - Use get_article tool with title '%s' (see %s)\n",
		e.title, e.title, e.name)
}

func renderIndex(entries []indexEntry) string {
	var b strings.Builder
	b.WriteString(indexHeader)
	for _, e := range entries {
		b.WriteString(renderIndexEntry(e))
	}
	return b.String()
}

func parseIndex(text string) []indexEntry {
	var rv []indexEntry
	for _, m := range indexEntryRE.FindAllStringSubmatch(text, -1) {
		rv = append(rv, indexEntry{title: m[1], name: m[2]})
	}
	return rv
}

// An ArticleWriter materializes one artifact per encoded title,
// reconciling titles whose encoded names collide.
//
// Calls for the same name must be serialized; the writer reads back
// what it wrote before.
type ArticleWriter struct {
	store ArtifactStore
	// Threshold overrides MergeThreshold when positive.
	Threshold int
}

// NewArticleWriter gets an ArticleWriter on top of s.
func NewArticleWriter(s ArtifactStore) *ArticleWriter {
	return &ArticleWriter{store: s, Threshold: MergeThreshold}
}

func (w *ArticleWriter) threshold() int {
	if w.Threshold > 0 {
		return w.Threshold
	}
	return MergeThreshold
}

// Write stores an article under its encoded name and reports what
// kind of artifact the name holds afterwards.
//
// A fresh name gets the article. A name that already holds short
// articles gets this one appended as another section if both are
// short. Otherwise the name turns into an index of every colliding
// title and each article moves to a numbered sibling (name_1,
// name_2, ...). An index only ever grows.
func (w *ArticleWriter) Write(title, content string) (ArtifactKind, error) {
	name := EncodeFilename(title)
	existing, ok, err := w.store.Get(name)
	if err != nil {
		return 0, fmt.Errorf("reading %v: %w", name, err)
	}
	if !ok {
		return KindArticle, w.store.Put(name, renderArticle(title, content))
	}

	if Classify(existing) == KindIndex {
		return KindIndex, w.addToIndex(name, existing, title, content)
	}

	secs := parseSections(existing)
	for i := range secs {
		if secs[i].title != title {
			continue
		}
		// Same title again: the later revision replaces the earlier.
		secs[i].content = content
		if len(secs) == 1 {
			return KindArticle, w.store.Put(name, renderSections(secs))
		}
		if len(content) <= w.threshold() {
			return KindMerged, w.store.Put(name, renderSections(secs))
		}
		return KindIndex, w.escalate(name, secs)
	}

	secs = append(secs, section{title, content})
	if len(existing) <= w.threshold() && len(content) <= w.threshold() {
		return KindMerged, w.store.Put(name, renderSections(secs))
	}
	return KindIndex, w.escalate(name, secs)
}

// escalate moves every section to a sibling and turns name into an index.
func (w *ArticleWriter) escalate(name string, secs []section) error {
	entries := make([]indexEntry, 0, len(secs))
	next := 1
	for _, s := range secs {
		sib, n, err := w.freeSibling(name, next)
		if err != nil {
			return err
		}
		next = n + 1
		if err := w.store.Put(sib, renderArticle(s.title, s.content)); err != nil {
			return err
		}
		entries = append(entries, indexEntry{s.title, sib})
	}
	return w.store.Put(name, renderIndex(entries))
}

func (w *ArticleWriter) addToIndex(name, existing, title, content string) error {
	entries := parseIndex(existing)
	for i, e := range entries {
		if e.title != title || e.name == "" {
			continue
		}
		// The sibling is also the base name of other titles and may
		// have been merged or indexed since; only a lone article for
		// this title is rewritten in place.
		owned, err := w.holdsOnly(e.name, title)
		if err != nil {
			return err
		}
		if owned {
			return w.store.Put(e.name, renderArticle(title, content))
		}
		sib, _, err := w.freeSibling(name, 1)
		if err != nil {
			return err
		}
		if err := w.store.Put(sib, renderArticle(title, content)); err != nil {
			return err
		}
		entries[i].name = sib
		return w.store.Put(name, renderIndex(entries))
	}

	sib, _, err := w.freeSibling(name, 1)
	if err != nil {
		return err
	}
	if err := w.store.Put(sib, renderArticle(title, content)); err != nil {
		return err
	}
	if !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	return w.store.Put(name, existing+renderIndexEntry(indexEntry{title, sib}))
}

// holdsOnly reports whether name is absent or a single article titled title.
func (w *ArticleWriter) holdsOnly(name, title string) (bool, error) {
	text, ok, err := w.store.Get(name)
	if err != nil {
		return false, fmt.Errorf("reading %v: %w", name, err)
	}
	if !ok {
		return true, nil
	}
	if Classify(text) != KindArticle {
		return false, nil
	}
	secs := parseSections(text)
	return len(secs) == 1 && secs[0].title == title, nil
}

// freeSibling finds the first unused name_<n> with n >= from.
func (w *ArticleWriter) freeSibling(name string, from int) (string, int, error) {
	for n := from; ; n++ {
		sib := fmt.Sprintf("%s_%d", name, n)
		_, ok, err := w.store.Get(sib)
		if err != nil {
			return "", 0, fmt.Errorf("reading %v: %w", sib, err)
		}
		if !ok {
			return sib, n, nil
		}
	}
}
