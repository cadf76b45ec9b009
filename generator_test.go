package wikimcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyDump = `<mediawiki>
  <page>
    <title>World War II</title>
    <id>32927</id>
    <revision>
      <text>World War II was a global war that lasted from 1939 to 1945. The war involved the vast majority of the world's countries.</text>
    </revision>
  </page>
  <page>
    <title>Roman Empire</title>
    <id>25458</id>
    <revision>
      <text>The Roman Empire was the post-Republican period of ancient Rome.</text>
    </revision>
  </page>
  <page>
    <title>File:Example.jpg</title>
    <id>12345</id>
    <revision>
      <text>This is a file page and should be excluded.</text>
    </revision>
  </page>
  <page>
    <title>Computer Science</title>
    <id>5323</id>
    <revision>
      <text>Computer science is the study of algorithms and data structures.</text>
    </revision>
  </page>
</mediawiki>`

// titleCategorizer files titles containing "war" under "war".
type titleCategorizer struct{}

func (titleCategorizer) Categorize(title, content string) []string {
	if strings.Contains(strings.ToLower(title), "war") {
		return []string{"war"}
	}
	return nil
}

func testConfigFor(t *testing.T, dump string) *Config {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "test.xml")
	require.NoError(t, os.WriteFile(in, []byte(dump), 0o644))

	cfg := DefaultConfig()
	cfg.Input = in
	cfg.Output = filepath.Join(dir, "output")
	cfg.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	return cfg
}

func runGenerator(t *testing.T, cfg *Config, c Categorizer) string {
	t.Helper()
	var buf bytes.Buffer
	g, err := NewGenerator(cfg, c, testLogger(&buf))
	require.NoError(t, err)
	require.NoError(t, g.Run())
	return buf.String()
}

func readFile(t *testing.T, elem ...string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(elem...))
	require.NoError(t, err)
	return string(b)
}

// toolText gets the text of the single content block of a tool file.
func toolText(t *testing.T, elem ...string) string {
	t.Helper()
	var r storedResponse
	require.NoError(t, json.Unmarshal([]byte(readFile(t, elem...)), &r))
	require.Len(t, r.Content, 1)
	assert.Equal(t, "text", r.Content[0].Type)
	return r.Content[0].Text
}

// resourceText gets the embedded text of a resource file.
func resourceText(t *testing.T, elem ...string) string {
	t.Helper()
	var r struct {
		URI      string `json:"uri"`
		MIMEType string `json:"mimeType"`
		Text     string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, elem...)), &r))
	assert.Equal(t, "application/json", r.MIMEType)
	return r.Text
}

func TestGenerateLayout(t *testing.T) {
	cfg := testConfigFor(t, historyDump)
	cfg.Filter = "history"
	runGenerator(t, cfg, NoCategorizer{})

	out := cfg.Output
	for _, p := range []string{
		"mcp.json",
		"resources/stats.json",
		"resources/articles.json",
		"tools/list_articles.json",
		"tools/list_categories.json",
	} {
		assert.FileExists(t, filepath.Join(out, p))
	}
	for _, p := range []string{"resources", "tools/list_articles", "tools/categories", "tools/get_article"} {
		assert.DirExists(t, filepath.Join(out, p))
	}

	manifest := readFile(t, out, "mcp.json")
	for _, s := range []string{"Wikipedia EN History StaticMCP",
		"get_article", "list_articles", "list_categories", "categories"} {
		assert.Contains(t, manifest, s)
	}

	var stats Stats
	require.NoError(t, json.Unmarshal([]byte(resourceText(t, out, "resources", "stats.json")), &stats))
	assert.Equal(t, 2, stats.TotalArticles)
	assert.Equal(t, 0, stats.TotalRedirects)
	assert.Equal(t, "en", stats.Language)
	require.NotNil(t, stats.TopicFilter)
	assert.Equal(t, "Historical Events, Figures, and Civilizations", *stats.TopicFilter)
	assert.Equal(t, "2024-03-01 12:30:00 UTC", stats.GeneratedAt)
	assert.False(t, stats.StreamingMode)
}

func TestGenerateHistoryFilter(t *testing.T) {
	cfg := testConfigFor(t, historyDump)
	cfg.Filter = "History"
	runGenerator(t, cfg, NoCategorizer{})

	var titles []string
	require.NoError(t, json.Unmarshal([]byte(resourceText(t, cfg.Output, "resources", "articles.json")), &titles))
	assert.Equal(t, []string{"World War II", "Roman Empire"}, titles)

	article := toolText(t, cfg.Output, "tools", "get_article", "world_war_ii.json")
	assert.True(t, strings.HasPrefix(article, "# World War II\n\n"))
	assert.Contains(t, article, "global war")
	assert.FileExists(t, filepath.Join(cfg.Output, "tools", "get_article", "roman_empire.json"))
	assert.NoFileExists(t, filepath.Join(cfg.Output, "tools", "get_article", "computer_science.json"))
	assert.NoFileExists(t, filepath.Join(cfg.Output, "tools", "get_article", "file_example_jpg.json"))
}

func TestGenerateNoFilter(t *testing.T) {
	cfg := testConfigFor(t, historyDump)
	runGenerator(t, cfg, nil)

	manifest := readFile(t, cfg.Output, "mcp.json")
	assert.Contains(t, manifest, "Wikipedia EN StaticMCP")

	var stats map[string]any
	require.NoError(t, json.Unmarshal([]byte(resourceText(t, cfg.Output, "resources", "stats.json")), &stats))
	assert.Contains(t, stats, "topic_filter")
	assert.Nil(t, stats["topic_filter"])
	assert.Equal(t, float64(3), stats["total_articles"])
}

func TestGenerateCategories(t *testing.T) {
	cfg := testConfigFor(t, historyDump)
	cfg.Filter = "history"
	runGenerator(t, cfg, titleCategorizer{})

	var list categoryList
	require.NoError(t, json.Unmarshal([]byte(toolText(t, cfg.Output, "tools", "list_categories.json")), &list))
	assert.Equal(t, []string{"war"}, list.Categories)

	var members categoryMembers
	require.NoError(t, json.Unmarshal([]byte(toolText(t, cfg.Output, "tools", "categories", "war.json")), &members))
	assert.Equal(t, "war", members.Category)
	assert.Equal(t, []string{"World War II"}, members.Articles)
	assert.Equal(t, 1, members.Count)
}

func TestGenerateCategoryFileCollision(t *testing.T) {
	cfg := testConfigFor(t, `<mediawiki>
<page><title>Battle of Hastings</title><id>1</id><revision><text>A battle in 1066.</text></revision></page>
<page><title>Treaty of Paris</title><id>2</id><revision><text>A treaty and a battle.</text></revision></page>
</mediawiki>`)
	log := runGenerator(t, cfg, KeywordCategorizer{
		"War/Peace": {"battle"},
		"War Peace": {"treaty"},
	})

	var list categoryList
	require.NoError(t, json.Unmarshal([]byte(toolText(t, cfg.Output, "tools", "list_categories.json")), &list))
	assert.Equal(t, []string{"War Peace", "War/Peace"}, list.Categories)

	var members categoryMembers
	require.NoError(t, json.Unmarshal([]byte(toolText(t, cfg.Output,
		"tools", "categories", "war_peace.json")), &members))
	assert.Equal(t, "War Peace", members.Category)
	assert.Equal(t, []string{"Treaty of Paris", "Battle of Hastings"}, members.Articles)
	assert.Equal(t, 2, members.Count)
	assert.Contains(t, log, "Merging categories with the same file name")
}

func TestGenerateDumpCategories(t *testing.T) {
	cfg := testConfigFor(t, `<mediawiki><page><title>Battle of Hastings</title><id>1</id>
<revision><text>A battle in 1066.
[[Category:Battles involving England]]</text></revision></page></mediawiki>`)
	cfg.DumpCategories = true
	runGenerator(t, cfg, nil)

	var members categoryMembers
	require.NoError(t, json.Unmarshal([]byte(toolText(t, cfg.Output,
		"tools", "categories", "battles_involving_england.json")), &members))
	assert.Equal(t, "Battles involving England", members.Category)
	assert.Equal(t, []string{"Battle of Hastings"}, members.Articles)
}

func TestGeneratePagination(t *testing.T) {
	titles := make([]string, 120)
	for i := range titles {
		titles[i] = fmt.Sprintf("Battle %03d", i)
	}
	cfg := testConfigFor(t, dumpOf(titles...))
	runGenerator(t, cfg, nil)

	for page := 1; page <= 3; page++ {
		var p articlePage
		require.NoError(t, json.Unmarshal([]byte(toolText(t, cfg.Output,
			"tools", "list_articles", fmt.Sprintf("%d.json", page))), &p))
		require.NotNil(t, p.Pagination.CurrentPage)
		assert.Equal(t, page, *p.Pagination.CurrentPage)
		assert.Equal(t, 3, p.Pagination.TotalPages)
		assert.Equal(t, 50, p.Pagination.PerPage)
		assert.Equal(t, 120, p.Pagination.TotalArticles)
		if page < 3 {
			assert.Len(t, p.Articles, 50)
		} else {
			assert.Len(t, p.Articles, 20)
		}
	}
	assert.NoFileExists(t, filepath.Join(cfg.Output, "tools", "list_articles", "4.json"))

	text := toolText(t, cfg.Output, "tools", "list_articles.json")
	assert.Contains(t, text, `"current_page": null`)
	var summary articleSummary
	require.NoError(t, json.Unmarshal([]byte(text), &summary))
	assert.Equal(t, 3, summary.Pagination.TotalPages)
	assert.Equal(t, "Use /list_articles/{page}.json to get specific pages (1-3)", summary.Message)
}

func TestGenerateEmpty(t *testing.T) {
	cfg := testConfigFor(t, "<mediawiki></mediawiki>")
	runGenerator(t, cfg, nil)

	text := toolText(t, cfg.Output, "tools", "list_articles.json")
	var summary articleSummary
	require.NoError(t, json.Unmarshal([]byte(text), &summary))
	assert.Equal(t, 0, summary.Pagination.TotalPages)
	assert.Equal(t, "[]", resourceText(t, cfg.Output, "resources", "articles.json"))
}

func TestGenerateStreaming(t *testing.T) {
	cfg := testConfigFor(t, historyDump)
	cfg.Filter = "history"
	cfg.Streaming = true
	runGenerator(t, cfg, nil)

	var titles []string
	require.NoError(t, json.Unmarshal([]byte(resourceText(t, cfg.Output, "resources", "articles.json")), &titles))
	assert.Equal(t, []string{"World War II", "Roman Empire"}, titles)

	var stats Stats
	require.NoError(t, json.Unmarshal([]byte(resourceText(t, cfg.Output, "resources", "stats.json")), &stats))
	assert.True(t, stats.StreamingMode)
}

func TestGenerateRedirects(t *testing.T) {
	cfg := testConfigFor(t, `<mediawiki>
<page><title>Rome</title><id>1</id><revision><text>The eternal city.</text></revision></page>
<page><title>Roma</title><id>2</id><redirect title="Rome"/><revision><text>#REDIRECT [[Rome]]</text></revision></page>
</mediawiki>`)
	runGenerator(t, cfg, nil)

	var stats Stats
	require.NoError(t, json.Unmarshal([]byte(resourceText(t, cfg.Output, "resources", "stats.json")), &stats))
	assert.Equal(t, 1, stats.TotalArticles)
	assert.Equal(t, 1, stats.TotalRedirects)
	assert.NoFileExists(t, filepath.Join(cfg.Output, "tools", "get_article", "roma.json"))
}

func TestGenerateMaxArticles(t *testing.T) {
	cfg := testConfigFor(t, dumpOf("A", "B", "C"))
	cfg.MaxArticles = 2
	log := runGenerator(t, cfg, nil)

	var titles []string
	require.NoError(t, json.Unmarshal([]byte(resourceText(t, cfg.Output, "resources", "articles.json")), &titles))
	assert.Equal(t, []string{"A", "B"}, titles)
	assert.Contains(t, log, "Reached article limit")
}

func TestGenerateCollisions(t *testing.T) {
	long1 := "This is a long historical war article about ancient battles. " + strings.Repeat("a", 1400)
	long2 := "This is another long war article about medieval conflicts. " + strings.Repeat("b", 1400)
	cfg := testConfigFor(t, fmt.Sprintf(`<mediawiki>
<page><title>War Article</title><id>1</id><revision><text>Short content about historical war events.</text></revision></page>
<page><title>War/Article</title><id>2</id><revision><text>Another short article about war history.</text></revision></page>
<page><title>Battle Article</title><id>3</id><revision><text>%s</text></revision></page>
<page><title>Battle/Article</title><id>4</id><revision><text>%s</text></revision></page>
</mediawiki>`, long1, long2))
	cfg.Filter = "history"
	cfg.Streaming = true
	log := runGenerator(t, cfg, nil)

	dir := filepath.Join(cfg.Output, "tools", "get_article")
	merged := toolText(t, dir, "war_article.json")
	assert.Contains(t, merged, "War Article")
	assert.Contains(t, merged, "War/Article")
	assert.Contains(t, merged, "---")

	base := toolText(t, dir, "battle_article.json")
	assert.Contains(t, base, "Multiple articles found")
	assert.Contains(t, base, "Battle Article")
	assert.Contains(t, base, "Battle/Article")

	v1 := toolText(t, dir, "battle_article_1.json")
	v2 := toolText(t, dir, "battle_article_2.json")
	assert.NotContains(t, v1, "---")
	assert.NotContains(t, v2, "---")
	assert.NotEqual(t, v1, v2)
	assert.Contains(t, v1+v2, "ancient battles")

	assert.Contains(t, log, "merged=1")
	assert.Contains(t, log, "indexed=1")
}

func TestGenerateBzip2(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Input = "testdata/sample.xml.bz2"
	cfg.Output = dir
	idx := filepath.Join(dir, "index.txt")
	require.NoError(t, os.WriteFile(idx, []byte(testData), 0o644))
	cfg.Index = idx
	log := runGenerator(t, cfg, nil)

	assert.FileExists(t, filepath.Join(dir, "tools", "get_article", "python__programming_language_.json"))
	assert.Contains(t, log, "Read index")
}

func TestNewGeneratorInvalid(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewGenerator(cfg, nil, nil)
	assert.ErrorIs(t, err, ErrNoInput)

	cfg = testConfigFor(t, historyDump)
	cfg.Filter = "nope"
	assert.ErrorIs(t, Generate(cfg, nil), ErrUnknownFilter)
}

func TestGenerateMissingInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input = filepath.Join(t.TempDir(), "missing.xml")
	cfg.Output = t.TempDir()
	err := Generate(cfg, nil)
	assert.ErrorContains(t, err, "opening dump")
}
