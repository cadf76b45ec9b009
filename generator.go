package wikimcp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
)

// ArticlesPerPage is the page size of list_articles.
const ArticlesPerPage = 50

// Generator writes the static MCP tree for one Config.
type Generator struct {
	cfg         *Config
	filter      TopicFilter
	gate        *Gate
	categorizer Categorizer
	log         *slog.Logger

	articles   *ArticleStore
	redirects  *RedirectStore
	categories *CategoryIndex
	writer     *ArticleWriter
	kinds      map[ArtifactKind]int
}

// NewGenerator validates cfg and prepares a Generator. A nil
// categorizer means cfg.Categorizer().
func NewGenerator(cfg *Config, c Categorizer, log *slog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = cfg.Categorizer()
	}
	if log == nil {
		log = slog.Default()
	}
	f, err := cfg.TopicFilter()
	if err != nil {
		return nil, err
	}
	gate, err := cfg.Gate()
	if err != nil {
		return nil, err
	}
	return &Generator{
		cfg:         cfg,
		filter:      f,
		gate:        gate,
		categorizer: c,
		log:         log,
		articles:    NewArticleStore(),
		redirects:   NewRedirectStore(),
		categories:  NewCategoryIndex(),
		kinds:       map[ArtifactKind]int{},
	}, nil
}

// Generate runs cfg with the given categorizer, logging to the default
// logger.
func Generate(cfg *Config, c Categorizer) error {
	g, err := NewGenerator(cfg, c, nil)
	if err != nil {
		return err
	}
	return g.Run()
}

func (g *Generator) path(elem ...string) string {
	return filepath.Join(append([]string{g.cfg.Output}, elem...)...)
}

func (g *Generator) createDirectories() error {
	for _, d := range []string{
		g.path("resources"),
		g.path("tools", "get_article"),
		g.path("tools", "list_articles"),
		g.path("tools", "categories"),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	store, err := NewFileStore(g.path("tools", "get_article"))
	if err != nil {
		return err
	}
	g.writer = NewArticleWriter(store)
	return nil
}

// Run reads the dump and writes the whole tree.
func (g *Generator) Run() error {
	format, err := FormatForPath(g.cfg.Input)
	if err != nil {
		return err
	}
	f, err := os.Open(g.cfg.Input)
	if err != nil {
		return fmt.Errorf("opening dump: %w", err)
	}
	defer f.Close()

	args := []any{"input", g.cfg.Input, "format", format.String(), "streaming", g.cfg.Streaming}
	if st, err := f.Stat(); err == nil {
		args = append(args, "size", humanize.Bytes(uint64(st.Size())))
	}
	if g.filter != nil {
		args = append(args, "filter", g.filter.Name())
	}
	g.log.Info("Reading dump", args...)

	if err := g.createDirectories(); err != nil {
		return err
	}

	in := &Ingester{
		Gate:        g.gate,
		MaxArticles: g.cfg.MaxArticles,
		ReportEvery: g.cfg.ReportEvery,
		Log:         g.log,
	}
	if g.cfg.Index != "" {
		st, err := SummarizeIndexFile(g.cfg.Index)
		if err != nil {
			g.log.Warn("Can't read index", "index", g.cfg.Index, "error", err)
		} else {
			g.log.Info("Read index", "streams", humanize.Comma(int64(st.Streams)),
				"pages", humanize.Comma(st.Pages))
			in.DumpPages = st.Pages
		}
	}

	if g.cfg.Streaming {
		_, err = in.Run(f, format, g.add)
		if err != nil {
			return err
		}
	} else {
		articles, redirects, err := in.Collect(f, format)
		if err != nil {
			return err
		}
		for _, t := range articles.Titles() {
			p, _ := articles.Get(t)
			if err := g.add(p); err != nil {
				return err
			}
		}
		g.redirects = redirects
	}

	if err := g.writeMetadata(); err != nil {
		return err
	}
	g.log.Info("Generated StaticMCP files",
		"output", g.cfg.Output,
		"articles", humanize.Comma(int64(g.articles.Len())),
		"redirects", humanize.Comma(int64(g.redirects.Len())),
		"categories", humanize.Comma(int64(len(g.categories.Names()))),
		"merged", g.kinds[KindMerged],
		"indexed", g.kinds[KindIndex])
	return nil
}

// add records a page and, for articles, writes its artifact.
func (g *Generator) add(p *Page) error {
	if p.IsRedirect() {
		g.redirects.Put(p.Title, p.Redirect)
		return nil
	}
	// Only the title is kept; the text lives in the artifact.
	g.articles.Put(&Page{Title: p.Title, ID: p.ID})

	g.categories.Add(p.Title, g.categorizer.Categorize(p.Title, p.Content)...)
	if g.cfg.DumpCategories {
		g.categories.Add(p.Title, p.Categories...)
	}

	kind, err := g.writer.Write(p.Title, p.Content)
	if err != nil {
		return fmt.Errorf("writing article %q: %w", p.Title, err)
	}
	if kind != KindArticle {
		g.log.Debug("Resolved filename collision",
			"title", p.Title, "name", EncodeFilename(p.Title), "kind", kind.String())
	}
	g.kinds[kind]++
	return nil
}

func (g *Generator) writeMetadata() error {
	if err := writeJSON(g.path("mcp.json"), NewManifest(g.cfg.Language, g.filter)); err != nil {
		return err
	}
	if err := g.writeResources(); err != nil {
		return err
	}
	if err := g.writeArticleList(); err != nil {
		return err
	}
	return g.writeCategories()
}

func prettyJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	return string(b), err
}

func (g *Generator) writeResource(file, uri string, v interface{}, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	return writeJSON(g.path("resources", file), mcp.TextResourceContents{
		URI:      uri,
		MIMEType: jsonMIME,
		Text:     string(b),
	})
}

// Stats is the text of the stats resource.
type Stats struct {
	TotalArticles  int     `json:"total_articles"`
	TotalRedirects int     `json:"total_redirects"`
	Language       string  `json:"language"`
	TopicFilter    *string `json:"topic_filter"`
	GeneratedAt    string  `json:"generated_at"`
	StreamingMode  bool    `json:"streaming_mode"`
}

func (g *Generator) writeResources() error {
	st := Stats{
		TotalArticles:  g.articles.Len(),
		TotalRedirects: g.redirects.Len(),
		Language:       g.cfg.Language,
		GeneratedAt:    g.cfg.now().UTC().Format("2006-01-02 15:04:05 UTC"),
		StreamingMode:  g.cfg.Streaming,
	}
	if g.filter != nil {
		d := g.filter.Description()
		st.TopicFilter = &d
	}
	if err := g.writeResource("stats.json", StatsURI, st, true); err != nil {
		return err
	}
	return g.writeResource("articles.json", ArticlesURI, g.articles.Titles(), false)
}

// Pagination describes one list_articles page; CurrentPage is nil in
// the summary document.
type Pagination struct {
	CurrentPage   *int `json:"current_page"`
	TotalPages    int  `json:"total_pages"`
	PerPage       int  `json:"per_page"`
	TotalArticles int  `json:"total_articles"`
}

type articlePage struct {
	Pagination Pagination `json:"pagination"`
	Articles   []string   `json:"articles"`
}

type articleSummary struct {
	Pagination Pagination `json:"pagination"`
	Message    string     `json:"message"`
}

func (g *Generator) writeTool(v interface{}, elem ...string) error {
	text, err := prettyJSON(v)
	if err != nil {
		return err
	}
	return writeJSON(g.path(append([]string{"tools"}, elem...)...), toolResponse(text))
}

func (g *Generator) writeArticleList() error {
	titles := g.articles.Titles()
	pages := (len(titles) + ArticlesPerPage - 1) / ArticlesPerPage

	for page := 1; page <= pages; page++ {
		start := (page - 1) * ArticlesPerPage
		end := start + ArticlesPerPage
		if end > len(titles) {
			end = len(titles)
		}
		current := page
		err := g.writeTool(articlePage{
			Pagination: Pagination{
				CurrentPage:   &current,
				TotalPages:    pages,
				PerPage:       ArticlesPerPage,
				TotalArticles: len(titles),
			},
			Articles: titles[start:end],
		}, "list_articles", fmt.Sprintf("%d.json", page))
		if err != nil {
			return err
		}
	}

	return g.writeTool(articleSummary{
		Pagination: Pagination{
			TotalPages:    pages,
			PerPage:       ArticlesPerPage,
			TotalArticles: len(titles),
		},
		Message: fmt.Sprintf("Use /list_articles/{page}.json to get specific pages (1-%d)", pages),
	}, "list_articles.json")
}

type categoryList struct {
	Categories []string `json:"categories"`
}

type categoryMembers struct {
	Category string   `json:"category"`
	Articles []string `json:"articles"`
	Count    int      `json:"count"`
}

// writeCategories writes the category list and one file per encoded
// category name. Categories whose names encode alike share that file.
func (g *Generator) writeCategories() error {
	names := g.categories.Names()
	if err := g.writeTool(categoryList{names}, "list_categories.json"); err != nil {
		return err
	}

	var files []string
	byFile := map[string]*categoryMembers{}
	for _, name := range names {
		members := g.categories.Members(name)
		if len(members) == 0 {
			continue
		}
		file := EncodeFilename(name)
		cm, ok := byFile[file]
		if !ok {
			files = append(files, file)
			byFile[file] = &categoryMembers{Category: name, Articles: append([]string(nil), members...)}
			continue
		}
		g.log.Warn("Merging categories with the same file name",
			"category", name, "into", cm.Category, "file", file+".json")
		seen := map[string]bool{}
		for _, t := range cm.Articles {
			seen[t] = true
		}
		for _, t := range members {
			if !seen[t] {
				seen[t] = true
				cm.Articles = append(cm.Articles, t)
			}
		}
	}

	for _, file := range files {
		cm := byFile[file]
		cm.Count = len(cm.Articles)
		if err := g.writeTool(cm, "categories", file+".json"); err != nil {
			return err
		}
	}
	return nil
}
