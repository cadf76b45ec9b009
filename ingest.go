package wikimcp

import (
	"io"
	"log/slog"
)

// An Ingester runs one sequential pass over a dump.
type Ingester struct {
	Gate PageGate
	// MaxArticles stops the pass after that many accepted pages,
	// redirects included. 0 means no limit.
	MaxArticles int
	// ReportEvery is the progress interval in accepted pages.
	ReportEvery int
	// DumpPages is the page count of the whole dump, if known, for
	// progress lines.
	DumpPages int64
	Log       *slog.Logger
}

// Run hands every accepted page to fn in dump order and returns how
// many were accepted. Decode errors and errors from fn end the pass.
func (in *Ingester) Run(r io.Reader, f Format, fn func(*Page) error) (int, error) {
	log := in.Log
	if log == nil {
		log = slog.Default()
	}
	prog := newProgress(log, int64(in.ReportEvery), in.DumpPages)

	p := NewParser(r, f, in.Gate)
	n, redirects := 0, 0
	for in.MaxArticles <= 0 || n < in.MaxArticles {
		page, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if err := fn(page); err != nil {
			return n, err
		}
		n++
		if page.IsRedirect() {
			redirects++
		}
		prog.page()
	}
	if in.MaxArticles > 0 && n >= in.MaxArticles {
		log.Info("Reached article limit", "max_articles", in.MaxArticles)
	}
	prog.done(redirects)
	return n, nil
}

// Collect reads the whole dump into an ArticleStore and a RedirectStore.
func (in *Ingester) Collect(r io.Reader, f Format) (*ArticleStore, *RedirectStore, error) {
	articles, redirects := NewArticleStore(), NewRedirectStore()
	_, err := in.Run(r, f, func(p *Page) error {
		if p.IsRedirect() {
			redirects.Put(p.Title, p.Redirect)
		} else {
			articles.Put(p)
		}
		return nil
	})
	return articles, redirects, err
}
