package wikimcp

import (
	"io"
	"strconv"
	"strings"
)

// A Page is one <page> record of the dump.
type Page struct {
	Title string
	// ID is the page id; the first <id> inside the page wins and 0
	// means unset.
	ID uint64
	// Content is the cleaned article text.
	Content string
	// Redirect is the target title of a redirect page, or "".
	Redirect string
	// Categories are the [[Category:...]] names declared in the raw text.
	Categories []string
}

// IsRedirect reports whether the page is a redirect stub.
func (p *Page) IsRedirect() bool {
	return p.Redirect != ""
}

// A PageGate decides which pages survive assembly.
//
// AcceptTitle runs as soon as the title is known and is expected to be
// cheap; rejected pages are still walked but their text is never
// cleaned. AcceptPage runs on the complete page.
type PageGate interface {
	AcceptTitle(title string) bool
	AcceptPage(p *Page) bool
}

type assemblerState int

const (
	stateIdle assemblerState = iota
	stateInPage
)

// An Assembler is the state machine that builds Pages out of dump events.
type Assembler struct {
	gate       PageGate
	state      assemblerState
	page       *Page
	suppressed bool
	redirect   string
	buf        strings.Builder
}

// NewAssembler gets an assembler that filters pages through g.
func NewAssembler(g PageGate) *Assembler {
	return &Assembler{gate: g}
}

// Feed advances the state machine by one event. It returns the page
// finalized by this event, or nil.
func (a *Assembler) Feed(ev Event) *Page {
	switch ev.Kind {
	case Text:
		if a.state == stateInPage {
			a.buf.WriteString(ev.Text)
		}
	case StartElement:
		a.buf.Reset()
		switch ev.Name {
		case "page":
			a.state = stateInPage
			a.page = &Page{}
			a.suppressed = false
		case "redirect":
			a.redirect = ev.Attribute("title")
		}
	case EndElement:
		defer a.buf.Reset()
		if a.state == stateInPage {
			return a.end(ev.Name)
		}
	}
	return nil
}

func (a *Assembler) end(name string) *Page {
	p := a.page
	switch name {
	case "title":
		p.Title = a.buf.String()
		if !a.gate.AcceptTitle(p.Title) {
			a.suppressed = true
		}
	case "id":
		if p.ID == 0 {
			// Unparseable ids stay unset.
			p.ID, _ = strconv.ParseUint(a.buf.String(), 10, 64)
		}
	case "text":
		if !a.suppressed {
			raw := a.buf.String()
			p.Content = CleanWikitext(raw)
			p.Categories = FindCategories(raw)
			if p.Redirect == "" {
				p.Redirect = redirectTarget(raw)
			}
		}
	case "redirect":
		p.Redirect = a.redirect
		if p.Redirect == "" {
			p.Redirect = a.buf.String()
		}
		a.redirect = ""
	case "page":
		accepted := !a.suppressed && a.gate.AcceptPage(p)
		a.state = stateIdle
		a.page = nil
		a.suppressed = false
		if accepted {
			return p
		}
	}
	return nil
}

// A Parser emits the accepted pages of a dump, one at a time.
type Parser struct {
	d *Decoder
	a *Assembler
}

// NewParser gets a dump parser reading from r.
func NewParser(r io.Reader, f Format, g PageGate) *Parser {
	return &Parser{d: NewDecoder(r, f), a: NewAssembler(g)}
}

// Next gets the next accepted page. It returns io.EOF once the dump is
// exhausted.
func (p *Parser) Next() (*Page, error) {
	for {
		ev, err := p.d.Next()
		if err != nil {
			return nil, err
		}
		if page := p.a.Feed(ev); page != nil {
			return page, nil
		}
	}
}
