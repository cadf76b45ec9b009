package wikimcp

import "sort"

// An ArticleStore holds accepted articles by title. A later page with
// the same title replaces the earlier one but keeps its position.
type ArticleStore struct {
	pages map[string]*Page
	order []string
}

// NewArticleStore gets an empty ArticleStore.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{pages: map[string]*Page{}}
}

// Put stores p under its title.
func (s *ArticleStore) Put(p *Page) {
	if _, ok := s.pages[p.Title]; !ok {
		s.order = append(s.order, p.Title)
	}
	s.pages[p.Title] = p
}

// Get gets the article with the given title.
func (s *ArticleStore) Get(title string) (*Page, bool) {
	p, ok := s.pages[title]
	return p, ok
}

func (s *ArticleStore) Len() int { return len(s.order) }

// Titles lists the titles in first-insertion order.
func (s *ArticleStore) Titles() []string {
	rv := make([]string, len(s.order))
	copy(rv, s.order)
	return rv
}

// A RedirectStore maps redirect titles to their targets.
type RedirectStore struct {
	targets map[string]string
	order   []string
}

// NewRedirectStore gets an empty RedirectStore.
func NewRedirectStore() *RedirectStore {
	return &RedirectStore{targets: map[string]string{}}
}

func (s *RedirectStore) Put(title, target string) {
	if _, ok := s.targets[title]; !ok {
		s.order = append(s.order, title)
	}
	s.targets[title] = target
}

// Target gets the redirect target of title.
func (s *RedirectStore) Target(title string) (string, bool) {
	t, ok := s.targets[title]
	return t, ok
}

func (s *RedirectStore) Len() int { return len(s.order) }

// A CategoryIndex maps category names to member titles in the order
// they were added.
type CategoryIndex struct {
	members map[string][]string
	seen    map[string]map[string]bool
}

// NewCategoryIndex gets an empty CategoryIndex.
func NewCategoryIndex() *CategoryIndex {
	return &CategoryIndex{
		members: map[string][]string{},
		seen:    map[string]map[string]bool{},
	}
}

// Add records title as a member of each of the categories.
func (c *CategoryIndex) Add(title string, categories ...string) {
	for _, cat := range categories {
		if cat == "" {
			continue
		}
		if c.seen[cat] == nil {
			c.seen[cat] = map[string]bool{}
		}
		if c.seen[cat][title] {
			continue
		}
		c.seen[cat][title] = true
		c.members[cat] = append(c.members[cat], title)
	}
}

// Names lists the category names, sorted.
func (c *CategoryIndex) Names() []string {
	rv := make([]string, 0, len(c.members))
	for k := range c.members {
		rv = append(rv, k)
	}
	sort.Strings(rv)
	return rv
}

// Members lists the titles in a category.
func (c *CategoryIndex) Members(name string) []string {
	return c.members[name]
}
