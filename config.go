package wikimcp

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoInput is returned by Validate when no dump path is set.
	ErrNoInput = errors.New("input path is required")
	// ErrNoOutput is returned by Validate when no output directory is set.
	ErrNoOutput = errors.New("output path is required")
)

// DefaultReportEvery is how many pages go by between progress reports.
const DefaultReportEvery = 1000

// Config describes one generation run.
type Config struct {
	// Input is the dump path, .xml or .bz2.
	Input string `yaml:"input"`
	// Output is the root of the generated tree.
	Output string `yaml:"output"`
	// Language is the wiki language code used in names and stats.
	Language string `yaml:"language"`
	// MaxArticles stops the scan after that many accepted pages; 0 means
	// no limit.
	MaxArticles int `yaml:"max_articles"`
	// Filter names the topic filter, builtin or from Filters. Empty
	// means no filtering.
	Filter string `yaml:"filter"`
	// Filters are extra keyword filters.
	Filters []*KeywordFilter `yaml:"filters"`
	// Categories are keyword rules for the KeywordCategorizer.
	Categories map[string][]string `yaml:"categories"`
	// DumpCategories adds the [[Category:...]] names found in the dump.
	DumpCategories bool `yaml:"dump_categories"`
	// NamespacePrefixes overrides DefaultNamespacePrefixes.
	NamespacePrefixes []string `yaml:"namespace_prefixes"`
	// Streaming writes articles while the dump is read instead of
	// collecting them first.
	Streaming bool `yaml:"streaming"`
	// Index is an optional multistream index used for progress totals.
	Index string `yaml:"index"`
	// ReportEvery is the progress report interval in pages.
	ReportEvery int `yaml:"report_every"`

	// Now stamps generated_at; nil means time.Now.
	Now func() time.Time `yaml:"-"`
}

// DefaultConfig returns a Config with defaults filled in.
func DefaultConfig() *Config {
	return &Config{
		Language:    "en",
		ReportEvery: DefaultReportEvery,
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %v: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config before anything is opened.
func (c *Config) Validate() error {
	if c.Input == "" {
		return ErrNoInput
	}
	if c.Output == "" {
		return ErrNoOutput
	}
	if _, err := FormatForPath(c.Input); err != nil {
		return err
	}
	if c.Language == "" {
		return errors.New("language is required")
	}
	if c.MaxArticles < 0 {
		return fmt.Errorf("max_articles must not be negative, got %d", c.MaxArticles)
	}
	for _, f := range c.Filters {
		if f.FilterName == "" {
			return errors.New("filters: every filter needs a name")
		}
		if len(f.Words) == 0 {
			return fmt.Errorf("filters: %q has no keywords", f.FilterName)
		}
	}
	if _, err := c.TopicFilter(); err != nil {
		return err
	}
	return nil
}

// TopicFilter resolves the configured filter, nil when none is set.
func (c *Config) TopicFilter() (TopicFilter, error) {
	if c.Filter == "" {
		return nil, nil
	}
	extra := make([]TopicFilter, 0, len(c.Filters))
	for _, f := range c.Filters {
		extra = append(extra, f)
	}
	return FilterByName(c.Filter, extra...)
}

// Gate builds the page gate for this config.
func (c *Config) Gate() (*Gate, error) {
	f, err := c.TopicFilter()
	if err != nil {
		return nil, err
	}
	g := NewGate(f)
	g.Prefixes = c.NamespacePrefixes
	return g, nil
}

// Categorizer builds the configured categorizer.
func (c *Config) Categorizer() Categorizer {
	if len(c.Categories) == 0 {
		return NoCategorizer{}
	}
	return KeywordCategorizer(c.Categories)
}

func (c *Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
