package wikimcp

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrUnknownFilter is returned when a topic filter name can't be resolved.
var ErrUnknownFilter = errors.New("unknown topic filter")

// A TopicFilter narrows ingestion to a subject domain.
type TopicFilter interface {
	// Name is the short name used on the command line and in server names.
	Name() string
	Keywords() []string
	Description() string
	// ServerName is the manifest server name for the given language code.
	ServerName(lang string) string
	// MatchTitle is the cheap title check: some keyword appears,
	// case-insensitively, anywhere in the title.
	MatchTitle(title string) bool
	// IsRelevant is the full check over title and cleaned content.
	IsRelevant(title, content string) bool
}

// Relevance scoring weights for KeywordFilter.IsRelevant.
const (
	titleHitWeight = 2
	bodyHitWeight  = 1
	excludeWeight  = 2
	relevanceScore = 2
)

var wordRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// A KeywordFilter is a TopicFilter driven by a keyword table.
type KeywordFilter struct {
	FilterName string   `yaml:"name"`
	Desc       string   `yaml:"description"`
	Words      []string `yaml:"keywords"`
	Exclude    []string `yaml:"exclude"`
}

func (f *KeywordFilter) Name() string        { return f.FilterName }
func (f *KeywordFilter) Keywords() []string  { return f.Words }
func (f *KeywordFilter) Description() string { return f.Desc }

func (f *KeywordFilter) ServerName(lang string) string {
	return fmt.Sprintf("Wikipedia %s %s StaticMCP", strings.ToUpper(lang), f.FilterName)
}

func (f *KeywordFilter) MatchTitle(title string) bool {
	t := strings.ToLower(title)
	for _, k := range f.Words {
		if strings.Contains(t, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// IsRelevant scores whole-word keyword hits. Title hits count double,
// body hits count once per distinct keyword and exclusion phrases
// count against. A substring that isn't a word of its own (the "war"
// in "Software") never scores.
func (f *KeywordFilter) IsRelevant(title, content string) bool {
	tw := words(title)
	bw := words(content)

	score := 0
	for _, k := range f.Words {
		if hasWord(tw, k) {
			score += titleHitWeight
		}
		if hasWord(bw, k) {
			score += bodyHitWeight
		}
	}
	for _, x := range f.Exclude {
		if hasWord(tw, x) {
			score -= excludeWeight
		}
	}
	return score >= relevanceScore
}

// words lower-cases and tokenizes s into a space delimited string of
// words, with a leading and trailing space.
func words(s string) string {
	toks := wordRE.FindAllString(strings.ToLower(s), -1)
	return " " + strings.Join(toks, " ") + " "
}

// hasWord reports whether the keyword (or its plural) is present in
// the output of words. Multi-word keywords match as phrases.
func hasWord(w, keyword string) bool {
	k := strings.Join(wordRE.FindAllString(strings.ToLower(keyword), -1), " ")
	if k == "" {
		return false
	}
	return strings.Contains(w, " "+k+" ") ||
		strings.Contains(w, " "+k+"s ") ||
		strings.Contains(w, " "+k+"es ")
}

var (
	History = &KeywordFilter{
		FilterName: "History",
		Desc:       "Historical Events, Figures, and Civilizations",
		Words: []string{
			"history", "historical", "war", "battle", "empire", "kingdom",
			"dynasty", "revolution", "ancient", "medieval", "century",
			"civilization", "treaty", "monarchy", "colonial", "republic",
			"emperor", "king", "queen", "pharaoh", "archaeology", "conquest",
			"siege", "crusade", "roman", "rome", "byzantine", "ottoman",
			"renaissance", "independence",
		},
		Exclude: []string{"star wars", "video game"},
	}
	Technology = &KeywordFilter{
		FilterName: "Technology",
		Desc:       "Computing, Software, Engineering, and Inventions",
		Words: []string{
			"technology", "computer", "computing", "software", "hardware",
			"programming", "algorithm", "internet", "network", "digital",
			"electronic", "database", "python", "java", "linux", "robot",
			"engineering", "semiconductor", "cryptography", "artificial intelligence",
			"machine learning", "processor", "operating system",
		},
	}
	Science = &KeywordFilter{
		FilterName: "Science",
		Desc:       "Natural Sciences, Research, and Discoveries",
		Words: []string{
			"science", "scientific", "physics", "chemistry", "biology",
			"astronomy", "geology", "ecology", "genetics", "evolution",
			"quantum", "molecule", "atom", "species", "planet", "galaxy",
			"experiment", "theory", "organism", "element",
		},
	}
	Mathematics = &KeywordFilter{
		FilterName: "Mathematics",
		Desc:       "Mathematical Concepts, Theorems, and Mathematicians",
		Words: []string{
			"mathematics", "mathematical", "mathematician", "theorem", "algebra",
			"geometry", "calculus", "equation", "topology", "statistics",
			"probability", "arithmetic", "prime", "matrix", "lemma", "proof",
			"integral", "polynomial", "conjecture",
		},
	}
	Geography = &KeywordFilter{
		FilterName: "Geography",
		Desc:       "Places, Landforms, and Regions of the World",
		Words: []string{
			"geography", "river", "mountain", "lake", "island", "ocean",
			"country", "city", "capital", "province", "region", "continent",
			"desert", "valley", "peninsula", "archipelago", "volcano",
		},
	}
)

var builtinFilters = []*KeywordFilter{History, Technology, Science, Mathematics, Geography}

// BuiltinFilters lists the filters that ship with the package.
func BuiltinFilters() []TopicFilter {
	rv := make([]TopicFilter, 0, len(builtinFilters))
	for _, f := range builtinFilters {
		rv = append(rv, f)
	}
	return rv
}

// FilterByName finds a filter by case-insensitive name among the
// builtins and extra.
func FilterByName(name string, extra ...TopicFilter) (TopicFilter, error) {
	all := append(BuiltinFilters(), extra...)
	for _, f := range all {
		if strings.EqualFold(f.Name(), name) {
			return f, nil
		}
	}
	names := make([]string, 0, len(all))
	for _, f := range all {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownFilter, name, strings.Join(names, ", "))
}
