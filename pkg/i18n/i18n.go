// Package i18n compiles localized term dictionaries into matchers.
//
// The default dictionaries are embedded and compiled once; a YAML file
// with the same shape can extend or replace individual languages.
package i18n

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Term keys present in the default dictionaries.
const (
	Price        = "price"
	Rating       = "rating"
	ReviewCount  = "review_count"
	Brand        = "brand"
	Availability = "availability"
	Shipping     = "shipping"
	Discount     = "discount"
	Scarcity     = "scarcity"
	Measurement  = "measurement"
	Department   = "department"
	Contact      = "contact"
	Feature      = "feature"
	Pricing      = "pricing"
)

//go:embed terms.yaml
var defaultTerms []byte

// Dictionary is term key -> language code -> phrases.
type Dictionary map[string]map[string][]string

// Terms holds one compiled case-insensitive matcher per term key. It is
// read-only after construction and safe for concurrent use.
type Terms struct {
	dict     Dictionary
	patterns map[string]*regexp.Regexp
}

var (
	defaultOnce sync.Once
	defaultSet  *Terms
)

// Default returns the compiled embedded dictionaries.
func Default() *Terms {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTerms)
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded terms are invalid: %v", err))
		}
		defaultSet = t
	})
	return defaultSet
}

// Parse compiles a YAML dictionary.
func Parse(data []byte) (*Terms, error) {
	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse terms: %w", err)
	}
	return compile(dict)
}

// Load returns the defaults with the languages in the file at path laid
// over them. An empty path returns the defaults.
func Load(path string) (*Terms, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read terms file: %w", err)
	}
	var override Dictionary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse terms file %s: %w", path, err)
	}

	merged := make(Dictionary)
	for key, langs := range Default().dict {
		merged[key] = make(map[string][]string, len(langs))
		for lang, phrases := range langs {
			merged[key][lang] = phrases
		}
	}
	for key, langs := range override {
		if merged[key] == nil {
			merged[key] = make(map[string][]string)
		}
		for lang, phrases := range langs {
			merged[key][lang] = phrases
		}
	}
	return compile(merged)
}

func compile(dict Dictionary) (*Terms, error) {
	t := &Terms{dict: dict, patterns: make(map[string]*regexp.Regexp, len(dict))}
	for key, langs := range dict {
		var alts []string
		for _, phrases := range langs {
			for _, phrase := range phrases {
				if alt := phrasePattern(phrase); alt != "" {
					alts = append(alts, alt)
				}
			}
		}
		if len(alts) == 0 {
			continue
		}
		// Longest first so overlapping phrases report the fuller match.
		sort.Slice(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
		re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile terms for %q: %w", key, err)
		}
		t.patterns[key] = re
	}
	return t, nil
}

// phrasePattern quotes a phrase and adds word boundaries on sides that end
// in an ASCII letter or digit. Scripts without spaces match as substrings.
func phrasePattern(phrase string) string {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return ""
	}
	p := regexp.QuoteMeta(phrase)
	if isASCIIWord(phrase[0]) {
		p = `\b` + p
	}
	if isASCIIWord(phrase[len(phrase)-1]) {
		p += `\b`
	}
	return p
}

func isASCIIWord(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Match reports whether text contains any phrase of the term key. Unknown
// keys never match.
func (t *Terms) Match(key, text string) bool {
	re, ok := t.patterns[key]
	if !ok || text == "" {
		return false
	}
	return re.MatchString(text)
}

// Find returns the first phrase of key found in text, or "".
func (t *Terms) Find(key, text string) string {
	re, ok := t.patterns[key]
	if !ok {
		return ""
	}
	return re.FindString(text)
}

// keys lists the compiled term keys in sorted order.
func (t *Terms) keys() []string {
	keys := make([]string, 0, len(t.patterns))
	for k := range t.patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// languages lists the language codes present for a key in sorted order.
func (t *Terms) languages(key string) []string {
	var langs []string
	for lang := range t.dict[key] {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
