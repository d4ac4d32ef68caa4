package detector

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/chunker"
)

// ldTypeDepth bounds the linked-data type sniff.
const ldTypeDepth = 5

var (
	titleRe       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title\s*>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]*>`)
	ogTypeRe      = regexp.MustCompile(`(?is)<meta\b[^>]*\bproperty\s*=\s*["']og:type["'][^>]*>`)
	contentAttrRe = regexp.MustCompile(`(?is)\bcontent\s*=\s*["']([^"']*)["']`)
)

// page holds the evidence for one classification call. URL features are
// computed up front; markup features are computed on first use so that a
// short-circuited call never parses the markup beyond the blocked checks.
type page struct {
	url  string
	host string
	path string
	u    *url.URL

	raw     string
	lowered bool
	loaded  bool

	markup  string
	title   string
	ogType  string
	ldTypes map[string]bool
	textLen int

	readabilityDone bool
	readable        bool
}

func newPage(rawURL, markup string) *page {
	p := &page{url: strings.ToLower(strings.TrimSpace(rawURL)), raw: markup}
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		p.u = u
		p.host = strings.ToLower(u.Host)
		p.path = strings.ToLower(u.Path)
	}
	return p
}

// lower computes the lower-cased markup and the title, all the blocked
// checks need.
func (p *page) lower() {
	if p.lowered {
		return
	}
	p.lowered = true
	if p.raw == "" {
		return
	}
	p.markup = strings.ToLower(p.raw)
	if m := titleRe.FindStringSubmatch(p.markup); m != nil {
		p.title = strings.Join(strings.Fields(m[1]), " ")
	}
}

// load computes the remaining markup features: og:type, linked-data types
// and visible text length. Safe to call repeatedly.
func (p *page) load() {
	if p.loaded {
		return
	}
	p.loaded = true
	p.lower()
	if p.raw == "" {
		return
	}

	if tag := ogTypeRe.FindString(p.markup); tag != "" {
		if m := contentAttrRe.FindStringSubmatch(tag); m != nil {
			p.ogType = strings.TrimSpace(m[1])
		}
	}

	p.ldTypes = sniffLinkedDataTypes(p.raw)

	visible := tagRe.ReplaceAllString(chunker.Clean(p.raw), " ")
	p.textLen = utf8.RuneCountInString(strings.Join(strings.Fields(visible), " "))
}

func (p *page) count(sub string) int {
	p.lower()
	return strings.Count(p.markup, sub)
}

func (p *page) has(subs ...string) bool {
	p.lower()
	for _, s := range subs {
		if strings.Contains(p.markup, s) {
			return true
		}
	}
	return false
}

func (p *page) urlHas(subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(p.url, s) {
			return true
		}
	}
	return false
}

func (p *page) titleHas(subs ...string) bool {
	p.lower()
	for _, s := range subs {
		if strings.Contains(p.title, s) {
			return true
		}
	}
	return false
}

func (p *page) hasLDType(types ...string) bool {
	p.load()
	for _, t := range types {
		if p.ldTypes[t] {
			return true
		}
	}
	return false
}

// readableArticle runs go-readability once and reports whether the page
// holds a long article with a byline.
func (p *page) readableArticle() bool {
	if p.readabilityDone {
		return p.readable
	}
	p.readabilityDone = true
	if p.raw == "" {
		return false
	}
	u := p.u
	if u == nil {
		u = &url.URL{}
	}
	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(p.raw), u)
	if err != nil {
		return false
	}
	text := strings.Join(strings.Fields(tagRe.ReplaceAllString(article.Content, " ")), " ")
	p.readable = utf8.RuneCountInString(text) >= readableMinChars && strings.TrimSpace(article.Byline) != ""
	return p.readable
}

// sniffLinkedDataTypes parses every linked-data block once and collects
// the lower-cased @type values, recursing through @graph wrappers, arrays,
// mainEntity and multi-type lists. Malformed blocks are skipped.
func sniffLinkedDataTypes(raw string) map[string]bool {
	types := make(map[string]bool)
	for _, c := range chunker.New(chunker.Options{}).ExtractSpecials(raw) {
		if c.Tag != models.TagLinkedData {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(c.Text), &v); err != nil {
			continue
		}
		collectTypes(v, 0, types)
	}
	return types
}

func collectTypes(v any, depth int, out map[string]bool) {
	if depth > ldTypeDepth {
		return
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collectTypes(item, depth+1, out)
		}
	case map[string]any:
		switch typ := t["@type"].(type) {
		case string:
			out[strings.ToLower(typ)] = true
		case []any:
			for _, item := range typ {
				if s, ok := item.(string); ok {
					out[strings.ToLower(s)] = true
				}
			}
		}
		for _, key := range []string{"@graph", "mainEntity"} {
			if child, ok := t[key]; ok {
				collectTypes(child, depth+1, out)
			}
		}
	}
}
