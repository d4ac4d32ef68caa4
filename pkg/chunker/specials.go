package chunker

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/llm-web-pruner/models"
)

// MetaPair is one social-preview property/content pair.
type MetaPair struct {
	Property string
	Content  string
}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b([^>]*)>(.*?)</script\s*>`)
	ldTypeRe      = regexp.MustCompile(`(?i)\btype\s*=\s*["']?\s*application/ld\+json`)
	frameworkIDRe = regexp.MustCompile(`(?i)\bid\s*=\s*["']?(__NEXT_DATA__|__NUXT_DATA__|__NUXT__|__APOLLO_STATE__)`)
	frameworkVar  = regexp.MustCompile(`window\.__(NUXT|APOLLO_STATE|INITIAL_STATE|PRELOADED_STATE|NEXT_DATA)__\s*=`)
	dateLikeRe    = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

	metaTagRe  = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
	metaAttrRe = regexp.MustCompile(`(?is)\b(property|name|content)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)
)

// previewPrefixes are the meta property namespaces kept as preview data.
var previewPrefixes = []string{"og:", "product:", "article:", "twitter:", "business:", "book:", "profile:"}

// ExtractSpecials pulls linked-data blocks, social-preview meta tags and
// framework data payloads out of raw markup. It must run before cleaning,
// which strips script tags.
func (d *Decomposer) ExtractSpecials(raw string) []models.Chunk {
	var specials []models.Chunk
	ldCount, fwCount := 0, 0

	for _, m := range scriptBlockRe.FindAllStringSubmatch(raw, -1) {
		attrs, body := m[1], strings.TrimSpace(m[2])
		if body == "" {
			continue
		}
		switch {
		case ldTypeRe.MatchString(attrs):
			ldCount++
			specials = append(specials, models.Chunk{
				Path:   fmt.Sprintf("%s%s[%d]", models.SpecialPathPrefix, models.TagLinkedData, ldCount),
				Markup: m[0],
				Text:   body,
				Tag:    models.TagLinkedData,
				Kind:   models.KindMeta,
			})
		case frameworkIDRe.MatchString(attrs) || frameworkVar.MatchString(body):
			if !dateLikeRe.MatchString(body) {
				continue
			}
			fwCount++
			specials = append(specials, models.Chunk{
				Path:   fmt.Sprintf("%s%s[%d]", models.SpecialPathPrefix, models.TagFrameworkData, fwCount),
				Markup: truncate(m[0], d.frameworkMax),
				Text:   truncate(body, d.frameworkMax),
				Tag:    models.TagFrameworkData,
				Kind:   models.KindFrameworkData,
			})
		}
	}

	if c, ok := previewChunk(raw); ok {
		specials = append(specials, c)
	}
	return specials
}

// previewChunk merges every preview meta tag into one synthetic chunk.
func previewChunk(raw string) (models.Chunk, bool) {
	var tags []string
	var lines []string
	for _, tag := range metaTagRe.FindAllString(raw, -1) {
		p, ok := parseMetaTag(tag)
		if !ok {
			continue
		}
		tags = append(tags, tag)
		lines = append(lines, p.Property+": "+p.Content)
	}
	if len(tags) == 0 {
		return models.Chunk{}, false
	}
	return models.Chunk{
		Path:   models.SpecialPathPrefix + models.TagPreviewMeta + "[1]",
		Markup: strings.Join(tags, "\n"),
		Text:   strings.Join(lines, "\n"),
		Tag:    models.TagPreviewMeta,
		Kind:   models.KindMeta,
	}, true
}

// PreviewPairs returns the preview property/content pairs found in markup,
// in source order. Attribute order and quoting style do not matter.
func PreviewPairs(markup string) []MetaPair {
	var pairs []MetaPair
	for _, tag := range metaTagRe.FindAllString(markup, -1) {
		if p, ok := parseMetaTag(tag); ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

func parseMetaTag(tag string) (MetaPair, bool) {
	var prop, content string
	hasContent := false
	for _, a := range metaAttrRe.FindAllStringSubmatch(tag, -1) {
		val := a[2] + a[3] + a[4]
		switch strings.ToLower(a[1]) {
		case "property":
			prop = val
		case "name":
			if prop == "" {
				prop = val
			}
		case "content":
			content = val
			hasContent = true
		}
	}
	prop = strings.ToLower(strings.TrimSpace(prop))
	if prop == "" || !hasContent || !hasPreviewPrefix(prop) {
		return MetaPair{}, false
	}
	return MetaPair{Property: prop, Content: strings.TrimSpace(html.UnescapeString(content))}, true
}

func hasPreviewPrefix(prop string) bool {
	for _, p := range previewPrefixes {
		if strings.HasPrefix(prop, p) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
