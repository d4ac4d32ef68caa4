package extractors

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dtnitsch/llm-web-pruner/models"
)

// MaxTypeDepth bounds the linked-data type finder. Objects nested deeper
// are treated as not found.
const MaxTypeDepth = 5

var (
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	htmlCommentRe   = regexp.MustCompile(`<!--|-->`)
	cdataRe         = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// linkedData is the parsed set of linked-data blocks for one call.
type linkedData struct {
	blocks []any
	// skipped counts blocks that failed even the tolerant retry.
	skipped int
}

// parseLinkedData decodes every linked-data special chunk once.
func parseLinkedData(specials []models.Chunk) *linkedData {
	ld := &linkedData{}
	for _, c := range specials {
		if c.Tag != models.TagLinkedData {
			continue
		}
		v, err := decodeBlock(c.Text)
		if err != nil {
			ld.skipped++
			continue
		}
		ld.blocks = append(ld.blocks, v)
	}
	return ld
}

// decodeBlock parses one block, retrying once after stripping comment
// markers, CDATA wrappers and trailing commas.
func decodeBlock(text string) (any, error) {
	var v any
	err := json.Unmarshal([]byte(text), &v)
	if err == nil {
		return v, nil
	}

	repaired := htmlCommentRe.ReplaceAllString(text, "")
	repaired = cdataRe.ReplaceAllString(repaired, "")
	repaired = blockCommentRe.ReplaceAllString(repaired, "")
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	if retryErr := json.Unmarshal([]byte(strings.TrimSpace(repaired)), &v); retryErr != nil {
		return nil, fmt.Errorf("malformed linked data: %w", err)
	}
	return v, nil
}

// find returns the first object whose @type is in types, searching each
// block in order.
func (ld *linkedData) find(types ...string) map[string]any {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[strings.ToLower(t)] = true
	}
	for _, b := range ld.blocks {
		if obj := findType(b, want, 0); obj != nil {
			return obj
		}
	}
	return nil
}

// findType walks arrays, @graph wrappers, mainEntity and breadcrumb
// references looking for a matching object.
func findType(v any, want map[string]bool, depth int) map[string]any {
	if depth > MaxTypeDepth {
		return nil
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if obj := findType(item, want, depth+1); obj != nil {
				return obj
			}
		}
	case map[string]any:
		if typeMatches(t["@type"], want) {
			return t
		}
		for _, key := range []string{"@graph", "mainEntity", "breadcrumb"} {
			if child, ok := t[key]; ok {
				if obj := findType(child, want, depth+1); obj != nil {
					return obj
				}
			}
		}
	}
	return nil
}

// typeMatches accepts a scalar or a list @type.
func typeMatches(v any, want map[string]bool) bool {
	switch t := v.(type) {
	case string:
		return want[strings.ToLower(t)]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && want[strings.ToLower(s)] {
				return true
			}
		}
	}
	return false
}

// text returns a scalar as a string. Objects yield their "name" and lists
// their first textual entry.
func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return formatFloat(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case map[string]any:
		if name := text(t["name"]); name != "" {
			return name
		}
		return text(t["@value"])
	case []any:
		for _, item := range t {
			if s := text(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// names joins the names of a scalar, object or list value.
func names(v any) string {
	list, ok := v.([]any)
	if !ok {
		return text(v)
	}
	var out []string
	for _, item := range list {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

func object(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

// enumValue strips the schema.org namespace from enumeration members like
// "https://schema.org/InStock".
func enumValue(v any) string {
	s := text(v)
	if i := strings.LastIndex(s, "/"); i >= 0 && strings.Contains(s, "schema.org") {
		return s[i+1:]
	}
	return s
}
