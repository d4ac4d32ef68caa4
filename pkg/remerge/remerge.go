// Package remerge reassembles selected chunks in document order.
package remerge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dtnitsch/llm-web-pruner/models"
)

// segment is one "tag[n]" element of a structural path.
type segment struct {
	tag   string
	index int
}

type key struct {
	special  bool
	segments []segment
}

func parseKey(path string) key {
	if strings.HasPrefix(path, models.SpecialPathPrefix) {
		return key{special: true}
	}
	parts := strings.Split(path, "/")
	k := key{segments: make([]segment, 0, len(parts))}
	for _, p := range parts {
		k.segments = append(k.segments, parseSegment(p))
	}
	return k
}

// parseSegment splits "div[12]" into ("div", 12). A segment without a
// bracketed index gets index 0.
func parseSegment(s string) segment {
	open := strings.LastIndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return segment{tag: s}
	}
	n, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil {
		return segment{tag: s}
	}
	return segment{tag: s[:open], index: n}
}

// less orders special chunks first, then paths segment by segment with
// bracketed indexes compared numerically. A path sorts before any longer
// path it prefixes.
func less(a, b key) bool {
	if a.special != b.special {
		return a.special
	}
	for i := 0; i < len(a.segments) && i < len(b.segments); i++ {
		sa, sb := a.segments[i], b.segments[i]
		if sa.index != sb.index {
			return sa.index < sb.index
		}
		if sa.tag != sb.tag {
			return sa.tag < sb.tag
		}
	}
	return len(a.segments) < len(b.segments)
}

// Merger joins chunk markup in document order.
type Merger struct{}

// New creates a Merger.
func New() *Merger {
	return &Merger{}
}

// Remerge is the package-level Remerge.
func (Merger) Remerge(chunks []models.Chunk) string {
	return Remerge(chunks)
}

// Remerge sorts chunks by structural path and joins their markup with
// newlines. Specials keep their relative input order. Remerge(nil) is "".
func Remerge(chunks []models.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	type item struct {
		k      key
		markup string
	}
	items := make([]item, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, item{k: parseKey(c.Path), markup: c.Markup})
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i].k, items[j].k) })

	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.markup != "" {
			parts = append(parts, it.markup)
		}
	}
	return strings.Join(parts, "\n")
}
