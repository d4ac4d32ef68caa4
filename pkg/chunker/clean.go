package chunker

import (
	"regexp"
	"strings"
)

// denylist holds tags that never carry content. Clean removes them with
// their subtrees; the walker skips any that survive (e.g. unclosed tags).
var denylist = map[string]bool{
	"script":   true,
	"style":    true,
	"svg":      true,
	"noscript": true,
	"link":     true,
	"path":     true,
	"defs":     true,
	"iframe":   true,
}

// Pre-compiled cleaning patterns. RE2 has no back-references, so each
// paired tag gets its own expression.
var (
	commentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)
	pairedTagRe = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`),
		regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`),
		regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript\s*>`),
		regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe\s*>`),
		regexp.MustCompile(`(?is)<svg\b[^>]*>.*?</svg\s*>`),
		regexp.MustCompile(`(?is)<defs\b[^>]*>.*?</defs\s*>`),
		regexp.MustCompile(`(?is)<path\b[^>]*>.*?</path\s*>`),
	}
	voidTagRe   = regexp.MustCompile(`(?is)<(?:link|path)\b[^>]*/?>`)
	spaceRunRe  = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankRunsRe = regexp.MustCompile(`\n(?:[ \t\r\f\v]*\n)+`)
)

// Clean strips comments and denylisted tags and collapses whitespace runs,
// keeping single newlines.
func Clean(raw string) string {
	out := commentRe.ReplaceAllString(raw, "")
	for _, re := range pairedTagRe {
		out = re.ReplaceAllString(out, "")
	}
	out = voidTagRe.ReplaceAllString(out, "")
	out = spaceRunRe.ReplaceAllString(out, " ")
	out = blankRunsRe.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}
