// Package compress compacts merged markup without changing what it
// renders to.
package compress

import (
	"regexp"
	"strings"
)

var (
	preserveRe   = regexp.MustCompile(`(?is)<(pre|textarea)\b.*?</(pre|textarea)>`)
	newlineRunRe = regexp.MustCompile(`[ \t\r\f\v]*\n\s*`)
	spaceRunRe   = regexp.MustCompile(`[ \t\r\f\v]+`)
	interTagRe   = regexp.MustCompile(`>\s{2,}<`)
	emptyAttrRe  = regexp.MustCompile(`\s(class|style|id)=""`)
)

// Compressor is stateless and safe for concurrent use.
type Compressor struct{}

// New creates a Compressor.
func New() *Compressor {
	return &Compressor{}
}

// Compress is the package-level Compress.
func (Compressor) Compress(markup string) string {
	return Compress(markup)
}

// Compress collapses whitespace runs to a single space, or a single
// newline when the run contained one, and drops empty class/style/id
// attributes. Content of <pre> and <textarea> is left untouched.
func Compress(markup string) string {
	if markup == "" {
		return ""
	}
	var sb strings.Builder
	last := 0
	for _, loc := range preserveRe.FindAllStringIndex(markup, -1) {
		sb.WriteString(squeeze(markup[last:loc[0]]))
		sb.WriteString(markup[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(squeeze(markup[last:]))
	return strings.TrimSpace(sb.String())
}

func squeeze(s string) string {
	s = emptyAttrRe.ReplaceAllString(s, "")
	s = interTagRe.ReplaceAllStringFunc(s, func(m string) string {
		if strings.Contains(m, "\n") {
			return ">\n<"
		}
		return "> <"
	})
	s = newlineRunRe.ReplaceAllString(s, "\n")
	return spaceRunRe.ReplaceAllString(s, " ")
}
