// Package sanitize cleans untrusted strings taken from page content before
// they reach a language model or a terminal.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Length caps in runes.
const (
	DefaultMaxLen     = 500
	NameMaxLen        = 300
	DescriptionMaxLen = 1000
	MaxImageURLLen    = 2048
)

var fieldCaps = map[string]int{
	"name":        NameMaxLen,
	"headline":    NameMaxLen,
	"title":       NameMaxLen,
	"question":    NameMaxLen,
	"description": DescriptionMaxLen,
	"answer":      DescriptionMaxLen,
	"abstract":    DescriptionMaxLen,
}

var (
	ansiRe       = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b[@-Z\\-_]`)
	rolePrefixRe = regexp.MustCompile(`(?i)^\s*(?:system|assistant|user|human|ai)\s*:\s*`)
)

// CapFor returns the rune cap applied to a field.
func CapFor(field string) int {
	if c, ok := fieldCaps[field]; ok {
		return c
	}
	return DefaultMaxLen
}

// Field sanitizes s with the cap registered for field.
func Field(field, s string) string {
	return Text(s, CapFor(field))
}

// Text normalizes s to NFC, strips terminal escapes, control and
// zero-width characters and leading role prefixes, collapses whitespace
// and truncates to maxLen runes.
func Text(s string, maxLen int) string {
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = norm.NFC.String(s)
	s = ansiRe.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		switch {
		case isZeroWidth(r):
			return -1
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	// Repeated prefixes like "system: user: ..." are all removed.
	for {
		stripped := rolePrefixRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	return Truncate(s, maxLen)
}

func isZeroWidth(r rune) bool {
	switch {
	case r >= 0x200B && r <= 0x200F,
		r >= 0x202A && r <= 0x202E,
		r >= 0x2060 && r <= 0x2064,
		r >= 0x2066 && r <= 0x2069,
		r == 0xFEFF, r == 0x00AD, r == 0x180E:
		return true
	}
	return false
}

// Truncate cuts s to at most maxLen runes. A non-positive maxLen disables
// the cap.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return strings.TrimSpace(s[:i])
		}
		n++
	}
	return s
}

// StripHTML returns the visible text of an HTML fragment. Plain text
// passes through unchanged apart from entity decoding.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ImageURL validates an image address: absolute http(s) or
// protocol-relative, at most MaxImageURLLen bytes. data:, javascript:,
// blob: and relative paths are rejected.
func ImageURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxImageURLLen {
		return "", false
	}
	if strings.ContainsAny(s, " \t\n\r\x00") {
		return "", false
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		if strings.HasSuffix(lower, "://") {
			return "", false
		}
		return s, true
	case strings.HasPrefix(s, "//") && len(s) > 2:
		return s, true
	}
	return "", false
}
