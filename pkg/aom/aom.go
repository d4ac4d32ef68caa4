// Package aom removes page chrome (navigation, banners, ads, consent
// prompts) from a parsed document using accessibility roles and
// landmark elements.
package aom

import (
	"log/slog"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/dtnitsch/llm-web-pruner/models"
)

// Removal reasons reported in RemovalStats.
const (
	ReasonNavigation = "navigation"
	ReasonBanner     = "banner"
	ReasonFooter     = "footer"
	ReasonSearch     = "search"
	ReasonHidden     = "hidden"
	ReasonDialog     = "dialog"
	ReasonAd         = "ad"
	ReasonConsent    = "consent"
	ReasonNewsletter = "newsletter"
	ReasonSocial     = "social"
)

var (
	mainSel    = cascadia.MustCompile(`main, [role="main"]`)
	contentSel = cascadia.MustCompile(`main, [role="main"], article`)
)

// attrPattern builds a selector matching elements whose class or id
// matches re.
func attrPattern(re *regexp.Regexp) cascadia.Selector {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if (a.Key == "class" || a.Key == "id") && re.MatchString(a.Val) {
				return true
			}
		}
		return false
	}
}

type rule struct {
	reason string
	sel    cascadia.Selector
	// outsideContent restricts the rule to elements with no main or
	// article ancestor.
	outsideContent bool
	// skip lists schemas whose content commonly hides behind the rule.
	skip map[models.SchemaKind]bool
}

var rules = []rule{
	{reason: ReasonNavigation, sel: cascadia.MustCompile(`nav, [role="navigation"]`)},
	{reason: ReasonSearch, sel: cascadia.MustCompile(`[role="search"]`)},
	{reason: ReasonBanner, sel: cascadia.MustCompile(`header, [role="banner"]`), outsideContent: true},
	{reason: ReasonFooter, sel: cascadia.MustCompile(`footer, [role="contentinfo"]`), outsideContent: true},
	// collapsed FAQ answers are usually aria-hidden until expanded
	{reason: ReasonHidden, sel: cascadia.MustCompile(`[aria-hidden="true"], [hidden]`),
		skip: map[models.SchemaKind]bool{models.SchemaFAQPage: true}},
	{reason: ReasonDialog, sel: cascadia.MustCompile(`[role="dialog"], [role="alertdialog"], [aria-modal="true"]`)},
	{reason: ReasonConsent, sel: attrPattern(regexp.MustCompile(`(?i)cookie|consent|gdpr`))},
	{reason: ReasonAd, sel: attrPattern(regexp.MustCompile(`(?i)(^|[\s_-])(ad|ads|adslot|advert|advertisement|sponsored|dfp)([\s_-]|$)`))},
	{reason: ReasonNewsletter, sel: attrPattern(regexp.MustCompile(`(?i)newsletter|subscribe[-_]?(box|form|banner)`))},
	{reason: ReasonSocial, sel: attrPattern(regexp.MustCompile(`(?i)social[-_]?(share|links|icons|bar)|share[-_]?(bar|buttons|links|tools)`))},
}

// Options configures a Filter.
type Options struct {
	Logger *slog.Logger
}

// Filter is stateless and safe for concurrent use on distinct documents.
type Filter struct {
	logger *slog.Logger
}

// New creates a Filter.
func New(opts Options) *Filter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{logger: logger}
}

// Filter removes chrome subtrees from doc in place and returns it with
// per-reason removal counts. A <main> landmark and its ancestors are
// never removed. An unknown schema applies every rule.
func (f *Filter) Filter(doc *goquery.Document, schema string) (*goquery.Document, models.RemovalStats) {
	stats := models.RemovalStats{}
	if doc == nil || len(doc.Nodes) == 0 {
		return doc, stats
	}
	kind, _ := models.ParseSchema(schema)
	root := doc.Nodes[0]

	for _, r := range rules {
		if r.skip[kind] {
			continue
		}
		doc.FindMatcher(r.sel).Each(func(_ int, s *goquery.Selection) {
			n := s.Get(0)
			if !attached(n, root) || protected(s) {
				return
			}
			if r.outsideContent && s.ParentsMatcher(contentSel).Length() > 0 {
				return
			}
			s.Remove()
			stats[r.reason]++
		})
	}

	if total := stats.Total(); total > 0 {
		f.logger.Debug("removed page chrome", "schema", schema, "removed", total)
	}
	return doc, stats
}

// protected reports whether s is the document root, or is or contains
// the main landmark.
func protected(s *goquery.Selection) bool {
	if s.Is("html, body") {
		return true
	}
	return s.IsMatcher(mainSel) || s.FindMatcher(mainSel).Length() > 0
}

// attached reports whether n still hangs off root. Descendants of a
// subtree removed earlier in the same pass are detached with it.
func attached(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

