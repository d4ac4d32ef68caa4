// Package chunker decomposes page markup into typed atomic chunks.
//
// Decomposition runs in two passes: special extraction against the raw
// markup (linked data, preview meta tags, framework payloads), then a
// tag-driven recursive walk over the cleaned, parsed tree.
package chunker

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dtnitsch/llm-web-pruner/models"
)

var (
	ErrEmptyInput         = errors.New("empty input markup")
	ErrEmptyAfterCleaning = errors.New("markup is empty after cleaning")
	ErrParse              = errors.New("failed to parse markup")
)

const (
	DefaultMaxDepth              = 100
	DefaultFrameworkDataMaxChars = 2000
)

// Options configures a Decomposer. Zero values select the defaults.
type Options struct {
	MaxDepth              int
	FrameworkDataMaxChars int
	Logger                *slog.Logger
}

// Decomposer is safe for concurrent use; every call allocates its own state.
type Decomposer struct {
	maxDepth     int
	frameworkMax int
	logger       *slog.Logger
}

// New creates a Decomposer.
func New(opts Options) *Decomposer {
	d := &Decomposer{
		maxDepth:     opts.MaxDepth,
		frameworkMax: opts.FrameworkDataMaxChars,
		logger:       opts.Logger,
	}
	if d.maxDepth <= 0 {
		d.maxDepth = DefaultMaxDepth
	}
	if d.frameworkMax <= 0 {
		d.frameworkMax = DefaultFrameworkDataMaxChars
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Decompose extracts the special chunks from raw markup, then cleans and
// parses it. The returned document is what the AOM filter operates on;
// call DecomposeTree on it (again, after filtering) for the tree chunks.
func (d *Decomposer) Decompose(raw string) ([]models.Chunk, *goquery.Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, ErrEmptyInput
	}
	specials := d.ExtractSpecials(raw)

	cleaned := Clean(raw)
	if cleaned == "" {
		return specials, nil, ErrEmptyAfterCleaning
	}

	doc, err := parse(cleaned)
	if err != nil {
		return specials, nil, err
	}
	return specials, doc, nil
}

// parse wraps goquery's lenient parser; a panic inside it is reported as
// ErrParse rather than escaping. x/net/html refuses documents with more
// than 512 open elements, so such pages fail here before the depth guard
// in DecomposeTree ever runs.
func parse(markup string) (doc *goquery.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return doc, nil
}

// DecomposeTree walks a parsed document and returns its chunks in
// document order.
func (d *Decomposer) DecomposeTree(doc *goquery.Document) []models.Chunk {
	chunks, _ := d.DecomposeTreeWithStats(doc)
	return chunks
}

// DecomposeTreeWithStats is DecomposeTree that also reports how many
// subtrees were dropped by the depth guard.
func (d *Decomposer) DecomposeTreeWithStats(doc *goquery.Document) ([]models.Chunk, int) {
	if doc == nil || len(doc.Nodes) == 0 {
		return nil, 0
	}
	w := &walker{d: d}
	w.walkChildren(doc.Nodes[0], "", 0, false)
	return w.chunks, w.truncated
}

type walker struct {
	d         *Decomposer
	chunks    []models.Chunk
	truncated int
}

func (w *walker) walkElement(n *html.Node, path, parentPath string, depth int, inMain bool) {
	if depth > w.d.maxDepth {
		w.truncated++
		w.d.logger.Warn("max decomposition depth exceeded, dropping subtree",
			"path", path, "depth", depth, "max_depth", w.d.maxDepth)
		return
	}

	tag := n.Data
	if denylist[tag] || tag == "head" {
		return
	}
	inMain = inMain || tag == "main" || strings.EqualFold(attr(n, "role"), "main")

	if kind, ok := atomicKinds[tag]; ok {
		w.emit(n, []*html.Node{n}, tag, kind, path, parentPath, depth, inMain)
		return
	}
	if headingTags[tag] {
		w.emit(n, []*html.Node{n}, tag, models.KindHeading, path, parentPath, depth, inMain)
		return
	}
	if tag == "p" {
		w.emit(n, []*html.Node{n}, tag, models.KindTextBlock, path, parentPath, depth, inMain)
		return
	}

	if hasBlockChild(n) {
		w.walkChildren(n, path, depth, inMain)
		return
	}
	w.emit(n, []*html.Node{n}, tag, models.KindTextBlock, path, parentPath, depth, inMain)
}

// walkChildren recurses into block children. Consecutive inline children
// and text are grouped into one "#text" chunk so loose text next to block
// siblings is not lost. Path indexes are sibling positions, which keeps
// path order equal to document order.
func (w *walker) walkChildren(n *html.Node, path string, depth int, inMain bool) {
	pos := 0
	var run []*html.Node

	flush := func() {
		if len(run) == 0 {
			return
		}
		nodes := run
		run = nil
		if collectText(nodes) == "" {
			return
		}
		pos++
		w.emit(nil, nodes, "#text", models.KindTextBlock, childPath(path, "#text", pos), path, depth+1, inMain)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			run = append(run, c)
		case html.ElementNode:
			if denylist[c.Data] {
				continue
			}
			if inlineTags[c.Data] {
				run = append(run, c)
				continue
			}
			flush()
			pos++
			w.walkElement(c, childPath(path, c.Data, pos), path, depth+1, inMain)
		}
	}
	flush()
}

// emit appends a chunk for nodes when they carry visible text. el is the
// source element, or nil for a grouped inline run.
func (w *walker) emit(el *html.Node, nodes []*html.Node, tag string, kind models.ChunkKind, path, parentPath string, depth int, inMain bool) {
	text := collectText(nodes)
	if text == "" {
		return
	}
	w.chunks = append(w.chunks, models.Chunk{
		Path:       path,
		Markup:     render(nodes),
		Text:       text,
		Tag:        tag,
		Kind:       kind,
		Attributes: curate(el, nodes),
		ParentPath: parentPath,
		Depth:      depth,
		InMain:     inMain,
	})
}

func childPath(parent, tag string, pos int) string {
	seg := fmt.Sprintf("%s[%d]", tag, pos)
	if parent == "" {
		return seg
	}
	return parent + "/" + seg
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !inlineTags[c.Data] && !denylist[c.Data] {
			return true
		}
	}
	return false
}

// collectText returns the whitespace-collapsed visible text of nodes. It
// walks iteratively so adversarially deep atomic subtrees cannot exhaust
// the stack.
func collectText(nodes []*html.Node) string {
	var b strings.Builder
	stack := make([]*html.Node, 0, 16)
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			continue
		case html.ElementNode:
			if denylist[n.Data] {
				continue
			}
			if n.Data == "br" || !inlineTags[n.Data] {
				b.WriteByte(' ')
			}
		}
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func render(nodes []*html.Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		_ = html.Render(&buf, n)
	}
	return strings.TrimSpace(buf.String())
}

// curate copies the curated attributes of el. When el carries no itemprop,
// the first itemprop found below it (or in an inline run) is promoted
// together with its content and itemtype.
func curate(el *html.Node, nodes []*html.Node) map[string]string {
	out := make(map[string]string)
	if el != nil {
		for _, a := range el.Attr {
			if curatedKeys[a.Key] {
				out[a.Key] = strings.TrimSpace(a.Val)
			}
		}
	}
	if _, ok := out["itemprop"]; !ok {
		if ip := findItemprop(nodes); ip != nil {
			for _, key := range []string{"itemprop", "content", "itemtype"} {
				if v := attr(ip, key); v != "" {
					if _, exists := out[key]; !exists {
						out[key] = v
					}
				}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func findItemprop(nodes []*html.Node) *html.Node {
	for _, n := range nodes {
		if n.Type != html.ElementNode {
			continue
		}
		if attr(n, "itemprop") != "" {
			return n
		}
		var kids []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			kids = append(kids, c)
		}
		if found := findItemprop(kids); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
