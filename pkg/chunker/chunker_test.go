package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-pruner/models"
)

func findByTag(chunks []models.Chunk, tag string) *models.Chunk {
	for i := range chunks {
		if chunks[i].Tag == tag {
			return &chunks[i]
		}
	}
	return nil
}

func decomposeAll(t *testing.T, d *Decomposer, raw string) ([]models.Chunk, []models.Chunk) {
	t.Helper()
	specials, doc, err := d.Decompose(raw)
	require.NoError(t, err)
	return specials, d.DecomposeTree(doc)
}

func TestDecompose_InputErrors(t *testing.T) {
	d := New(Options{})

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrEmptyInput},
		{name: "whitespace only", raw: "  \n\t ", wantErr: ErrEmptyInput},
		{name: "only scripts and comments", raw: "<script>var a = 1;</script><!-- hi --><style>p{}</style>", wantErr: ErrEmptyAfterCleaning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, doc, err := d.Decompose(tt.raw)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestDecomposeTree_Structure(t *testing.T) {
	raw := `<html><head><title>T</title></head><body>
<nav><ul><li><a href="/">Home</a></li></ul></nav>
<main>
  <h1 itemprop="name">Widget</h1>
  <p>A fine widget for every purpose.</p>
  <div class="note">Only <b>inline</b> text</div>
  <table><tr><td>Weight</td><td>2 kg</td></tr></table>
  <figure><img src="https://example.com/a.png" alt="A"><figcaption>The widget</figcaption></figure>
  <form><label>Qty</label><input name="q"></form>
</main>
</body></html>`

	_, chunks := decomposeAll(t, New(Options{}), raw)
	require.NotEmpty(t, chunks)

	seen := make(map[string]bool)
	for _, c := range chunks {
		assert.False(t, seen[c.Path], "duplicate path %s", c.Path)
		seen[c.Path] = true
		assert.NotEmpty(t, c.Text)
	}

	tests := []struct {
		tag    string
		kind   models.ChunkKind
		text   string
		inMain bool
	}{
		{tag: "ul", kind: models.KindList, text: "Home", inMain: false},
		{tag: "h1", kind: models.KindHeading, text: "Widget", inMain: true},
		{tag: "p", kind: models.KindTextBlock, text: "A fine widget for every purpose.", inMain: true},
		{tag: "div", kind: models.KindTextBlock, text: "Only inline text", inMain: true},
		{tag: "table", kind: models.KindTable, text: "Weight 2 kg", inMain: true},
		{tag: "figure", kind: models.KindMedia, text: "The widget", inMain: true},
		{tag: "form", kind: models.KindForm, text: "Qty", inMain: true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			c := findByTag(chunks, tt.tag)
			require.NotNil(t, c, "no %s chunk", tt.tag)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.text, c.Text)
			assert.Equal(t, tt.inMain, c.InMain)
			assert.True(t, strings.HasPrefix(c.Markup, "<"+tt.tag))
		})
	}

	h1 := findByTag(chunks, "h1")
	assert.Equal(t, "name", h1.Attr("itemprop"))
	assert.Equal(t, "html[1]/body[2]/main[2]/h1[1]", h1.Path)
	assert.Equal(t, "html[1]/body[2]/main[2]", h1.ParentPath)
	assert.Equal(t, 4, h1.Depth)
	assert.Nil(t, findByTag(chunks, "title"), "head content must not be chunked")
	assert.Nil(t, findByTag(chunks, "li"), "list items belong to the list chunk")
}

func TestDecomposeTree_LooseInlineText(t *testing.T) {
	raw := `<body><div>Price: <b>$9.99</b><p>Paragraph text here.</p>trailing words</div></body>`
	_, chunks := decomposeAll(t, New(Options{}), raw)

	var texts []string
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"Price: $9.99", "Paragraph text here.", "trailing words"}, texts)
	assert.Equal(t, "#text", chunks[0].Tag)
	assert.Equal(t, models.KindTextBlock, chunks[0].Kind)
}

func TestDecomposeTree_ItempropPromotion(t *testing.T) {
	raw := `<main><p>Now only <span itemprop="price" content="9.99">$9.99</span></p></main>`
	_, chunks := decomposeAll(t, New(Options{}), raw)

	p := findByTag(chunks, "p")
	require.NotNil(t, p)
	assert.Equal(t, "price", p.Attr("itemprop"))
	assert.Equal(t, "9.99", p.Attr("content"))
	assert.True(t, p.InMain)
}

func TestDecomposeTree_RoleMain(t *testing.T) {
	raw := `<body><div role="main"><p>Inside the landmark.</p></div><p>Outside.</p></body>`
	_, chunks := decomposeAll(t, New(Options{}), raw)
	require.Len(t, chunks, 2)
	assert.True(t, chunks[0].InMain)
	assert.False(t, chunks[1].InMain)
}

func TestDecomposeTree_DepthGuard(t *testing.T) {
	raw := strings.Repeat("<div>", 150) + "<p>deep text</p>" + strings.Repeat("</div>", 150)

	shallow := New(Options{MaxDepth: 100})
	_, doc, err := shallow.Decompose(raw)
	require.NoError(t, err)
	chunks, truncated := shallow.DecomposeTreeWithStats(doc)
	assert.Empty(t, chunks)
	assert.Equal(t, 1, truncated)

	deep := New(Options{MaxDepth: 200})
	_, chunks = decomposeAll(t, deep, raw)
	require.Len(t, chunks, 1)
	assert.Equal(t, "deep text", chunks[0].Text)
}

func TestDecompose_MalformedMarkup(t *testing.T) {
	inputs := []string{
		`<div><p>unclosed <b>bold<p>second</div></span>`,
		`<table><td>cell without row`,
		`<<<>>> text & more <p`,
		`<ul><li>one<li>two</ul></ol></table>`,
	}
	d := New(Options{})
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, doc, err := d.Decompose(raw)
				require.NoError(t, err)
				assert.NotEmpty(t, d.DecomposeTree(doc))
			})
		})
	}
}

func TestDecompose_NestingBeyondParserLimit(t *testing.T) {
	raw := `<script type="application/ld+json">{"@type":"Product","name":"Widget"}</script>` +
		strings.Repeat("<div>", 20000) + "deep" + strings.Repeat("</div>", 20000)

	specials, doc, err := New(Options{}).Decompose(raw)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
	assert.Contains(t, err.Error(), "512")
	assert.Nil(t, doc)
	require.Len(t, specials, 1, "specials come from the raw markup before parsing")
	assert.Equal(t, models.TagLinkedData, specials[0].Tag)
}

func TestDecomposeTree_NilDocument(t *testing.T) {
	assert.Empty(t, New(Options{}).DecomposeTree(nil))
}

func TestClean(t *testing.T) {
	raw := "<div><!-- comment --><p>a   b</p>\n\n\n<script>x()</script><STYLE>p{}</STYLE><svg><path d='M0'/></svg><link rel=x><p>c</p></div>"
	got := Clean(raw)
	assert.Equal(t, "<div><p>a b</p>\n<p>c</p></div>", got)
}
