package remerge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtnitsch/llm-web-pruner/models"
)

func TestRemerge_Empty(t *testing.T) {
	assert.Equal(t, "", Remerge(nil))
	assert.Equal(t, "", New().Remerge([]models.Chunk{}))
}

func TestRemerge_NumericOrder(t *testing.T) {
	chunks := []models.Chunk{
		{Path: "html[1]/body[2]/div[10]", Markup: "<p>ten</p>"},
		{Path: "html[1]/body[2]/div[2]/p[1]", Markup: "<p>two</p>"},
		{Path: "special:ld+json[1]", Markup: "<script>ld</script>"},
		{Path: "html[1]/body[2]/div[2]", Markup: "<div>parent</div>"},
		{Path: "html[1]/body[2]/#text[3]", Markup: "loose"},
		{Path: "special:preview-meta[1]", Markup: "<meta>"},
		{Path: "html[1]/body[2]/h1[1]", Markup: "<h1>one</h1>"},
	}
	want := "<script>ld</script>\n<meta>\n<h1>one</h1>\n<div>parent</div>\n<p>two</p>\nloose\n<p>ten</p>"
	assert.Equal(t, want, Remerge(chunks))
}

func TestParseSegment(t *testing.T) {
	tests := []struct {
		in   string
		want segment
	}{
		{in: "div[12]", want: segment{tag: "div", index: 12}},
		{in: "#text[3]", want: segment{tag: "#text", index: 3}},
		{in: "body", want: segment{tag: "body"}},
		{in: "x[abc]", want: segment{tag: "x[abc]"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseSegment(tt.in), tt.in)
	}
}
