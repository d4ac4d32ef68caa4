package pruner

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-pruner/models"
)

func chunk(kind models.ChunkKind, tag, text string, inMain bool) models.Chunk {
	return models.Chunk{
		Path:   "html[1]/body[1]/main[1]/" + tag + "[1]",
		Tag:    tag,
		Kind:   kind,
		Text:   text,
		InMain: inMain,
	}
}

func decideOne(t *testing.T, c models.Chunk, schema string, hasMain bool) Decision {
	t.Helper()
	out := New(Options{}).Prune([]models.Chunk{c}, schema, hasMain)
	require.Len(t, out, 1)
	return out[0]
}

func TestPrune_SpecialsAlwaysKept(t *testing.T) {
	specials := []models.Chunk{
		{Path: "special:ld+json[1]", Tag: models.TagLinkedData, Kind: models.KindMeta},
		{Path: "special:framework-data[1]", Tag: models.TagFrameworkData, Kind: models.KindFrameworkData},
	}
	for _, schema := range []string{"", "Product", "Recipe"} {
		for _, hasMain := range []bool{true, false} {
			for _, d := range New(Options{}).Prune(specials, schema, hasMain) {
				assert.True(t, d.Keep)
				assert.Equal(t, models.ReasonSpecialChunk, d.Reason)
			}
		}
	}
}

func TestPrune_ProductFieldMatches(t *testing.T) {
	tests := []struct {
		name  string
		chunk models.Chunk
		want  []string
	}{
		{name: "price text", chunk: chunk(models.KindTextBlock, "div", "$19.99", true), want: []string{"price"}},
		{name: "title heading", chunk: chunk(models.KindHeading, "h1", "Widget 2000", true), want: []string{"name"}},
		{name: "localized price", chunk: chunk(models.KindTextBlock, "p", "Preis: 19,99 €", false), want: []string{"price"}},
		{
			name: "content attribute without text",
			chunk: models.Chunk{
				Path: "html[1]/body[1]/div[1]/meta[1]", Tag: "div", Kind: models.KindTextBlock,
				Attributes: map[string]string{"itemprop": "price", "content": "19.99"},
			},
			want: []string{"price"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decideOne(t, tt.chunk, "Product", true)
			assert.True(t, d.Keep)
			assert.Equal(t, models.ReasonSchemaMatch, d.Reason)
			assert.Equal(t, tt.want, d.MatchedFields)
		})
	}
}

func TestPrune_SchemaMatchNeedsTextOrContent(t *testing.T) {
	c := chunk(models.KindTextBlock, "div", "", true)
	c.Attributes = map[string]string{"class": "price"}

	d := decideOne(t, c, "Product", true)
	assert.False(t, d.Keep)
	assert.Equal(t, models.ReasonMainNoise, d.Reason)
}

func TestPrune_RecommendationFilter(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Recommendation.MinOutsideMainHits = 2
	cfg.Recommendation.MinSharedDepth = 3

	price := func(path string) models.Chunk {
		return models.Chunk{Path: path, Tag: "span", Kind: models.KindTextBlock, Text: "$5.00"}
	}
	chunks := []models.Chunk{
		price("html[1]/body[1]/div[1]/div[2]/span[1]"),
		price("html[1]/body[1]/div[5]/div[1]"),
		price("html[1]/body[1]/div[5]/div[3]"),
		price("html[1]/body[1]/div[1]/div[3]"),
	}

	out := New(Options{Config: &cfg}).Prune(chunks, "Product", false)
	require.Len(t, out, 4)

	assert.True(t, out[0].Keep, "first price is canonical")
	assert.True(t, out[1].Keep, "below the outside-main hit count")
	assert.False(t, out[2].Keep)
	assert.Equal(t, models.ReasonRecommendationBlock, out[2].Reason)
	assert.Equal(t, []string{"price"}, out[2].MatchedFields)
	assert.True(t, out[3].Keep, "shares three leading segments with the first price")
}

func TestPrune_RecommendationFilterDefaults(t *testing.T) {
	cfg := models.DefaultConfig()
	require.Equal(t, 10, cfg.Recommendation.MinOutsideMainHits)
	require.Equal(t, 3, cfg.Recommendation.MinSharedDepth)

	chunks := []models.Chunk{{Path: "html[1]/body[1]/div[1]/span[1]", Tag: "span", Kind: models.KindTextBlock, Text: "$99.00"}}
	for i := 1; i <= 13; i++ {
		chunks = append(chunks, models.Chunk{
			Path: fmt.Sprintf("html[1]/body[1]/aside[1]/div[%d]/span[1]", i),
			Tag:  "span", Kind: models.KindTextBlock, Text: "$12.00",
		})
	}
	chunks = append(chunks, models.Chunk{Path: "html[1]/body[1]/div[1]/span[2]", Tag: "span", Kind: models.KindTextBlock, Text: "$89.00"})

	out := New(Options{}).Prune(chunks, "Product", false)
	require.Len(t, out, 15)

	for i, d := range out[:10] {
		assert.True(t, d.Keep, "price %d is within the outside-main allowance", i)
	}
	for i, d := range out[10:14] {
		assert.False(t, d.Keep, "distant price %d", i+10)
		assert.Equal(t, models.ReasonRecommendationBlock, d.Reason)
	}
	assert.True(t, out[14].Keep, "a late price next to the first one survives")
	assert.Equal(t, models.ReasonSchemaMatch, out[14].Reason)
}

func TestPrune_RecommendationFilterOnlyForProduct(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Recommendation.MinOutsideMainHits = 0

	chunks := []models.Chunk{
		{Path: "html[1]/body[1]/div[1]/span[1]", Tag: "span", Kind: models.KindTextBlock, Text: "$40"},
		{Path: "html[1]/body[1]/aside[1]/span[1]", Tag: "span", Kind: models.KindTextBlock, Text: "$40"},
	}
	out := New(Options{Config: &cfg}).Prune(chunks, "Event", false)
	for _, d := range out {
		assert.True(t, d.Keep)
		assert.Equal(t, models.ReasonSchemaMatch, d.Reason)
	}
}

func TestPrune_UnknownSchemaUsesStructuralRules(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	chunks := []models.Chunk{
		chunk(models.KindHeading, "h1", "Widget 2000", true),
		chunk(models.KindTextBlock, "p", "This paragraph sits outside the main landmark.", false),
	}
	out := New(Options{Logger: logger}).Prune(chunks, "Recipe", true)

	assert.Equal(t, models.ReasonMainHeading, out[0].Reason)
	assert.True(t, out[0].Keep)
	assert.Equal(t, models.ReasonOutsideMain, out[1].Reason)
	assert.False(t, out[1].Keep)
	assert.Contains(t, buf.String(), "unknown schema")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestPrune_InMainRules(t *testing.T) {
	tests := []struct {
		name   string
		chunk  models.Chunk
		keep   bool
		reason models.Reason
		detail string
	}{
		{name: "heading", chunk: chunk(models.KindHeading, "h2", "Specs", true), keep: true, reason: models.ReasonMainHeading, detail: "h2"},
		{name: "form", chunk: chunk(models.KindForm, "form", "Email", true), keep: true, reason: models.ReasonMainForm},
		{name: "long text", chunk: chunk(models.KindTextBlock, "p", "This paragraph is certainly long enough to keep.", true), keep: true, reason: models.ReasonMainLongText},
		{name: "availability", chunk: chunk(models.KindTextBlock, "p", "In stock", true), keep: true, reason: models.ReasonMainHighValue, detail: "availability:in stock"},
		{name: "scarcity", chunk: chunk(models.KindTextBlock, "p", "Only 3 left", true), keep: true, reason: models.ReasonMainHighValue, detail: "scarcity:only 3 left"},
		{name: "discount", chunk: chunk(models.KindTextBlock, "span", "-20%", true), keep: true, reason: models.ReasonMainHighValue, detail: "discount:-20%"},
		{name: "shipping", chunk: chunk(models.KindTextBlock, "p", "Free shipping", true), keep: true, reason: models.ReasonMainHighValue, detail: "shipping:free shipping"},
		{name: "localized availability", chunk: chunk(models.KindTextBlock, "p", "在庫あり", true), keep: true, reason: models.ReasonMainHighValue, detail: "availability:在庫あり"},
		{name: "measurement", chunk: chunk(models.KindList, "ul", "12 x 8 cm", true), keep: true, reason: models.ReasonMainMeasurement},
		{name: "noise", chunk: chunk(models.KindTextBlock, "p", "Menu", true), keep: false, reason: models.ReasonMainNoise, detail: "TEXT_BLOCK"},
		{name: "media caption", chunk: chunk(models.KindMedia, "figure", "A red widget on a desk", true), keep: true, reason: models.ReasonMainMediaCaption},
		{name: "bare media", chunk: chunk(models.KindMedia, "figure", "", true), keep: false, reason: models.ReasonMainNoise, detail: "MEDIA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decideOne(t, tt.chunk, "", true)
			assert.Equal(t, tt.keep, d.Keep)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.detail, d.ReasonDetail)
		})
	}
}

func TestPrune_NoMainRules(t *testing.T) {
	tests := []struct {
		name   string
		chunk  models.Chunk
		keep   bool
		reason models.Reason
	}{
		{name: "heading", chunk: chunk(models.KindHeading, "h3", "Hi", false), keep: true, reason: models.ReasonNoMainHeading},
		{name: "text", chunk: chunk(models.KindTextBlock, "p", "Short but okay text", false), keep: true, reason: models.ReasonNoMainText},
		{name: "short text", chunk: chunk(models.KindTextBlock, "p", "Hi", false), keep: false, reason: models.ReasonNoMainShort},
		{name: "short form", chunk: chunk(models.KindForm, "form", "Go", false), keep: false, reason: models.ReasonNoMainShort},
		{name: "form", chunk: chunk(models.KindForm, "form", "Search the catalogue", false), keep: true, reason: models.ReasonNoMainForm},
		{name: "media", chunk: chunk(models.KindMedia, "figure", "Photo caption", false), keep: true, reason: models.ReasonNoMainMedia},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decideOne(t, tt.chunk, "", false)
			assert.Equal(t, tt.keep, d.Keep)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestPrune_OtherSchemas(t *testing.T) {
	tests := []struct {
		schema string
		chunk  models.Chunk
		want   []string
	}{
		{schema: "FAQPage", chunk: chunk(models.KindHeading, "h3", "How do I reset my password?", true), want: []string{"question"}},
		{schema: "NewsArticle", chunk: chunk(models.KindTextBlock, "p", "By Jane Doe", true), want: []string{"author"}},
		{schema: "BlogPosting", chunk: chunk(models.KindHeading, "h1", "Release notes", true), want: []string{"headline"}},
		{schema: "WikiArticle", chunk: chunk(models.KindHeading, "h2", "History", true), want: []string{"section"}},
		{schema: "SaaSPage", chunk: chunk(models.KindTextBlock, "p", "$29 per month", true), want: []string{"price"}},
		{schema: "GovernmentPage", chunk: chunk(models.KindTextBlock, "p", "Department of Transportation", true), want: []string{"department"}},
		{schema: "Restaurant", chunk: chunk(models.KindTextBlock, "p", "+1 (555) 010-2030", true), want: []string{"telephone"}},
	}
	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			d := decideOne(t, tt.chunk, tt.schema, true)
			assert.Equal(t, models.ReasonSchemaMatch, d.Reason)
			assert.Equal(t, tt.want, d.MatchedFields)
		})
	}
}

func TestTally(t *testing.T) {
	chunks := []models.Chunk{
		{Path: "special:ld+json[1]", Kind: models.KindMeta},
		chunk(models.KindHeading, "h1", "Widget", true),
		chunk(models.KindTextBlock, "p", "Menu", true),
		chunk(models.KindTextBlock, "p", "Footer text far away from main", false),
	}
	out := New(Options{}).Prune(chunks, "", true)
	rc := Tally(out)

	assert.Equal(t, 1, rc.Kept[models.ReasonSpecialChunk])
	assert.Equal(t, 1, rc.Kept[models.ReasonMainHeading])
	assert.Equal(t, 1, rc.Removed[models.ReasonMainNoise])
	assert.Equal(t, 1, rc.Removed[models.ReasonOutsideMain])
	assert.Len(t, Kept(out), 2)
}

func TestSharedSegments(t *testing.T) {
	assert.Equal(t, 3, sharedSegments("a[1]/b[1]/c[2]/d[1]", "a[1]/b[1]/c[2]/e[1]"))
	assert.Equal(t, 0, sharedSegments("a[1]", "b[1]"))
	assert.Equal(t, 2, sharedSegments("a[1]/b[1]", "a[1]/b[1]"))
}
