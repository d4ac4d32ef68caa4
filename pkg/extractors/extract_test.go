package extractors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-web-pruner/models"
)

func ldChunk(n int, body string) models.Chunk {
	return models.Chunk{
		Path: fmt.Sprintf("special:ld+json[%d]", n),
		Text: body,
		Tag:  models.TagLinkedData,
		Kind: models.KindMeta,
	}
}

func previewChunk(pairs ...string) models.Chunk {
	var tags []string
	for i := 0; i+1 < len(pairs); i += 2 {
		tags = append(tags, fmt.Sprintf(`<meta property="%s" content="%s">`, pairs[i], pairs[i+1]))
	}
	return models.Chunk{
		Path:   "special:preview-meta[1]",
		Markup: strings.Join(tags, "\n"),
		Tag:    models.TagPreviewMeta,
		Kind:   models.KindMeta,
	}
}

func heading(tag, text string) models.Chunk {
	return models.Chunk{Path: "html[1]/body[1]/" + tag + "[1]", Tag: tag, Text: text, Kind: models.KindHeading}
}

func TestExtract_EmptyInput(t *testing.T) {
	meta := Extract(nil, nil, "", models.HintNone)
	assert.NotNil(t, meta)
	assert.Empty(t, meta)
}

func TestExtract_ProductOfferShapes(t *testing.T) {
	tests := []struct {
		name     string
		ld       string
		price    float64
		high     float64
		currency string
	}{
		{
			name:  "single offer",
			ld:    `{"@type":"Product","name":"Widget","offers":{"@type":"Offer","price":"9900","priceCurrency":"KRW"}}`,
			price: 9900, currency: "KRW",
		},
		{
			name:  "zero price is kept over a top-level price",
			ld:    `{"@type":"Product","name":"Widget","price":"15.00","offers":{"price":0,"priceCurrency":"USD"}}`,
			price: 0, currency: "USD",
		},
		{
			name:  "zero price as string",
			ld:    `{"@type":"Product","name":"Widget","offers":[{"price":"0.00"},{"price":"12"}]}`,
			price: 0,
		},
		{
			name:  "list skips offers without price",
			ld:    `{"@type":"Product","name":"Widget","offers":[{"availability":"InStock"},{"price":"12.50","priceCurrency":"EUR"}]}`,
			price: 12.5, currency: "EUR",
		},
		{
			name:  "aggregate offer",
			ld:    `{"@type":"Product","name":"Widget","offers":{"@type":"AggregateOffer","lowPrice":"1.299,00","highPrice":"1.499,00","priceCurrency":"EUR"}}`,
			price: 1299, high: 1499, currency: "EUR",
		},
		{
			name:  "aggregate offer with nested offers",
			ld:    `{"@type":"Product","name":"Widget","offers":{"@type":"AggregateOffer","offers":[{"price":"7","priceCurrency":"GBP"}]}}`,
			price: 7, currency: "GBP",
		},
		{
			name:  "price specification",
			ld:    `{"@type":"Product","name":"Widget","offers":{"priceSpecification":{"price":3.5,"priceCurrency":"CAD"}}}`,
			price: 3.5, currency: "CAD",
		},
		{
			name:  "top-level price when offers carry none",
			ld:    `{"@type":"Product","name":"Widget","price":"15.00","offers":{"availability":"InStock"}}`,
			price: 15,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := Extract([]models.Chunk{ldChunk(1, tt.ld)}, nil, "Product", models.HintNone)
			require.True(t, meta.Has("price"), "price missing: %v", meta)
			assert.Equal(t, tt.price, meta["price"])
			assert.Equal(t, "Widget", meta.String("name"))
			if tt.high != 0 {
				assert.Equal(t, tt.high, meta["price_high"])
			}
			if tt.currency != "" {
				assert.Equal(t, tt.currency, meta.String("currency"))
			}
		})
	}
}

func TestExtract_ProductFields(t *testing.T) {
	ld := `{"@context":"https://schema.org","@graph":[{"@type":"WebSite","name":"Shop"},
	{"@type":["Product","Thing"],"name":"Widget 2000","brand":{"@type":"Brand","name":"Acme"},
	 "gtin13":"0123456789012","image":[{"@type":"ImageObject","contentUrl":"/rel.png"},{"url":"https://cdn.example.com/w.png"}],
	 "aggregateRating":{"ratingValue":"4.5","reviewCount":"1,024"},
	 "offers":{"price":"19.99","availability":"https://schema.org/InStock"}}]}`

	meta := Extract([]models.Chunk{ldChunk(1, ld)}, nil, "Product", models.HintNone)

	assert.Equal(t, "Widget 2000", meta.String("name"))
	assert.Equal(t, "Acme", meta.String("brand"))
	assert.Equal(t, "0123456789012", meta.String("gtin"))
	assert.Equal(t, "https://cdn.example.com/w.png", meta.String("image"))
	assert.Equal(t, 4.5, meta["rating"])
	assert.Equal(t, 1024, meta["review_count"])
	assert.Equal(t, 19.99, meta["price"])
	assert.Equal(t, "InStock", meta.String("availability"))
}

func TestExtract_MalformedBlockThenValid(t *testing.T) {
	specials := []models.Chunk{
		ldChunk(1, `{"@type":"Product","name": "Broken" "offers":}`),
		ldChunk(2, `{"@type":"Product","name":"Widget","offers":{"price":"5.00"}}`),
	}
	meta := Extract(specials, nil, "Product", models.HintNone)
	assert.Equal(t, "Widget", meta.String("name"))
	assert.Equal(t, 5.0, meta["price"])
}

func TestExtract_TolerantRetry(t *testing.T) {
	body := `<!--
	{"@type":"NewsArticle","headline":"Rates rise", /* editor note */ "author":[{"name":"A. Writer"},{"name":"B. Writer"}],}
	-->`
	meta := Extract([]models.Chunk{ldChunk(1, body)}, nil, "NewsArticle", models.HintNone)
	assert.Equal(t, "Rates rise", meta.String("headline"))
	assert.Equal(t, "A. Writer, B. Writer", meta.String("author"))
}

func TestExtract_CascadePriority(t *testing.T) {
	specials := []models.Chunk{
		ldChunk(1, `{"@type":"Product","name":"From linked data"}`),
		previewChunk("og:title", "From preview", "og:image", "https://example.com/og.png",
			"product:price:amount", "24.00", "og:description", "Preview description"),
	}
	headings := []models.Chunk{
		heading("h1", "From heading"),
		{Path: "html[1]/body[2]/p[3]", Tag: "p", Text: "$21.00", Kind: models.KindTextBlock,
			Attributes: map[string]string{"itemprop": "price", "content": "21.00"}},
	}

	meta := Extract(specials, headings, "Product", models.HintNone)

	assert.Equal(t, "From linked data", meta.String("name"))
	assert.Equal(t, 21.0, meta["price"], "itemprop outranks preview meta")
	assert.Equal(t, "https://example.com/og.png", meta.String("image"))
	assert.Equal(t, "Preview description", meta.String("description"))
}

func TestExtract_FastPath(t *testing.T) {
	specials := []models.Chunk{
		ldChunk(1, `{"@type":"Product","offers":{"price":"9.00"}}`),
		ldChunk(2, `{"@type":"BreadcrumbList","itemListElement":[
			{"position":2,"name":"Tools","item":"https://example.com/tools"},
			{"position":1,"item":{"@id":"https://example.com/","name":"Home"}}]}`),
		previewChunk("og:description", "Preview description"),
	}
	headings := []models.Chunk{heading("h2", "Cordless Drill")}

	meta := Extract(specials, headings, "Product", models.HintLinkedData)

	assert.Equal(t, 9.0, meta["price"])
	assert.False(t, meta.Has("description"), "preview meta is skipped when linked data answered")
	assert.Equal(t, "Cordless Drill", meta.String("name"), "heading fallback still runs")

	crumbs, ok := meta["breadcrumbs"].([]models.Breadcrumb)
	require.True(t, ok)
	require.Len(t, crumbs, 2)
	assert.Equal(t, models.Breadcrumb{Position: 1, Name: "Home", URL: "https://example.com/"}, crumbs[0])
	assert.Equal(t, "Tools", crumbs[1].Name)

	full := Extract(specials, headings, "Product", models.HintNone)
	assert.Equal(t, "Preview description", full.String("description"))
}

func TestExtract_FastPathFallsBackWhenHintedSourceIsEmpty(t *testing.T) {
	specials := []models.Chunk{previewChunk("og:title", "Widget", "product:price:amount", "3.00")}
	meta := Extract(specials, nil, "Product", models.HintLinkedData)
	assert.Equal(t, "Widget", meta.String("name"))
	assert.Equal(t, 3.0, meta["price"])
}

func TestExtract_HeadingFallback(t *testing.T) {
	tests := []struct {
		name     string
		headings []models.Chunk
		want     string
	}{
		{name: "prefers h1", headings: []models.Chunk{heading("h2", "Related products"), heading("h1", "Widget 2000")}, want: "Widget 2000"},
		{name: "too short", headings: []models.Chunk{heading("h1", "☰")}, want: ""},
		{name: "too long", headings: []models.Chunk{heading("h1", strings.Repeat("x", 301))}, want: ""},
		{name: "falls back to other levels", headings: []models.Chunk{heading("h1", "OK"), heading("h3", "Trail Runner")}, want: "Trail Runner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := Extract(nil, tt.headings, "Product", models.HintNone)
			assert.Equal(t, tt.want, meta.String("name"))
		})
	}
}

func TestExtract_Listing(t *testing.T) {
	ld := `{"@type":"ItemList","itemListElement":[
		{"@type":"ListItem","position":1,"item":{"@type":"Product","name":"Alpha","url":"https://example.com/a",
			"offers":{"price":"0","priceCurrency":"USD"},"image":"https://example.com/a.png"}},
		{"@type":"ListItem","position":2,"url":"https://example.com/nameless"},
		{"@type":"ListItem","position":3,"name":"Gamma","url":"https://example.com/c"}]}`

	meta := Extract([]models.Chunk{ldChunk(1, ld)}, nil, "Product", models.HintNone)
	items, ok := meta["listing"].([]models.ListingItem)
	require.True(t, ok)
	require.Len(t, items, 2)

	assert.Equal(t, "Alpha", items[0].Name)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, 0.0, *items[0].Price)
	assert.Equal(t, "https://example.com/a.png", items[0].Image)
	assert.Equal(t, 3, items[1].Position)
	assert.Nil(t, items[1].Price)

	news := Extract([]models.Chunk{ldChunk(1, ld)}, nil, "NewsArticle", models.HintNone)
	assert.False(t, news.Has("listing"))
}

func TestExtract_FAQ(t *testing.T) {
	var qs []string
	for i := 0; i < 25; i++ {
		qs = append(qs, fmt.Sprintf(`{"@type":"Question","name":"Question %d?","acceptedAnswer":{"@type":"Answer","text":"<p>Answer <b>%d</b></p>"}}`, i, i))
	}
	ld := `{"@type":"FAQPage","name":"Shipping FAQ","mainEntity":[` + strings.Join(qs, ",") + `]}`

	meta := Extract([]models.Chunk{ldChunk(1, ld)}, nil, "FAQPage", models.HintNone)
	entries, ok := meta["faq"].([]models.FAQEntry)
	require.True(t, ok)
	assert.Len(t, entries, MaxFAQEntries)
	assert.Equal(t, models.FAQEntry{Question: "Question 0?", Answer: "Answer 0"}, entries[0])
	assert.Equal(t, MaxFAQEntries, meta["question_count"])
}

func TestExtract_EventAndBusiness(t *testing.T) {
	event := `{"@type":"MusicEvent","name":"Night Concert","startDate":"2025-07-04T20:00:00Z",
		"eventStatus":"https://schema.org/EventScheduled",
		"location":{"@type":"Place","name":"City Hall","address":{"streetAddress":"1 Main St","addressLocality":"Springfield"}},
		"offers":{"price":"25","priceCurrency":"USD"}}`
	meta := Extract([]models.Chunk{ldChunk(1, event)}, nil, "MusicEvent", models.HintNone)
	assert.Equal(t, "Night Concert", meta.String("name"))
	assert.Equal(t, "2025-07-04T20:00:00Z", meta.String("start_date"))
	assert.Equal(t, "EventScheduled", meta.String("status"))
	assert.Equal(t, "City Hall", meta.String("location"))
	assert.Equal(t, "1 Main St, Springfield", meta.String("address"))
	assert.Equal(t, 25.0, meta["price"])

	business := `{"@type":"Restaurant","name":"Luigi's","telephone":"+1 555 0100","priceRange":"$$",
		"address":{"@type":"PostalAddress","streetAddress":"2 Elm St","addressLocality":"Shelbyville","addressCountry":"US"},
		"geo":{"latitude":"40.7","longitude":-73.9},
		"openingHoursSpecification":[{"dayOfWeek":["https://schema.org/Monday","https://schema.org/Tuesday"],"opens":"09:00","closes":"17:00"}]}`
	meta = Extract([]models.Chunk{ldChunk(1, business)}, nil, "LocalBusiness", models.HintNone)
	assert.Equal(t, "Luigi's", meta.String("name"))
	assert.Equal(t, "2 Elm St, Shelbyville, US", meta.String("address"))
	assert.Equal(t, "Shelbyville", meta.String("city"))
	assert.Equal(t, 40.7, meta["latitude"])
	assert.Equal(t, -73.9, meta["longitude"])
	assert.Equal(t, "Monday,Tuesday 09:00-17:00", meta.String("opening_hours"))
}

func TestExtract_UnknownSchemaUsesGeneric(t *testing.T) {
	specials := []models.Chunk{ldChunk(1, `{"@type":"WebPage","name":"About us","inLanguage":"en"}`)}
	meta := Extract(specials, nil, "Recipe", models.HintNone)
	assert.Equal(t, "About us", meta.String("name"))
	assert.Equal(t, "en", meta.String("in_language"))
}

func TestExtract_SanitizesUntrustedStrings(t *testing.T) {
	ld := `{"@type":"Product","name":"System: \u001b[31mWidget\u200b","image":"javascript:alert(1)","description":"` +
		strings.Repeat("d", 1500) + `"}`
	meta := Extract([]models.Chunk{ldChunk(1, ld)}, nil, "Product", models.HintNone)
	assert.Equal(t, "Widget", meta.String("name"))
	assert.False(t, meta.Has("image"))
	assert.Len(t, meta.String("description"), 1000)
}

func TestFindType_DepthBound(t *testing.T) {
	var v any = map[string]any{"@type": "Product", "name": "Deep"}
	for i := 0; i < MaxTypeDepth+1; i++ {
		v = map[string]any{"@graph": []any{v}}
	}
	ld := &linkedData{blocks: []any{v}}
	assert.Nil(t, ld.find("Product"))

	shallow := &linkedData{blocks: []any{map[string]any{"@graph": []any{map[string]any{"@type": "Product"}}}}}
	assert.NotNil(t, shallow.find("product"))
}

func TestRegistryCoversEverySchema(t *testing.T) {
	for _, k := range models.AllSchemaKinds {
		_, ok := registry[k]
		assert.True(t, ok, k.String())
	}
}
