package extractors

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/chunker"
	"github.com/dtnitsch/llm-web-pruner/pkg/sanitize"
)

const (
	// MaxListingItems caps the extracted item list.
	MaxListingItems = 50

	minHeadingName = 4
	maxHeadingName = 300
)

// fromItemprop maps chunks carrying an itemprop attribute onto fields.
// An explicit content attribute is preferred over the element text.
func fromItemprop(chunks []models.Chunk, fields map[string]string) models.Metadata {
	m := models.Metadata{}
	for _, c := range chunks {
		props := c.Attr("itemprop")
		if props == "" {
			continue
		}
		value := c.Attr("content")
		if value == "" {
			value = c.Text
		}
		for _, prop := range strings.Fields(strings.ToLower(props)) {
			field, ok := fields[prop]
			if !ok {
				continue
			}
			v := value
			if field == "image" && c.Attr("content") == "" && c.Attr("src") != "" {
				v = c.Attr("src")
			}
			put(m, field, v)
		}
	}
	return m
}

// fromPreview maps preview meta properties onto fields.
func fromPreview(specials []models.Chunk, fields map[string]string) models.Metadata {
	m := models.Metadata{}
	for _, c := range specials {
		if c.Kind != models.KindMeta || c.Tag != models.TagPreviewMeta {
			continue
		}
		for _, pair := range chunker.PreviewPairs(c.Markup) {
			if field, ok := fields[pair.Property]; ok {
				put(m, field, pair.Content)
			}
		}
	}
	return m
}

// headingName picks the first usable heading, preferring h1. Headings
// shorter than 4 or longer than 300 characters are icon labels or
// boilerplate and are skipped.
func headingName(chunks []models.Chunk) string {
	for _, h1Only := range []bool{true, false} {
		for _, c := range chunks {
			if c.Kind != models.KindHeading || (h1Only && c.Tag != "h1") {
				continue
			}
			raw := strings.TrimSpace(c.Text)
			if n := utf8.RuneCountInString(raw); n < minHeadingName || n > maxHeadingName {
				continue
			}
			if s := sanitize.Field("name", raw); s != "" {
				return s
			}
		}
	}
	return ""
}

// breadcrumbs reads the first BreadcrumbList, sorted by declared position
// (missing positions count as 0). An entry's address is either the item
// itself or nested in an item object.
func breadcrumbs(ld *linkedData) []models.Breadcrumb {
	list := ld.find("BreadcrumbList")
	if list == nil {
		return nil
	}
	elements, _ := list["itemListElement"].([]any)

	var crumbs []models.Breadcrumb
	for _, e := range elements {
		em, ok := e.(map[string]any)
		if !ok {
			continue
		}
		pos, _ := ParseInt(em["position"])
		name := text(em["name"])
		var addr string
		switch item := em["item"].(type) {
		case string:
			addr = item
		case map[string]any:
			if name == "" {
				name = text(item["name"])
			}
			addr = text(item["@id"])
			if addr == "" {
				addr = text(item["url"])
			}
		}
		if addr == "" {
			addr = text(em["url"])
		}
		name = sanitize.Field("name", name)
		if name == "" {
			continue
		}
		crumbs = append(crumbs, models.Breadcrumb{
			Position: pos,
			Name:     name,
			URL:      sanitize.Text(addr, sanitize.MaxImageURLLen),
		})
	}
	sort.SliceStable(crumbs, func(i, j int) bool { return crumbs[i].Position < crumbs[j].Position })
	return crumbs
}

// listing reads the first ItemList. Elements are ListItem wrappers or the
// entities themselves; items without a name are dropped.
func listing(ld *linkedData) []models.ListingItem {
	list := ld.find("ItemList", "OfferCatalog")
	if list == nil {
		return nil
	}
	elements, _ := list["itemListElement"].([]any)

	var items []models.ListingItem
	for i, e := range elements {
		if len(items) == MaxListingItems {
			break
		}
		em, ok := e.(map[string]any)
		if !ok {
			continue
		}
		entity := em
		if inner := object(em["item"]); inner != nil {
			entity = inner
		}

		name := text(em["name"])
		if name == "" {
			name = text(entity["name"])
		}
		name = sanitize.Field("name", name)
		if name == "" {
			continue
		}

		item := models.ListingItem{Position: i + 1, Name: name}
		if pos, ok := ParseInt(em["position"]); ok {
			item.Position = pos
		}
		addr := text(em["url"])
		if addr == "" {
			addr = text(entity["url"])
		}
		if addr == "" {
			addr = text(entity["@id"])
		}
		item.URL = sanitize.Text(addr, sanitize.MaxImageURLLen)
		if o, ok := resolveOffer(entity["offers"], 0); ok {
			price := o.price
			item.Price = &price
			item.Currency = sanitize.Text(o.currency, 8)
		}
		if img, ok := imageURL(entity["image"]); ok {
			item.Image = img
		}
		items = append(items, item)
	}
	return items
}
