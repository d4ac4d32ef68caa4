package pruner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/i18n"
)

// matcher reports which schema fields a chunk evidences, in a fixed order.
type matcher interface {
	match(c models.Chunk, terms *i18n.Terms) []string
}

// fieldRule is one field's evidence. Any single predicate is enough.
type fieldRule struct {
	field string

	tags      []string
	kinds     []models.ChunkKind
	itemprops []string
	// properties are RDFa/preview property prefixes found on body elements
	properties []string
	itemtypes  []string
	class      *regexp.Regexp
	markup     []string

	// term and pattern only fire on text no longer than maxText runes;
	// a zero maxText means no limit
	term    string
	pattern *regexp.Regexp
	maxText int
}

func (r fieldRule) matches(c models.Chunk, terms *i18n.Terms) bool {
	for _, t := range r.tags {
		if c.Tag == t {
			return true
		}
	}
	for _, k := range r.kinds {
		if c.Kind == k {
			return true
		}
	}
	if props := strings.ToLower(c.Attr("itemprop")); props != "" {
		for _, prop := range strings.Fields(props) {
			for _, want := range r.itemprops {
				if prop == want {
					return true
				}
			}
		}
	}
	if prop := strings.ToLower(c.Attr("property")); prop != "" {
		for _, want := range r.properties {
			if strings.HasPrefix(prop, want) {
				return true
			}
		}
	}
	if it := c.Attr("itemtype"); it != "" {
		for _, want := range r.itemtypes {
			if strings.HasSuffix(it, "/"+want) {
				return true
			}
		}
	}
	if r.class != nil {
		if cls := c.Attr("class"); cls != "" && r.class.MatchString(cls) {
			return true
		}
	}
	for _, s := range r.markup {
		if strings.Contains(c.Markup, s) {
			return true
		}
	}

	if r.term == "" && r.pattern == nil {
		return false
	}
	if r.maxText > 0 && utf8.RuneCountInString(c.Text) > r.maxText {
		return false
	}
	if r.term != "" && terms.Match(r.term, c.Text) {
		return true
	}
	return r.pattern != nil && r.pattern.MatchString(c.Text)
}

type ruleSet []fieldRule

func (rs ruleSet) match(c models.Chunk, terms *i18n.Terms) []string {
	var fields []string
	for _, r := range rs {
		if r.matches(c, terms) {
			fields = append(fields, r.field)
		}
	}
	return fields
}

var (
	currencyRe  = regexp.MustCompile(`(?i)([$€£¥₩₹]\s?\d|\d\s?(€|£|usd|eur|gbp|jpy|krw|cny|원|円|元)(\W|$))`)
	bylineRe    = regexp.MustCompile(`(?i)^\s*(by|von|par|por|di)\s+\S+`)
	questionRe  = regexp.MustCompile(`[?？]\s*$`)
	phoneRe     = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	timeRangeRe = regexp.MustCompile(`(?i)\b\d{1,2}(:\d{2})?\s?(am|pm)?\s?[-–]\s?\d{1,2}(:\d{2})?\s?(am|pm)?\b`)
	dateTextRe  = regexp.MustCompile(`(?i)\b(\d{4}-\d{2}-\d{2}|(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(st|nd|rd|th)?,?(\s+\d{4})?|\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?(\s+\d{4})?)\b`)
)

var productRules = ruleSet{
	{field: "name", tags: []string{"h1"}, itemprops: []string{"name"}, properties: []string{"og:title", "product:title"},
		class: regexp.MustCompile(`(?i)product[-_]?(title|name)`)},
	{field: "price", itemprops: []string{"price", "lowprice", "highprice"}, properties: []string{"product:price", "og:price"},
		class: regexp.MustCompile(`(?i)(^|[\s_-])price([\s_-]|$)`), term: i18n.Price, pattern: currencyRe, maxText: 80},
	{field: "rating", itemprops: []string{"ratingvalue", "aggregaterating"}, itemtypes: []string{"AggregateRating"},
		class: regexp.MustCompile(`(?i)rating|stars`), term: i18n.Rating, maxText: 60},
	{field: "review_count", itemprops: []string{"reviewcount", "ratingcount"},
		class: regexp.MustCompile(`(?i)review[-_]?count`), term: i18n.ReviewCount, maxText: 60},
	{field: "brand", itemprops: []string{"brand", "manufacturer"}, properties: []string{"product:brand"},
		class: regexp.MustCompile(`(?i)(^|[\s_-])brand([\s_-]|$)`), term: i18n.Brand, maxText: 60},
	{field: "availability", itemprops: []string{"availability"}, properties: []string{"product:availability"},
		class: regexp.MustCompile(`(?i)availability|stock`), term: i18n.Availability, maxText: 120},
	{field: "shipping", class: regexp.MustCompile(`(?i)shipping|delivery`), term: i18n.Shipping, maxText: 120},
	{field: "discount", class: regexp.MustCompile(`(?i)discount|savings|sale[-_]badge`), pattern: percentOffRe, maxText: 60},
	{field: "description", itemprops: []string{"description"}, properties: []string{"og:description"},
		class: regexp.MustCompile(`(?i)product[-_]?(description|details)`)},
	{field: "image", itemprops: []string{"image"}, class: regexp.MustCompile(`(?i)product[-_]?(image|gallery|photo)`)},
	{field: "specs", class: regexp.MustCompile(`(?i)spec(ification)?s?([\s_-]|$)|dimension`), term: i18n.Measurement, maxText: 200},
	{field: "sku", itemprops: []string{"sku", "mpn", "gtin", "gtin8", "gtin12", "gtin13", "gtin14"},
		class: regexp.MustCompile(`(?i)(^|[\s_-])sku([\s_-]|$)`)},
}

var articleRules = ruleSet{
	{field: "headline", tags: []string{"h1"}, itemprops: []string{"headline", "name"}, properties: []string{"og:title"},
		class: regexp.MustCompile(`(?i)headline|article[-_]?title|entry[-_]?title`)},
	{field: "author", itemprops: []string{"author", "creator"}, properties: []string{"article:author"},
		class: regexp.MustCompile(`(?i)byline|author`), pattern: bylineRe, maxText: 80},
	{field: "date_published", itemprops: []string{"datepublished", "datemodified", "datecreated"},
		properties: []string{"article:published_time", "article:modified_time"},
		class:      regexp.MustCompile(`(?i)(^|[\s_-])(date|time|published|timestamp)([\s_-]|$)`), markup: []string{"datetime="}},
	{field: "description", itemprops: []string{"description"}, class: regexp.MustCompile(`(?i)(^|[\s_-])(summary|dek|standfirst|lede|subtitle)([\s_-]|$)`)},
	{field: "body", itemprops: []string{"articlebody"},
		class: regexp.MustCompile(`(?i)article[-_]?(body|content)|story[-_]?body|post[-_]?content|entry[-_]?content`)},
	{field: "section", itemprops: []string{"articlesection"}, properties: []string{"article:section"},
		class: regexp.MustCompile(`(?i)kicker|(^|[\s_-])(section|category)[-_]?(name|label)`)},
	{field: "image", kinds: []models.ChunkKind{models.KindMedia}, itemprops: []string{"image"}},
}

var wikiRules = ruleSet{
	{field: "title", tags: []string{"h1"}, class: regexp.MustCompile(`(?i)firstheading|page[-_]?title`)},
	{field: "section", tags: []string{"h2", "h3"}},
	{field: "infobox", class: regexp.MustCompile(`(?i)infobox|sidebar[-_]?box|wikitable`)},
	{field: "references", class: regexp.MustCompile(`(?i)reflist|references|citation`)},
	{field: "image", kinds: []models.ChunkKind{models.KindMedia}, class: regexp.MustCompile(`(?i)thumb`)},
}

var saasRules = ruleSet{
	{field: "name", tags: []string{"h1"}, itemprops: []string{"name"}},
	{field: "plan", class: regexp.MustCompile(`(?i)(^|[\s_-])(plan|tier)[-_]?(name|title)?([\s_-]|$)`)},
	{field: "price", itemprops: []string{"price"}, class: regexp.MustCompile(`(?i)(^|[\s_-])price([\s_-]|$)`),
		term: i18n.Pricing, pattern: currencyRe, maxText: 120},
	{field: "feature", class: regexp.MustCompile(`(?i)feature`), term: i18n.Feature, maxText: 200},
	{field: "cta", class: regexp.MustCompile(`(?i)(^|[\s_-])cta([\s_-]|$)|sign[-_]?up|get[-_]?started|start[-_]?trial`)},
}

var govRules = ruleSet{
	{field: "title", tags: []string{"h1"}},
	{field: "department", class: regexp.MustCompile(`(?i)agency|department|ministry`), term: i18n.Department, maxText: 200},
	{field: "contact", itemprops: []string{"telephone", "email", "address"}, markup: []string{`href="tel:`, `href="mailto:`},
		class: regexp.MustCompile(`(?i)contact`), term: i18n.Contact, maxText: 200},
	{field: "date", markup: []string{"datetime="}, class: regexp.MustCompile(`(?i)updated|last[-_]?reviewed|(^|[\s_-])date([\s_-]|$)`)},
	{field: "alert", class: regexp.MustCompile(`(?i)(^|[\s_-])(alert|notice|warning)([\s_-]|$)|usa-alert`)},
}

var faqRules = ruleSet{
	{field: "question", itemtypes: []string{"Question"}, tags: []string{"summary", "dt"},
		class: regexp.MustCompile(`(?i)question|faq[-_]?(title|q)|accordion[-_]?(header|title|button)`), pattern: questionRe, maxText: 300},
	{field: "answer", itemtypes: []string{"Answer"}, itemprops: []string{"acceptedanswer", "suggestedanswer", "text"}, tags: []string{"dd"},
		class: regexp.MustCompile(`(?i)answer|faq[-_]?(content|body|a)([\s_-]|$)|accordion[-_]?(body|content|panel)`)},
}

var eventRules = ruleSet{
	{field: "name", tags: []string{"h1"}, itemprops: []string{"name"}},
	{field: "date", itemprops: []string{"startdate", "enddate", "doortime"}, markup: []string{"datetime="},
		class: regexp.MustCompile(`(?i)(^|[\s_-])(date|time|schedule|when)([\s_-]|$)`), pattern: dateTextRe, maxText: 120},
	{field: "location", itemprops: []string{"location", "address"}, itemtypes: []string{"Place", "PostalAddress"},
		class: regexp.MustCompile(`(?i)venue|location|(^|[\s_-])where([\s_-]|$)`)},
	{field: "price", itemprops: []string{"price", "offers"}, class: regexp.MustCompile(`(?i)ticket|(^|[\s_-])price([\s_-]|$)`),
		term: i18n.Price, pattern: currencyRe, maxText: 80},
	{field: "performer", itemprops: []string{"performer", "organizer"}, class: regexp.MustCompile(`(?i)lineup|performer|artist|speaker|organizer`)},
}

var businessRules = ruleSet{
	{field: "name", tags: []string{"h1"}, itemprops: []string{"name"}},
	{field: "address", tags: []string{"address"}, itemprops: []string{"address", "streetaddress", "postalcode", "addresslocality"},
		itemtypes: []string{"PostalAddress"}, class: regexp.MustCompile(`(?i)address|location`)},
	{field: "telephone", itemprops: []string{"telephone"}, markup: []string{`href="tel:`}, pattern: phoneRe, maxText: 60},
	{field: "opening_hours", itemprops: []string{"openinghours", "openinghoursspecification"},
		class: regexp.MustCompile(`(?i)(^|[\s_-])hours|opening`), pattern: timeRangeRe, maxText: 200},
	{field: "rating", itemprops: []string{"ratingvalue", "aggregaterating"}, class: regexp.MustCompile(`(?i)rating|stars`),
		term: i18n.Rating, maxText: 60},
	{field: "price_range", itemprops: []string{"pricerange"}},
	{field: "menu", itemprops: []string{"hasmenu", "menu"}, class: regexp.MustCompile(`(?i)(^|[\s_-])menu[-_]?(item|section|list)`)},
}

// matchers is keyed by every SchemaKind; None has no field matcher.
var matchers = map[models.SchemaKind]matcher{
	models.SchemaNone:           nil,
	models.SchemaProduct:        productRules,
	models.SchemaNewsArticle:    articleRules,
	models.SchemaWikiArticle:    wikiRules,
	models.SchemaSaaSPage:       saasRules,
	models.SchemaGovernmentPage: govRules,
	models.SchemaFAQPage:        faqRules,
	models.SchemaEvent:          eventRules,
	models.SchemaLocalBusiness:  businessRules,
}

func init() {
	for _, k := range models.AllSchemaKinds {
		if _, ok := matchers[k]; !ok {
			panic(fmt.Sprintf("pruner: no matcher registered for schema kind %d (%q)", int(k), k.String()))
		}
	}
}
