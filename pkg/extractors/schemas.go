package extractors

import (
	"strings"

	"github.com/dtnitsch/llm-web-pruner/models"
	"github.com/dtnitsch/llm-web-pruner/pkg/sanitize"
)

// MaxFAQEntries caps the extracted question list.
const MaxFAQEntries = 20

// schemaExtractor reads one schema's fields from every metadata source.
type schemaExtractor interface {
	linkedData(ld *linkedData) models.Metadata
	// itempropFields maps lower-cased itemprop names to fields.
	itempropFields() map[string]string
	// previewFields maps preview meta properties to fields.
	previewFields() map[string]string
	// nameField is the field the heading fallback fills.
	nameField() string
}

// Product

type productExtractor struct{}

var productTypes = []string{"Product", "ProductGroup", "IndividualProduct", "ProductModel", "Vehicle", "Book"}

func (productExtractor) linkedData(ld *linkedData) models.Metadata {
	m := models.Metadata{}
	obj := ld.find(productTypes...)
	if obj == nil {
		return m
	}
	put(m, "name", obj["name"])
	put(m, "description", obj["description"])
	put(m, "brand", obj["brand"])
	put(m, "sku", obj["sku"])
	for _, key := range []string{"gtin13", "gtin", "gtin12", "gtin14", "gtin8"} {
		put(m, "gtin", obj[key])
	}
	put(m, "mpn", obj["mpn"])
	put(m, "image", obj["image"])
	put(m, "url", obj["url"])
	put(m, "color", obj["color"])
	put(m, "category", obj["category"])

	if !putOffer(m, obj) {
		put(m, "price", obj["price"])
		put(m, "currency", obj["priceCurrency"])
	}
	putRating(m, obj)
	return m
}

func (productExtractor) itempropFields() map[string]string {
	return map[string]string{
		"name":          "name",
		"description":   "description",
		"brand":         "brand",
		"sku":           "sku",
		"gtin13":        "gtin",
		"gtin":          "gtin",
		"mpn":           "mpn",
		"price":         "price",
		"lowprice":      "price",
		"highprice":     "price_high",
		"pricecurrency": "currency",
		"availability":  "availability",
		"ratingvalue":   "rating",
		"reviewcount":   "review_count",
		"ratingcount":   "review_count",
		"image":         "image",
		"color":         "color",
	}
}

func (productExtractor) previewFields() map[string]string {
	return map[string]string{
		"og:title":                 "name",
		"twitter:title":            "name",
		"og:description":           "description",
		"og:image":                 "image",
		"twitter:image":            "image",
		"og:url":                   "url",
		"product:price:amount":     "price",
		"og:price:amount":          "price",
		"product:price:currency":   "currency",
		"og:price:currency":        "currency",
		"product:brand":            "brand",
		"product:availability":     "availability",
		"product:retailer_item_id": "sku",
		"product:condition":        "condition",
	}
}

func (productExtractor) nameField() string { return "name" }

// NewsArticle family

type articleExtractor struct{}

var articleTypes = []string{
	"NewsArticle", "Article", "BlogPosting", "ReportageNews", "AnalysisNews", "OpinionNews",
	"TechArticle", "ScholarlyArticle", "LiveBlogPosting", "Report",
}

func (articleExtractor) linkedData(ld *linkedData) models.Metadata {
	m := models.Metadata{}
	obj := ld.find(articleTypes...)
	if obj == nil {
		return m
	}
	put(m, "headline", obj["headline"])
	put(m, "headline", obj["name"])
	put(m, "description", obj["description"])
	put(m, "author", names(obj["author"]))
	put(m, "date_published", obj["datePublished"])
	put(m, "date_modified", obj["dateModified"])
	put(m, "publisher", obj["publisher"])
	put(m, "image", obj["image"])
	put(m, "section", names(obj["articleSection"]))
	put(m, "keywords", names(obj["keywords"]))
	put(m, "word_count", obj["wordCount"])
	put(m, "url", obj["url"])
	put(m, "in_language", obj["inLanguage"])
	return m
}

func (articleExtractor) itempropFields() map[string]string {
	return map[string]string{
		"headline":       "headline",
		"name":           "headline",
		"description":    "description",
		"author":         "author",
		"datepublished":  "date_published",
		"datemodified":   "date_modified",
		"publisher":      "publisher",
		"articlesection": "section",
		"image":          "image",
		"wordcount":      "word_count",
	}
}

func (articleExtractor) previewFields() map[string]string {
	return map[string]string{
		"og:title":               "headline",
		"twitter:title":          "headline",
		"og:description":         "description",
		"og:image":               "image",
		"twitter:image":          "image",
		"og:url":                 "url",
		"og:site_name":           "publisher",
		"article:published_time": "date_published",
		"article:modified_time":  "date_modified",
		"article:author":         "author",
		"article:section":        "section",
	}
}

func (articleExtractor) nameField() string { return "headline" }

// FAQPage

type faqExtractor struct{}

func (faqExtractor) linkedData(ld *linkedData) models.Metadata {
	m := models.Metadata{}
	obj := ld.find("FAQPage")
	if obj == nil {
		return m
	}
	put(m, "name", obj["name"])
	put(m, "description", obj["description"])

	var questions []any
	switch t := obj["mainEntity"].(type) {
	case []any:
		questions = t
	case map[string]any:
		questions = []any{t}
	}

	var entries []models.FAQEntry
	for _, q := range questions {
		if len(entries) == MaxFAQEntries {
			break
		}
		qm, ok := q.(map[string]any)
		if !ok {
			continue
		}
		question := sanitize.Field("question", text(qm["name"]))
		if question == "" {
			continue
		}
		answer := object(qm["acceptedAnswer"])
		if answer == nil {
			answer = object(qm["suggestedAnswer"])
		}
		var answerText string
		if answer != nil {
			answerText = sanitize.Field("answer", sanitize.StripHTML(text(answer["text"])))
		}
		entries = append(entries, models.FAQEntry{Question: question, Answer: answerText})
	}
	if len(entries) > 0 {
		m["faq"] = entries
		m["question_count"] = len(entries)
	}
	return m
}

func (faqExtractor) itempropFields() map[string]string {
	return map[string]string{"name": "name", "description": "description"}
}

func (faqExtractor) previewFields() map[string]string { return genericPreview }

func (faqExtractor) nameField() string { return "name" }

// Event family

type eventExtractor struct{}

var eventTypes = []string{
	"Event", "MusicEvent", "SportsEvent", "TheaterEvent", "BusinessEvent", "EducationEvent",
	"Festival", "ExhibitionEvent", "ComedyEvent", "DanceEvent", "FoodEvent", "ScreeningEvent", "SocialEvent",
}

func (eventExtractor) linkedData(ld *linkedData) models.Metadata {
	m := models.Metadata{}
	obj := ld.find(eventTypes...)
	if obj == nil {
		return m
	}
	put(m, "name", obj["name"])
	put(m, "description", obj["description"])
	put(m, "start_date", obj["startDate"])
	put(m, "end_date", obj["endDate"])
	put(m, "status", enumValue(obj["eventStatus"]))
	put(m, "attendance_mode", enumValue(obj["eventAttendanceMode"]))
	put(m, "organizer", names(obj["organizer"]))
	put(m, "performer", names(obj["performer"]))
	put(m, "image", obj["image"])
	put(m, "url", obj["url"])

	switch loc := obj["location"].(type) {
	case string:
		put(m, "location", loc)
	default:
		if place := object(loc); place != nil {
			put(m, "location", place["name"])
			put(m, "address", formatAddress(place["address"]))
		}
	}
	putOffer(m, obj)
	return m
}

func (eventExtractor) itempropFields() map[string]string {
	return map[string]string{
		"name":        "name",
		"description": "description",
		"startdate":   "start_date",
		"enddate":     "end_date",
		"location":    "location",
		"address":     "address",
		"performer":   "performer",
		"organizer":   "organizer",
		"price":       "price",
		"image":       "image",
	}
}

func (eventExtractor) previewFields() map[string]string { return genericPreview }

func (eventExtractor) nameField() string { return "name" }

// LocalBusiness family

type businessExtractor struct{}

var businessTypes = []string{
	"LocalBusiness", "Restaurant", "Store", "FoodEstablishment", "CafeOrCoffeeShop", "Bakery", "BarOrPub",
	"Hotel", "LodgingBusiness", "MedicalBusiness", "Dentist", "AutomotiveBusiness", "AutoRepair",
	"ProfessionalService", "LegalService", "FinancialService", "HealthAndBeautyBusiness", "HomeAndConstructionBusiness",
}

func (businessExtractor) linkedData(ld *linkedData) models.Metadata {
	m := models.Metadata{}
	obj := ld.find(businessTypes...)
	if obj == nil {
		return m
	}
	put(m, "name", obj["name"])
	put(m, "description", obj["description"])
	put(m, "telephone", obj["telephone"])
	put(m, "email", obj["email"])
	put(m, "address", formatAddress(obj["address"]))
	if addr := object(obj["address"]); addr != nil {
		put(m, "city", addr["addressLocality"])
		put(m, "region", addr["addressRegion"])
		put(m, "postal_code", addr["postalCode"])
		put(m, "country", addr["addressCountry"])
	}
	put(m, "price_range", obj["priceRange"])
	put(m, "opening_hours", openingHours(obj))
	put(m, "cuisine", names(obj["servesCuisine"]))
	put(m, "image", obj["image"])
	put(m, "url", obj["url"])
	if geo := object(obj["geo"]); geo != nil {
		put(m, "latitude", geo["latitude"])
		put(m, "longitude", geo["longitude"])
	}
	putRating(m, obj)
	return m
}

func (businessExtractor) itempropFields() map[string]string {
	return map[string]string{
		"name":            "name",
		"description":     "description",
		"telephone":       "telephone",
		"email":           "email",
		"address":         "address",
		"streetaddress":   "address",
		"addresslocality": "city",
		"addressregion":   "region",
		"postalcode":      "postal_code",
		"addresscountry":  "country",
		"pricerange":      "price_range",
		"openinghours":    "opening_hours",
		"ratingvalue":     "rating",
		"reviewcount":     "review_count",
		"servescuisine":   "cuisine",
	}
}

func (businessExtractor) previewFields() map[string]string {
	return map[string]string{
		"og:title":                             "name",
		"og:description":                       "description",
		"og:image":                             "image",
		"og:url":                               "url",
		"business:contact_data:street_address": "address",
		"business:contact_data:locality":       "city",
		"business:contact_data:region":         "region",
		"business:contact_data:postal_code":    "postal_code",
		"business:contact_data:country_name":   "country",
		"business:contact_data:phone_number":   "telephone",
		"business:contact_data:email":          "email",
	}
}

func (businessExtractor) nameField() string { return "name" }

// Generic WebPage, used for wiki, SaaS, government and untyped pages.

type genericExtractor struct{}

var genericTypes = []string{
	"WebPage", "AboutPage", "ItemPage", "CollectionPage", "Article", "TechArticle",
	"SoftwareApplication", "WebApplication", "MobileApplication",
	"GovernmentOrganization", "GovernmentService", "GovernmentOffice", "Organization", "WebSite",
}

var genericPreview = map[string]string{
	"og:title":       "name",
	"twitter:title":  "name",
	"og:description": "description",
	"og:image":       "image",
	"twitter:image":  "image",
	"og:url":         "url",
	"og:site_name":   "site_name",
	"og:locale":      "in_language",
}

func (genericExtractor) linkedData(ld *linkedData) models.Metadata {
	m := models.Metadata{}
	obj := ld.find(genericTypes...)
	if obj == nil {
		return m
	}
	put(m, "name", obj["name"])
	put(m, "name", obj["headline"])
	put(m, "description", obj["description"])
	put(m, "author", names(obj["author"]))
	put(m, "date_published", obj["datePublished"])
	put(m, "date_modified", obj["dateModified"])
	put(m, "publisher", obj["publisher"])
	put(m, "image", obj["image"])
	put(m, "url", obj["url"])
	put(m, "in_language", obj["inLanguage"])
	put(m, "application_category", obj["applicationCategory"])
	put(m, "operating_system", obj["operatingSystem"])
	put(m, "area_served", names(obj["areaServed"]))
	putOffer(m, obj)
	putRating(m, obj)
	return m
}

func (genericExtractor) itempropFields() map[string]string {
	return map[string]string{
		"name":          "name",
		"headline":      "name",
		"description":   "description",
		"author":        "author",
		"datepublished": "date_published",
		"datemodified":  "date_modified",
		"image":         "image",
	}
}

func (genericExtractor) previewFields() map[string]string { return genericPreview }

func (genericExtractor) nameField() string { return "name" }

// putRating copies an aggregateRating's value and count.
func putRating(m models.Metadata, obj map[string]any) {
	rating := object(obj["aggregateRating"])
	if rating == nil {
		return
	}
	put(m, "rating", rating["ratingValue"])
	put(m, "review_count", rating["reviewCount"])
	put(m, "review_count", rating["ratingCount"])
}

// formatAddress flattens a PostalAddress into one line.
func formatAddress(v any) string {
	addr, ok := v.(map[string]any)
	if !ok {
		return text(v)
	}
	var parts []string
	for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
		if s := text(addr[key]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// openingHours reads openingHours strings or an openingHoursSpecification
// list into "Monday 09:00-17:00; ..." form.
func openingHours(obj map[string]any) string {
	switch t := obj["openingHours"].(type) {
	case string:
		return t
	case []any:
		var out []string
		for _, item := range t {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		return strings.Join(out, "; ")
	}

	specs, ok := obj["openingHoursSpecification"].([]any)
	if !ok {
		if single := object(obj["openingHoursSpecification"]); single != nil {
			specs = []any{single}
		}
	}
	var out []string
	for _, s := range specs {
		spec, ok := s.(map[string]any)
		if !ok {
			continue
		}
		days := enumList(spec["dayOfWeek"])
		opens, closes := text(spec["opens"]), text(spec["closes"])
		if days == "" || opens == "" {
			continue
		}
		out = append(out, days+" "+opens+"-"+closes)
	}
	return strings.Join(out, "; ")
}

func enumList(v any) string {
	list, ok := v.([]any)
	if !ok {
		return enumValue(v)
	}
	var out []string
	for _, item := range list {
		if s := enumValue(item); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ",")
}
