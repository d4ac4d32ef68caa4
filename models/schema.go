package models

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaKind is the closed set of logical content types the pruner and
// extractor know how to handle.
type SchemaKind int

const (
	SchemaNone SchemaKind = iota
	SchemaProduct
	SchemaNewsArticle
	SchemaWikiArticle
	SchemaSaaSPage
	SchemaGovernmentPage
	SchemaFAQPage
	SchemaEvent
	SchemaLocalBusiness
)

// AllSchemaKinds enumerates every SchemaKind. Registries keyed by schema
// are validated against this list at package init.
var AllSchemaKinds = []SchemaKind{
	SchemaNone,
	SchemaProduct,
	SchemaNewsArticle,
	SchemaWikiArticle,
	SchemaSaaSPage,
	SchemaGovernmentPage,
	SchemaFAQPage,
	SchemaEvent,
	SchemaLocalBusiness,
}

// ErrUnknownSchema is returned by ParseSchema for names outside the known set.
var ErrUnknownSchema = errors.New("unknown schema")

var schemaNames = map[SchemaKind]string{
	SchemaNone:           "",
	SchemaProduct:        "Product",
	SchemaNewsArticle:    "NewsArticle",
	SchemaWikiArticle:    "WikiArticle",
	SchemaSaaSPage:       "SaaSPage",
	SchemaGovernmentPage: "GovernmentPage",
	SchemaFAQPage:        "FAQPage",
	SchemaEvent:          "Event",
	SchemaLocalBusiness:  "LocalBusiness",
}

// schemaAliases maps lower-cased names, including schema.org family
// members, onto their SchemaKind.
var schemaAliases = map[string]SchemaKind{
	"":     SchemaNone,
	"none": SchemaNone,

	"product": SchemaProduct,

	"newsarticle":   SchemaNewsArticle,
	"article":       SchemaNewsArticle,
	"blogposting":   SchemaNewsArticle,
	"reportagenews": SchemaNewsArticle,
	"techarticle":   SchemaNewsArticle,
	"analysisnews":  SchemaNewsArticle,
	"opinionnews":   SchemaNewsArticle,

	"wikiarticle":    SchemaWikiArticle,
	"saaspage":       SchemaSaaSPage,
	"governmentpage": SchemaGovernmentPage,
	"faqpage":        SchemaFAQPage,

	"event":           SchemaEvent,
	"musicevent":      SchemaEvent,
	"sportsevent":     SchemaEvent,
	"theaterevent":    SchemaEvent,
	"businessevent":   SchemaEvent,
	"educationevent":  SchemaEvent,
	"festival":        SchemaEvent,
	"exhibitionevent": SchemaEvent,

	"localbusiness":       SchemaLocalBusiness,
	"restaurant":          SchemaLocalBusiness,
	"store":               SchemaLocalBusiness,
	"foodestablishment":   SchemaLocalBusiness,
	"cafeorcoffeeshop":    SchemaLocalBusiness,
	"hotel":               SchemaLocalBusiness,
	"medicalbusiness":     SchemaLocalBusiness,
	"automotivebusiness":  SchemaLocalBusiness,
	"professionalservice": SchemaLocalBusiness,
}

// String returns the canonical schema name ("" for SchemaNone).
func (k SchemaKind) String() string {
	return schemaNames[k]
}

// ParseSchema resolves a schema name (case-insensitive, family aliases
// allowed) to a SchemaKind.
func ParseSchema(name string) (SchemaKind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if k, ok := schemaAliases[key]; ok {
		return k, nil
	}
	return SchemaNone, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
}
