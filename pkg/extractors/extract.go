// Package extractors merges structured metadata from linked data, itemprop
// attributes, preview meta tags and headings.
//
// Sources cascade in priority order and the first source to provide a
// field wins. Every extracted string is sanitized; page content is
// untrusted.
package extractors

import (
	"fmt"
	"log/slog"

	"github.com/dtnitsch/llm-web-pruner/models"
)

var registry = map[models.SchemaKind]schemaExtractor{
	models.SchemaNone:           genericExtractor{},
	models.SchemaProduct:        productExtractor{},
	models.SchemaNewsArticle:    articleExtractor{},
	models.SchemaWikiArticle:    genericExtractor{},
	models.SchemaSaaSPage:       genericExtractor{},
	models.SchemaGovernmentPage: genericExtractor{},
	models.SchemaFAQPage:        faqExtractor{},
	models.SchemaEvent:          eventExtractor{},
	models.SchemaLocalBusiness:  businessExtractor{},
}

func init() {
	for _, k := range models.AllSchemaKinds {
		if _, ok := registry[k]; !ok {
			panic(fmt.Sprintf("extractors: no extractor registered for schema kind %d (%q)", int(k), k.String()))
		}
	}
}

// Options configures a MetadataExtractor.
type Options struct {
	Logger *slog.Logger
}

// MetadataExtractor is stateless and safe for concurrent use.
type MetadataExtractor struct {
	logger *slog.Logger
}

// New creates a MetadataExtractor.
func New(opts Options) *MetadataExtractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataExtractor{logger: logger}
}

// Extract is MetadataExtractor.Extract with the default logger.
func Extract(specials, headings []models.Chunk, schema string, hint models.SourceHint) models.Metadata {
	return New(Options{}).Extract(specials, headings, schema, hint)
}

type source struct {
	hint models.SourceHint
	run  func() models.Metadata
}

// Extract cascades linked data > itemprop > preview meta > heading
// fallback for the given schema. An unknown schema uses the generic
// extractor.
//
// When hint names a source and that source alone yields fields, the
// rest of the cascade is skipped. Breadcrumbs, the Product listing and
// the heading fallback always run.
//
// Extract never panics; malformed linked-data blocks are skipped.
func (e *MetadataExtractor) Extract(specials, headings []models.Chunk, schema string, hint models.SourceHint) (meta models.Metadata) {
	meta = models.Metadata{}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("metadata extraction failed", "schema", schema, "error", r)
		}
	}()

	kind, err := models.ParseSchema(schema)
	if err != nil {
		e.logger.Debug("unknown schema, using generic extractor", "schema", schema)
		kind = models.SchemaNone
	}
	ex := registry[kind]

	ld := parseLinkedData(specials)
	if ld.skipped > 0 {
		e.logger.Debug("skipped malformed linked-data blocks", "count", ld.skipped, "schema", schema)
	}

	chunks := make([]models.Chunk, 0, len(specials)+len(headings))
	chunks = append(chunks, specials...)
	chunks = append(chunks, headings...)

	sources := []source{
		{hint: models.HintLinkedData, run: func() models.Metadata { return ex.linkedData(ld) }},
		{hint: models.HintItemprop, run: func() models.Metadata { return fromItemprop(chunks, ex.itempropFields()) }},
		{hint: models.HintPreview, run: func() models.Metadata { return fromPreview(specials, ex.previewFields()) }},
	}

	fast := false
	if hint != models.HintNone {
		for _, s := range sources {
			if s.hint != hint {
				continue
			}
			if got := s.run(); len(got) > 0 {
				meta.Merge(got)
				fast = true
			}
			break
		}
	}
	if !fast {
		for _, s := range sources {
			meta.Merge(s.run())
		}
	}

	if crumbs := breadcrumbs(ld); len(crumbs) > 0 {
		meta.SetIfAbsent("breadcrumbs", crumbs)
	}
	if kind == models.SchemaProduct {
		if items := listing(ld); len(items) > 0 {
			meta.SetIfAbsent("listing", items)
		}
	}
	if field := ex.nameField(); !meta.Has(field) {
		if name := headingName(headings); name != "" {
			meta[field] = name
		}
	}
	return meta
}
